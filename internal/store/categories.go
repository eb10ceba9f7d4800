package store

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
)

func (s *SQLiteStore) CreateCategory(ctx context.Context, name string, description *string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, requiredField("name")
	}
	var id int64
	err := s.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = insert(ctx, tx, "insert category",
			"INSERT INTO news_categories (name, description) VALUES (?, ?)", name, description)
		return err
	})
	return id, err
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var c Category
	var found bool
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		found, err = getOne(ctx, tx, &c, "SELECT id, name, description FROM news_categories WHERE id = ?", id)
		return classifyIfErr("get category", err)
	})
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns all categories ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		return classifyIfErr("list categories",
			tx.SelectContext(ctx, &categories, "SELECT id, name, description FROM news_categories ORDER BY name, id"))
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// DeleteCategory never cascades: a category that still has news fails with
// ErrReferentialConstraint and nothing is removed.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "delete category", "news_categories", id)
}
