package store

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
)

const newsSelect = `
    SELECT n.id, n.title, n.summary, n.content, n.category_id, n.published_at, n.image_url,
           COALESCE(nc.name, '') AS category_name
    FROM news n
    LEFT JOIN news_categories nc ON n.category_id = nc.id`

// CreateNews inserts an article. The category is checked first so a missing
// category is reported as a validation error; a foreign key failure from the
// engine is still mapped to ErrReferentialConstraint.
func (s *SQLiteStore) CreateNews(ctx context.Context, in NewsInput) (int64, error) {
	if strings.TrimSpace(in.Title) == "" {
		return 0, requiredField("title")
	}
	if strings.TrimSpace(in.Content) == "" {
		return 0, requiredField("content")
	}

	var id int64
	err := s.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := requireCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		var err error
		id, err = insert(ctx, tx, "insert news",
			"INSERT INTO news (title, summary, content, category_id, image_url) VALUES (?, ?, ?, ?, ?)",
			in.Title, in.Summary, in.Content, in.CategoryID, in.ImageURL)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLiteStore) GetNews(ctx context.Context, id int64) (*News, error) {
	var n News
	var found bool
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		found, err = getOne(ctx, tx, &n, newsSelect+" WHERE n.id = ?", id)
		return classifyIfErr("get news", err)
	})
	if err != nil || !found {
		return nil, err
	}
	return &n, nil
}

// ListNews returns articles newest first.
func (s *SQLiteStore) ListNews(ctx context.Context, f NewsFilter) ([]News, error) {
	var news []News
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		news, err = listNews(ctx, tx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return news, nil
}

func listNews(ctx context.Context, tx *sqlx.Tx, f NewsFilter) ([]News, error) {
	query := newsSelect
	var args []any
	if f.CategoryID != nil {
		query += " WHERE n.category_id = ?"
		args = append(args, *f.CategoryID)
	}
	query += " ORDER BY n.published_at DESC, n.id DESC"
	query, args = limitClause(query, args, f.Limit)

	var news []News
	if err := tx.SelectContext(ctx, &news, query, args...); err != nil {
		return nil, classify("list news", err)
	}
	return news, nil
}

// UpdateNews rewrites only the fields set in p. It returns false without
// touching the row when p is empty or when no article has that id. A title
// or content that is set must not be blank.
func (s *SQLiteStore) UpdateNews(ctx context.Context, id int64, p NewsPatch) (bool, error) {
	if err := requireNonBlank("title", p.Title); err != nil {
		return false, err
	}
	if err := requireNonBlank("content", p.Content); err != nil {
		return false, err
	}

	var a assignments
	setIfPresent(&a, "title", p.Title)
	setIfPresent(&a, "summary", p.Summary)
	setIfPresent(&a, "content", p.Content)
	setIfPresent(&a, "category_id", p.CategoryID)
	setIfPresent(&a, "image_url", p.ImageURL)

	var check func(tx *sqlx.Tx) error
	if p.CategoryID != nil {
		check = func(tx *sqlx.Tx) error { return requireCategory(ctx, tx, *p.CategoryID) }
	}
	return s.applyPatch(ctx, "update news", "news", id, a, check)
}

func (s *SQLiteStore) DeleteNews(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "delete news", "news", id)
}
