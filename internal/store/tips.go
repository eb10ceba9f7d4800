package store

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
)

const tipSelect = "SELECT id, title, content, difficulty, created_at FROM tips"

func (s *SQLiteStore) CreateTip(ctx context.Context, in TipInput) (int64, error) {
	if strings.TrimSpace(in.Title) == "" {
		return 0, requiredField("title")
	}
	if strings.TrimSpace(in.Content) == "" {
		return 0, requiredField("content")
	}

	var id int64
	err := s.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = insert(ctx, tx, "insert tip",
			"INSERT INTO tips (title, content, difficulty) VALUES (?, ?, ?)",
			in.Title, in.Content, in.Difficulty)
		return err
	})
	return id, err
}

func (s *SQLiteStore) GetTip(ctx context.Context, id int64) (*Tip, error) {
	var t Tip
	var found bool
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		found, err = getOne(ctx, tx, &t, tipSelect+" WHERE id = ?", id)
		return classifyIfErr("get tip", err)
	})
	if err != nil || !found {
		return nil, err
	}
	return &t, nil
}

func (s *SQLiteStore) ListTips(ctx context.Context, f TipFilter) ([]Tip, error) {
	var tips []Tip
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		tips, err = listTips(ctx, tx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tips, nil
}

func listTips(ctx context.Context, tx *sqlx.Tx, f TipFilter) ([]Tip, error) {
	query := tipSelect + " WHERE 1=1"
	var args []any
	if f.Difficulty != "" {
		query += " AND difficulty = ?"
		args = append(args, f.Difficulty)
	}
	query += " ORDER BY created_at DESC, id DESC"
	query, args = limitClause(query, args, f.Limit)

	var tips []Tip
	if err := tx.SelectContext(ctx, &tips, query, args...); err != nil {
		return nil, classify("list tips", err)
	}
	return tips, nil
}

// ListContent reads every article and every tip in one read scope, so the
// two lists describe the same moment.
func (s *SQLiteStore) ListContent(ctx context.Context) ([]News, []Tip, error) {
	var news []News
	var tips []Tip
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		if news, err = listNews(ctx, tx, NewsFilter{}); err != nil {
			return err
		}
		tips, err = listTips(ctx, tx, TipFilter{})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return news, tips, nil
}

func (s *SQLiteStore) UpdateTip(ctx context.Context, id int64, p TipPatch) (bool, error) {
	if err := requireNonBlank("title", p.Title); err != nil {
		return false, err
	}
	if err := requireNonBlank("content", p.Content); err != nil {
		return false, err
	}

	var a assignments
	setIfPresent(&a, "title", p.Title)
	setIfPresent(&a, "content", p.Content)
	setIfPresent(&a, "difficulty", p.Difficulty)
	return s.applyPatch(ctx, "update tip", "tips", id, a, nil)
}

func (s *SQLiteStore) DeleteTip(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "delete tip", "tips", id)
}
