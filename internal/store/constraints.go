package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// classify maps a driver error raised by op onto the store's error kinds.
// Errors that already carry a store kind pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrReferentialConstraint) ||
		errors.Is(err, ErrUniqueConstraint) || errors.Is(err, ErrStorage) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("failed to %s: %w: %w", op, ErrReferentialConstraint, err)
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("failed to %s: %w: %w", op, ErrUniqueConstraint, err)
		}
	}
	return storageFault(op, err)
}

func classifyIfErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return classify(op, err)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// rowExists runs inside the caller's scope so the check and the write that
// depends on it see the same snapshot.
func rowExists(ctx context.Context, tx *sqlx.Tx, table string, id int64) (bool, error) {
	var n int
	if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table+" WHERE id = ?", id); err != nil {
		return false, err
	}
	return n > 0, nil
}

func requireCategory(ctx context.Context, tx *sqlx.Tx, categoryID int64) error {
	ok, err := rowExists(ctx, tx, "news_categories", categoryID)
	if err != nil {
		return classify("check category", err)
	}
	if !ok {
		return missingReference("category_id", categoryID)
	}
	return nil
}
