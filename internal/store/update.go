package store

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
)

// assignments collects the "col = ?" pairs of a partial update in the order
// the fields were supplied.
type assignments struct {
	cols []string
	args []any
}

func setIfPresent[T any](a *assignments, col string, v *T) {
	if v == nil {
		return
	}
	a.cols = append(a.cols, col+" = ?")
	a.args = append(a.args, *v)
}

// requireNonBlank rejects a supplied value that is empty after trimming. A
// nil value is not being updated and passes.
func requireNonBlank(field string, v *string) error {
	if v != nil && strings.TrimSpace(*v) == "" {
		return requiredField(field)
	}
	return nil
}

func (a assignments) empty() bool { return len(a.cols) == 0 }

func (a assignments) query(table string) string {
	return "UPDATE " + table + " SET " + strings.Join(a.cols, ", ") + " WHERE id = ?"
}

// applyPatch writes the collected assignments to row id. An empty set is a
// no-op that reports false without opening a scope. check, when non-nil, runs
// in the same scope before the write.
func (s *SQLiteStore) applyPatch(ctx context.Context, op, table string, id int64, a assignments, check func(tx *sqlx.Tx) error) (bool, error) {
	if a.empty() {
		return false, nil
	}
	var changed bool
	err := s.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if check != nil {
			if err := check(tx); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, a.query(table), append(a.args, id)...)
		if err != nil {
			return classify(op, err)
		}
		changed, err = affected(res)
		return classifyIfErr(op, err)
	})
	return changed, err
}
