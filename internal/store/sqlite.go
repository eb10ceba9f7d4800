package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const defaultBusyTimeout = 5 * time.Second

// SQLiteStore keeps two pools on the same file. Write scopes begin with
// BEGIN IMMEDIATE so two writers never deadlock upgrading a read lock; read
// scopes begin deferred so under WAL they run alongside an open writer.
type SQLiteStore struct {
	db     *sqlx.DB
	reader *sqlx.DB
}

// Options tune how the database file is opened.
type Options struct {
	BusyTimeout time.Duration
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithOptions(path, Options{})
}

func NewSQLiteStoreWithOptions(path string, opts Options) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("failed to open database: empty path")
	}
	db, err := openPool(dataSourceName(path, opts, "immediate"))
	if err != nil {
		return nil, err
	}
	reader, err := openPool(dataSourceName(path, opts, "deferred"))
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, reader: reader}, nil
}

func openPool(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// dataSourceName builds a file: URI for path. Each path segment is escaped
// so '?', '#' and '%' in a file name stay part of the name.
func dataSourceName(path string, opts Options, txlock string) string {
	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = defaultBusyTimeout
	}
	segments := strings.Split(filepath.ToSlash(path), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}

	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", fmt.Sprint(busy.Milliseconds()))
	q.Set("_journal_mode", "WAL")
	q.Set("_txlock", txlock)
	return "file:" + strings.Join(segments, "/") + "?" + q.Encode()
}

func (s *SQLiteStore) Close() error {
	return errors.Join(s.reader.Close(), s.db.Close())
}

// WithTransaction runs fn inside a single write transaction. The transaction
// is committed when fn returns nil and rolled back when fn returns an error
// or panics; the connection goes back to the pool on every path. The tx must
// not be retained after fn returns.
func (s *SQLiteStore) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return inScope(ctx, s.db, fn)
}

// WithReadTransaction runs fn in a deferred transaction on the read pool.
// Every statement in fn sees the same snapshot. fn must not write.
func (s *SQLiteStore) WithReadTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return inScope(ctx, s.reader, fn)
}

func inScope(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return storageFault("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(tx)
			panic(p)
		}
		if err != nil {
			rollback(tx)
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = storageFault("commit transaction", cerr)
		}
	}()

	return fn(tx)
}

func rollback(tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Printf("Warning: transaction rollback failed: %v", err)
	}
}

// deleteByID removes one row from table and reports whether it existed.
func (s *SQLiteStore) deleteByID(ctx context.Context, op, table string, id int64) (bool, error) {
	var deleted bool
	err := s.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
		if err != nil {
			return classify(op, err)
		}
		deleted, err = affected(res)
		return classifyIfErr(op, err)
	})
	return deleted, err
}

func insert(ctx context.Context, tx *sqlx.Tx, op, query string, args ...any) (int64, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify(op, err)
	}
	return id, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// getOne scans a single row into dest; found is false when there is no row.
func getOne(ctx context.Context, tx *sqlx.Tx, dest any, query string, args ...any) (found bool, err error) {
	err = tx.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func limitClause(query string, args []any, limit int) (string, []any) {
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return query, args
}
