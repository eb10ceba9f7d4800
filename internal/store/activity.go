package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Chat log methods

func (s *SQLiteStore) AddChatLog(ctx context.Context, userID int64, userMessage, botResponse string) (int64, error) {
	var id int64
	err := s.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = insert(ctx, tx, "insert chat log",
			"INSERT INTO chat_log (user_id, user_message, bot_response) VALUES (?, ?, ?)",
			userID, userMessage, botResponse)
		return err
	})
	return id, err
}

func (s *SQLiteStore) GetChatLog(ctx context.Context, id int64) (*ChatLogEntry, error) {
	var e ChatLogEntry
	var found bool
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		found, err = getOne(ctx, tx, &e,
			"SELECT id, user_id, user_message, bot_response, created_at FROM chat_log WHERE id = ?", id)
		return classifyIfErr("get chat log", err)
	})
	if err != nil || !found {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) ListChatLogs(ctx context.Context, userID int64, limit int) ([]ChatLogEntry, error) {
	query, args := limitClause(
		"SELECT id, user_id, user_message, bot_response, created_at FROM chat_log WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		[]any{userID}, limit)

	var entries []ChatLogEntry
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		return classifyIfErr("list chat logs", tx.SelectContext(ctx, &entries, query, args...))
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *SQLiteStore) DeleteChatLog(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "delete chat log", "chat_log", id)
}

// Search history methods

func (s *SQLiteStore) AddSearchHistory(ctx context.Context, userID int64, query string) (int64, error) {
	if query == "" {
		return 0, requiredField("query")
	}
	var id int64
	err := s.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = insert(ctx, tx, "insert search history",
			"INSERT INTO search_history (user_id, query) VALUES (?, ?)", userID, query)
		return err
	})
	return id, err
}

func (s *SQLiteStore) GetSearchHistoryEntry(ctx context.Context, id int64) (*SearchHistoryEntry, error) {
	var e SearchHistoryEntry
	var found bool
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		found, err = getOne(ctx, tx, &e, "SELECT id, user_id, query, created_at FROM search_history WHERE id = ?", id)
		return classifyIfErr("get search history", err)
	})
	if err != nil || !found {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) ListSearchHistory(ctx context.Context, userID int64, limit int) ([]SearchHistoryEntry, error) {
	query, args := limitClause(
		"SELECT id, user_id, query, created_at FROM search_history WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		[]any{userID}, limit)

	var entries []SearchHistoryEntry
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		return classifyIfErr("list search history", tx.SelectContext(ctx, &entries, query, args...))
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *SQLiteStore) DeleteSearchHistoryEntry(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "delete search history", "search_history", id)
}
