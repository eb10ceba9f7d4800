package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatLogs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, s, "chat@example.com")
	other := mustUser(t, s, "other@example.com")

	first, err := s.AddChatLog(ctx, user, "Domates ne zaman ekilir?", "Nisan sonunda.")
	require.NoError(t, err)
	second, err := s.AddChatLog(ctx, user, "Sulama sıklığı?", "Haftada iki kez.")
	require.NoError(t, err)
	_, err = s.AddChatLog(ctx, other, "Merhaba", "Merhaba!")
	require.NoError(t, err)

	entry, err := s.GetChatLog(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, user, entry.UserID)
	assert.Equal(t, "Domates ne zaman ekilir?", entry.UserMessage)
	assert.Equal(t, "Nisan sonunda.", entry.BotResponse)

	logs, err := s.ListChatLogs(ctx, user, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, second, logs[0].ID)

	logs, err = s.ListChatLogs(ctx, user, 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = s.AddChatLog(ctx, 9999, "x", "y")
	assert.ErrorIs(t, err, ErrReferentialConstraint)

	deleted, err := s.DeleteChatLog(ctx, first)
	require.NoError(t, err)
	assert.True(t, deleted)
	entry, err = s.GetChatLog(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestSearchHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, s, "search@example.com")

	_, err := s.AddSearchHistory(ctx, user, "")
	assert.ErrorIs(t, err, ErrValidation)

	q1, err := s.AddSearchHistory(ctx, user, "gübre")
	require.NoError(t, err)
	q2, err := s.AddSearchHistory(ctx, user, "fide")
	require.NoError(t, err)

	history, err := s.ListSearchHistory(ctx, user, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, q2, history[0].ID)
	assert.Equal(t, "fide", history[0].Query)

	entry, err := s.GetSearchHistoryEntry(ctx, q1)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "gübre", entry.Query)

	deleted, err := s.DeleteSearchHistoryEntry(ctx, q1)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.DeleteSearchHistoryEntry(ctx, q1)
	require.NoError(t, err)
	assert.False(t, deleted)
}
