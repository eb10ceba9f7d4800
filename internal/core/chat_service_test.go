package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlperErd0gan/Filizlen-App/internal/store"
)

type fakeAnswerer struct {
	gotQuestion string
	gotPassages string
	err         error
}

func (f *fakeAnswerer) Answer(_ context.Context, question, passages string) (string, error) {
	f.gotQuestion, f.gotPassages = question, passages
	if f.err != nil {
		return "", f.err
	}
	return "Cevap: " + question, nil
}

func newChatFixture(t *testing.T, answerer Answerer) (*ChatService, *store.SQLiteStore, int64) {
	t.Helper()
	s := newTestStore(t)
	userID, err := s.CreateUser(context.Background(), store.UserInput{Name: "Zeynep", Email: "zeynep@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	rag, err := NewRAGService(threeDocCache(t), fakeEmbed)
	require.NoError(t, err)
	return NewChatService(s, rag, answerer), s, userID
}

func TestChatService_Ask(t *testing.T) {
	answerer := &fakeAnswerer{}
	chat, s, userID := newChatFixture(t, answerer)
	ctx := context.Background()

	res, err := chat.Ask(ctx, userID, "  Domates ne zaman ekilir?  ")
	require.NoError(t, err)
	assert.Equal(t, "Cevap: Domates ne zaman ekilir?", res.Answer)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "tip-1", res.Sources[0].Document.ID)
	assert.Equal(t, "domates ipucu", answerer.gotPassages)

	entry, err := s.GetChatLog(ctx, res.ChatLogID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Domates ne zaman ekilir?", entry.UserMessage)
	assert.Equal(t, res.Answer, entry.BotResponse)

	history, err := s.ListSearchHistory(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Domates ne zaman ekilir?", history[0].Query)
}

func TestChatService_EmptyQuestion(t *testing.T) {
	chat, _, userID := newChatFixture(t, &fakeAnswerer{})
	_, err := chat.Ask(context.Background(), userID, "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestChatService_AnswerFailureStoresNoLog(t *testing.T) {
	chat, s, userID := newChatFixture(t, &fakeAnswerer{err: errors.New("model down")})
	ctx := context.Background()

	_, err := chat.Ask(ctx, userID, "fındık fiyatı")
	require.Error(t, err)

	logs, err := s.ListChatLogs(ctx, userID, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestChatService_UnknownUser(t *testing.T) {
	chat, _, _ := newChatFixture(t, &fakeAnswerer{})
	_, err := chat.Ask(context.Background(), 999, "fındık")
	assert.ErrorIs(t, err, store.ErrReferentialConstraint)
}
