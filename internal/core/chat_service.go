package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

var ErrEmptyQuestion = errors.New("question cannot be empty")

// Answerer generates an answer from a question and retrieved passages.
type Answerer interface {
	Answer(ctx context.Context, question, passages string) (string, error)
}

// ActivityStore records what users asked.
type ActivityStore interface {
	AddSearchHistory(ctx context.Context, userID int64, query string) (int64, error)
	AddChatLog(ctx context.Context, userID int64, userMessage, botResponse string) (int64, error)
}

type ChatService struct {
	activity ActivityStore
	rag      *RAGService
	answerer Answerer
}

func NewChatService(activity ActivityStore, rag *RAGService, answerer Answerer) *ChatService {
	return &ChatService{activity: activity, rag: rag, answerer: answerer}
}

type AskResult struct {
	ChatLogID int64            `json:"chat_log_id"`
	Answer    string           `json:"answer"`
	Sources   []ScoredDocument `json:"sources,omitempty"`
}

// Ask answers a user's question and stores the exchange in the chat log.
// Retrieval failures degrade to an answer without context.
func (s *ChatService) Ask(ctx context.Context, userID int64, question string) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	if _, err := s.activity.AddSearchHistory(ctx, userID, question); err != nil {
		return nil, fmt.Errorf("failed to record search history: %w", err)
	}

	passages, sources, err := s.rag.GetRelevantContext(question)
	if err != nil {
		log.Printf("Failed to get relevant context, proceeding without it: %v", err)
		passages, sources = "", nil
	}

	answer, err := s.answerer.Answer(ctx, question, passages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	id, err := s.activity.AddChatLog(ctx, userID, question, answer)
	if err != nil {
		return nil, fmt.Errorf("failed to store chat log: %w", err)
	}
	return &AskResult{ChatLogID: id, Answer: answer, Sources: sources}, nil
}
