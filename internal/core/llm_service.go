package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultChatModelName      = "gemini-1.5-flash-latest"
	defaultEmbeddingModelName = "text-embedding-004"

	chatSystemInstruction = "You are Filizlen, a helpful agricultural assistant for farmers and gardeners. " +
		"Answer questions using the provided news articles and farming tips when they are relevant. " +
		"If the answer is not found in the provided context, say that you don't have that information. " +
		"Keep answers practical and concise, and answer in the language of the question. " +
		"Do not make up prices, dates or statistics."
)

type LLMService struct {
	client *genai.Client
}

func NewLLMService(ctx context.Context, apiKey string) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{client: client}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		} else {
			log.Println("GenAI client closed.")
		}
	}
}

// GetEmbedding has the EmbedFunc shape used by the cache rebuild and by
// query embedding.
func (s *LLMService) GetEmbedding(text string) ([]float32, error) {
	ctx := context.Background()
	em := s.client.EmbeddingModel(defaultEmbeddingModelName)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}

	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding data received from gemini")
	}
	return res.Embedding.Values, nil
}

// Answer asks the chat model to answer question using the retrieved passages.
func (s *LLMService) Answer(ctx context.Context, question, passages string) (string, error) {
	model := s.client.GenerativeModel(defaultChatModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(chatSystemInstruction)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(question, passages)))
	if err != nil {
		return "", fmt.Errorf("gemini answer request failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Println("Gemini response was empty or had no valid candidates/parts.")
		return fallbackAnswer, nil
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}

	if responseText.Len() == 0 {
		return fallbackAnswer, nil
	}
	return responseText.String(), nil
}

const fallbackAnswer = "I'm sorry, I couldn't generate a response at this time. Please try again."

func buildPrompt(question, passages string) string {
	if passages == "" {
		return fmt.Sprintf("I couldn't find any related news or tips for this question. Please answer from general agricultural knowledge, and say so: %s", question)
	}
	return fmt.Sprintf("Use the following potentially relevant news and tips:\n\n--- CONTEXT START ---\n%s\n--- CONTEXT END ---\n\nNow, please answer my question: %s", passages, question)
}
