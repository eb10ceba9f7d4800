package core

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/AlperErd0gan/Filizlen-App/internal/embcache"
	"github.com/AlperErd0gan/Filizlen-App/internal/store"
)

const (
	DocTypeNews = "news"
	DocTypeTip  = "tip"
)

// EmbedFunc turns a passage into its embedding vector.
type EmbedFunc func(text string) ([]float32, error)

// ContentSource is the relational content the index is derived from.
type ContentSource interface {
	ListContent(ctx context.Context) ([]store.News, []store.Tip, error)
}

// Indexer rebuilds the embedding cache from the content store. Only one
// Rebuild may run at a time per cache file.
type Indexer struct {
	source    ContentSource
	embed     EmbedFunc
	cachePath string
	interval  time.Duration
}

// NewIndexer creates an indexer. interval spaces out embedding requests to
// stay under the model's rate limit; zero disables the delay.
func NewIndexer(source ContentSource, embed EmbedFunc, cachePath string, interval time.Duration) *Indexer {
	return &Indexer{source: source, embed: embed, cachePath: cachePath, interval: interval}
}

// BuildDocuments derives one document per news article and tip.
func (ix *Indexer) BuildDocuments(ctx context.Context) ([]embcache.Document, error) {
	news, tips, err := ix.source.ListContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read content for indexing: %w", err)
	}

	docs := make([]embcache.Document, 0, len(news)+len(tips))
	for _, n := range news {
		docs = append(docs, newsDocument(n))
	}
	for _, t := range tips {
		docs = append(docs, tipDocument(t))
	}
	return docs, nil
}

func newsDocument(n store.News) embcache.Document {
	var b strings.Builder
	b.WriteString(n.Title)
	if n.Summary != nil && *n.Summary != "" {
		b.WriteString("\n\n")
		b.WriteString(*n.Summary)
	}
	b.WriteString("\n\n")
	b.WriteString(n.Content)

	return embcache.Document{
		ID:      DocTypeNews + "-" + strconv.FormatInt(n.ID, 10),
		Type:    DocTypeNews,
		Content: b.String(),
		Metadata: map[string]any{
			"title":        n.Title,
			"news_id":      n.ID,
			"category":     n.CategoryName,
			"published_at": n.PublishedAt.UTC().Format(time.RFC3339),
		},
	}
}

func tipDocument(t store.Tip) embcache.Document {
	meta := map[string]any{
		"title":  t.Title,
		"tip_id": t.ID,
	}
	if t.Difficulty != nil {
		meta["difficulty"] = *t.Difficulty
	}
	return embcache.Document{
		ID:       DocTypeTip + "-" + strconv.FormatInt(t.ID, 10),
		Type:     DocTypeTip,
		Content:  t.Title + "\n\n" + t.Content,
		Metadata: meta,
	}
}

// Rebuild recomputes every document and embedding and replaces the cache
// file. If any embedding fails the previous cache file is left as it was.
func (ix *Indexer) Rebuild(ctx context.Context) (int, error) {
	docs, err := ix.BuildDocuments(ctx)
	if err != nil {
		return 0, err
	}
	log.Printf("Embedding %d documents (this may take a while)...", len(docs))

	var tick <-chan time.Time
	if ix.interval > 0 {
		ticker := time.NewTicker(ix.interval) // delay to not hit rate limit
		defer ticker.Stop()
		tick = ticker.C
	}

	embeddings := make([][]float32, 0, len(docs))
	for i, doc := range docs {
		if tick != nil {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return 0, err
		}

		vec, err := ix.embed(doc.Content)
		if err != nil {
			return 0, fmt.Errorf("failed to embed document %s: %w", doc.ID, err)
		}
		embeddings = append(embeddings, vec)
		if (i+1)%10 == 0 || i+1 == len(docs) {
			log.Printf("Embedded %d/%d documents...", i+1, len(docs))
		}
	}

	if err := embcache.Save(ix.cachePath, docs, embeddings); err != nil {
		return 0, fmt.Errorf("failed to save embedding cache: %w", err)
	}
	log.Printf("Successfully rebuilt embedding cache with %d documents at %s", len(docs), ix.cachePath)
	return len(docs), nil
}
