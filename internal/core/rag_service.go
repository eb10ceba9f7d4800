package core

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/AlperErd0gan/Filizlen-App/internal/embcache"
	"github.com/AlperErd0gan/Filizlen-App/internal/utils"
)

const (
	NumRelevantDocuments = 3   // Number of documents to retrieve for context
	SimilarityThreshold  = 0.7 // Minimum similarity score to consider a document relevant
)

// RAGService answers retrieval queries against a loaded cache snapshot.
// Reload swaps in a new snapshot; a query already running keeps the one it
// started with.
type RAGService struct {
	embed     EmbedFunc
	cachePath string

	mu       sync.RWMutex
	snapshot *embcache.Snapshot
}

type ScoredDocument struct {
	Document   embcache.Document `json:"document"`
	Similarity float32           `json:"similarity"`
}

// NewRAGService loads the cache at cachePath. A missing cache file is not an
// error: the service starts empty until Reload succeeds.
func NewRAGService(cachePath string, embed EmbedFunc) (*RAGService, error) {
	s := &RAGService{embed: embed, cachePath: cachePath}
	if err := s.Reload(cachePath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load embedding cache for RAG service: %w", err)
		}
		log.Printf("Warning: no embedding cache at %s. Rebuild it to enable retrieval.", cachePath)
		empty, _ := embcache.NewSnapshot(nil, nil)
		s.setSnapshot(empty)
	}
	return s, nil
}

// Reload replaces the in-memory snapshot with the file at cachePath. On
// error the current snapshot stays in place.
func (s *RAGService) Reload(cachePath string) error {
	snap, err := embcache.Load(cachePath)
	if err != nil {
		return err
	}
	s.setSnapshot(snap)
	log.Printf("RAGService loaded %d documents from %s.", snap.Len(), cachePath)
	return nil
}

// Refresh reloads the cache file the service was created with. A running
// server calls it after a separate process has rebuilt the cache.
func (s *RAGService) Refresh() (int, error) {
	if err := s.Reload(s.cachePath); err != nil {
		return 0, err
	}
	return s.Snapshot().Len(), nil
}

func (s *RAGService) setSnapshot(snap *embcache.Snapshot) {
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}

func (s *RAGService) Snapshot() *embcache.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Search compares queryVec with every row of the snapshot and returns up to
// limit documents scoring at least threshold, best first.
func (s *RAGService) Search(queryVec []float32, limit int, threshold float32) ([]ScoredDocument, error) {
	snap := s.Snapshot()
	if snap.Len() == 0 {
		return nil, nil
	}
	if dim := snap.Dimension(); len(queryVec) != dim {
		return nil, fmt.Errorf("query embedding has %d dimensions, cache has %d: %w", len(queryVec), dim, utils.ErrDimensionMismatch)
	}

	var scored []ScoredDocument
	var searchErr error
	snap.Each(func(i int, doc *embcache.Document, vec []float32) bool {
		similarity, err := utils.CosineSimilarity(queryVec, vec)
		if err != nil {
			searchErr = fmt.Errorf("failed to score document %s: %w", doc.ID, err)
			return false
		}
		if similarity >= threshold {
			d, _ := snap.Document(i)
			scored = append(scored, ScoredDocument{Document: d, Similarity: similarity})
		}
		return true
	})
	if searchErr != nil {
		return nil, searchErr
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// GetRelevantContext embeds query and joins the best matching passages.
func (s *RAGService) GetRelevantContext(query string) (string, []ScoredDocument, error) {
	if s.Snapshot().Len() == 0 {
		log.Println("No documents available for RAG context retrieval.")
		return "", nil, nil
	}

	queryEmbedding, err := s.embed(query)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get query embedding: %w", err)
	}

	matches, err := s.Search(queryEmbedding, NumRelevantDocuments, SimilarityThreshold)
	if err != nil {
		return "", nil, err
	}
	if len(matches) == 0 {
		log.Printf("No relevant documents found for query (Similarity threshold: %.2f): %s", SimilarityThreshold, query)
		return "", nil, nil
	}

	var contextBuilder strings.Builder
	for _, m := range matches {
		contextBuilder.WriteString(m.Document.Content)
		contextBuilder.WriteString("\n\n") // Separate passages clearly
	}
	log.Printf("Retrieved %d relevant documents for query.", len(matches))
	return strings.TrimSpace(contextBuilder.String()), matches, nil
}
