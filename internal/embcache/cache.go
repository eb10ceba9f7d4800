// Package embcache holds the derived semantic index: an ordered list of
// documents and an embedding matrix with exactly one row per document.
// A snapshot is built once, written as a single blob and replaced wholesale;
// there is no way to patch one in place.
package embcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var (
	// ErrMisaligned is returned when documents and embedding rows do not
	// pair up. Nothing is written.
	ErrMisaligned = errors.New("documents and embeddings are misaligned")

	// ErrCorruptCache is returned by Load for an unreadable or structurally
	// inconsistent file. No part of such a file is returned.
	ErrCorruptCache = errors.New("corrupt embedding cache")

	// ErrIndexOutOfRange is returned for a document position outside [0, Count).
	ErrIndexOutOfRange = errors.New("document index out of range")
)

// Document is one indexed passage. Type names the entity kind it was derived
// from ("news", "tip").
type Document struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Snapshot is immutable after construction. Row i of the matrix is the
// embedding of document i.
type Snapshot struct {
	documents  []Document
	embeddings [][]float32
}

// blob is the on-disk layout.
type blob struct {
	Documents  []Document  `json:"documents"`
	Embeddings [][]float32 `json:"embeddings"`
}

// NewSnapshot validates alignment and copies its inputs so later changes by
// the caller cannot reach the snapshot.
func NewSnapshot(docs []Document, embeddings [][]float32) (*Snapshot, error) {
	if err := checkAligned(docs, embeddings); err != nil {
		return nil, err
	}
	s := &Snapshot{
		documents:  make([]Document, len(docs)),
		embeddings: make([][]float32, len(embeddings)),
	}
	for i, d := range docs {
		s.documents[i] = cloneDocument(d)
	}
	for i, row := range embeddings {
		s.embeddings[i] = append([]float32(nil), row...)
	}
	return s, nil
}

func checkAligned(docs []Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("%w: %d documents, %d embedding rows", ErrMisaligned, len(docs), len(embeddings))
	}
	seen := make(map[string]struct{}, len(docs))
	for i, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("%w: document %d has no id", ErrMisaligned, i)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("%w: duplicate document id %q", ErrMisaligned, d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	if len(embeddings) == 0 {
		return nil
	}
	dim := len(embeddings[0])
	if dim == 0 {
		return fmt.Errorf("%w: empty embedding row 0", ErrMisaligned)
	}
	for i, row := range embeddings {
		if len(row) != dim {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrMisaligned, i, len(row), dim)
		}
	}
	return nil
}

func cloneDocument(d Document) Document {
	if d.Metadata != nil {
		m := make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			m[k] = v
		}
		d.Metadata = m
	}
	return d
}

// Len is the number of documents.
func (s *Snapshot) Len() int { return len(s.documents) }

// Dimension is the embedding width, 0 for an empty snapshot.
func (s *Snapshot) Dimension() int {
	if len(s.embeddings) == 0 {
		return 0
	}
	return len(s.embeddings[0])
}

// Document returns a copy of document i.
func (s *Snapshot) Document(i int) (Document, error) {
	if i < 0 || i >= len(s.documents) {
		return Document{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.documents))
	}
	return cloneDocument(s.documents[i]), nil
}

// Embedding returns a copy of row i.
func (s *Snapshot) Embedding(i int) ([]float32, error) {
	if i < 0 || i >= len(s.embeddings) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.embeddings))
	}
	return append([]float32(nil), s.embeddings[i]...), nil
}

// Each calls fn for every document and its row in order, without copying.
// fn must not modify either argument. Iteration stops when fn returns false.
func (s *Snapshot) Each(fn func(i int, doc *Document, vec []float32) bool) {
	for i := range s.documents {
		if !fn(i, &s.documents[i], s.embeddings[i]) {
			return
		}
	}
}

// Save builds a snapshot from docs and embeddings and writes it to path.
// Alignment is checked before anything touches the disk. The file is written
// to a temporary sibling and renamed over path, so a concurrent Load sees
// either the previous snapshot or this one.
func Save(path string, docs []Document, embeddings [][]float32) error {
	if err := checkAligned(docs, embeddings); err != nil {
		return err
	}
	if docs == nil {
		docs = []Document{}
	}
	if embeddings == nil {
		embeddings = [][]float32{}
	}
	data, err := json.Marshal(blob{Documents: docs, Embeddings: embeddings})
	if err != nil {
		return fmt.Errorf("failed to encode embedding cache: %w", err)
	}
	return writeAtomic(path, data)
}

// SaveSnapshot writes an already validated snapshot.
func SaveSnapshot(path string, s *Snapshot) error {
	return Save(path, s.documents, s.embeddings)
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync cache file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	if err = syncDir(dir); err != nil {
		return fmt.Errorf("failed to sync cache directory: %w", err)
	}
	return nil
}

// syncDir flushes dir so a completed rename survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}

// Load reads and validates the snapshot at path. A missing file is reported
// as an fs.ErrNotExist error; anything unreadable or misaligned as
// ErrCorruptCache.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding cache: %w", err)
	}
	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCache, err)
	}
	if b.Documents == nil || b.Embeddings == nil {
		return nil, fmt.Errorf("%w: missing documents or embeddings", ErrCorruptCache)
	}
	if err := checkAligned(b.Documents, b.Embeddings); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCache, err)
	}
	return &Snapshot{documents: b.Documents, embeddings: b.Embeddings}, nil
}
