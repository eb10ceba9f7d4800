package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlperErd0gan/Filizlen-App/internal/embcache"
	"github.com/AlperErd0gan/Filizlen-App/internal/utils"
)

func writeCache(t *testing.T, docs []embcache.Document, matrix [][]float32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rag_cache.json")
	require.NoError(t, embcache.Save(path, docs, matrix))
	return path
}

func writeFile(path, body string) error {
	return os.WriteFile(path, []byte(body), 0o644)
}

func threeDocCache(t *testing.T) string {
	return writeCache(t,
		[]embcache.Document{
			{ID: "news-1", Type: DocTypeNews, Content: "fındık haberi"},
			{ID: "news-2", Type: DocTypeNews, Content: "kuraklık haberi"},
			{ID: "tip-1", Type: DocTypeTip, Content: "domates ipucu"},
		},
		[][]float32{
			{1, 0, 5, 0},
			{1, 0, 0, 5},
			{1, 5, 0, 0},
		})
}

func TestRAGService_Search(t *testing.T) {
	rag, err := NewRAGService(threeDocCache(t), fakeEmbed)
	require.NoError(t, err)

	results, err := rag.Search([]float32{1, 0, 5, 0}, 3, 0.9)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "news-1", results[0].Document.ID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)

	all, err := rag.Search([]float32{1, 1, 1, 1}, 0, -1)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	top, err := rag.Search([]float32{1, 1, 1, 1}, 2, -1)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestRAGService_DimensionMismatch(t *testing.T) {
	rag, err := NewRAGService(threeDocCache(t), fakeEmbed)
	require.NoError(t, err)

	_, err = rag.Search([]float32{1, 2}, 3, 0)
	assert.ErrorIs(t, err, utils.ErrDimensionMismatch)
}

func TestRAGService_GetRelevantContext(t *testing.T) {
	rag, err := NewRAGService(threeDocCache(t), fakeEmbed)
	require.NoError(t, err)

	passages, sources, err := rag.GetRelevantContext("Domates nasıl budanır?")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "tip-1", sources[0].Document.ID)
	assert.Equal(t, "domates ipucu", passages)

	passages, sources, err = rag.GetRelevantContext("hava durumu")
	require.NoError(t, err)
	assert.Empty(t, passages)
	assert.Empty(t, sources)
}

func TestRAGService_MissingCacheStartsEmpty(t *testing.T) {
	rag, err := NewRAGService(filepath.Join(t.TempDir(), "none.json"), func(string) ([]float32, error) {
		return nil, errors.New("must not be called")
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rag.Snapshot().Len())

	passages, _, err := rag.GetRelevantContext("domates")
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestRAGService_CorruptCacheFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, writeFile(path, `{"documents": [{"id": "a"}], "embeddings": []}`))

	_, err := NewRAGService(path, fakeEmbed)
	assert.ErrorIs(t, err, embcache.ErrCorruptCache)
}

func TestRAGService_ReloadKeepsOldSnapshotOnError(t *testing.T) {
	rag, err := NewRAGService(threeDocCache(t), fakeEmbed)
	require.NoError(t, err)
	old := rag.Snapshot()

	err = rag.Reload(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Same(t, old, rag.Snapshot())

	next := writeCache(t, []embcache.Document{{ID: "tip-9", Type: DocTypeTip}}, [][]float32{{1, 0, 0, 0}})
	require.NoError(t, rag.Reload(next))
	assert.Equal(t, 1, rag.Snapshot().Len())
	assert.Equal(t, 3, old.Len())
}

func TestRAGService_RefreshPicksUpRebuiltCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rag_cache.json")
	rag, err := NewRAGService(path, fakeEmbed)
	require.NoError(t, err)
	assert.Equal(t, 0, rag.Snapshot().Len())

	_, err = rag.Refresh()
	require.Error(t, err)

	require.NoError(t, embcache.Save(path, []embcache.Document{{ID: "tip-1", Type: DocTypeTip, Content: "domates ipucu"}}, [][]float32{{1, 5, 0, 0}}))
	n, err := rag.Refresh()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, sources, err := rag.GetRelevantContext("domates")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "tip-1", sources[0].Document.ID)
}
