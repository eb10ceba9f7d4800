package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/AlperErd0gan/Filizlen-App/internal/embcache"
)

func writeTestCache(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rag_cache.json")
	docs := []embcache.Document{
		{ID: "news-1", Type: "news", Content: "Fındık alımı başladı.", Metadata: map[string]any{"title": "Fındık piyasası"}},
		{ID: "tip-1", Type: "tip", Content: "Domatesleri düzenli sulayın."},
	}
	matrix := [][]float32{
		{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0, 1.1, 1.2},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	}
	require.NoError(t, embcache.Save(path, docs, matrix))
	return path
}

func runApp(t *testing.T, cache string, args ...string) (string, error) {
	t.Helper()
	app := newApp(cache)
	var out bytes.Buffer
	app.Writer = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"inspect"}, args...))
	return out.String(), err
}

func TestCountCommand(t *testing.T) {
	out, err := runApp(t, writeTestCache(t), "count")
	require.NoError(t, err)
	assert.Contains(t, out, "Total documents: 2")
	assert.Contains(t, out, "(2, 12)")
}

func TestListCommand(t *testing.T) {
	out, err := runApp(t, writeTestCache(t), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1. [NEWS] Fındık piyasası (ID: news-1)")
	assert.Contains(t, out, "2. [TIP] No Title (ID: tip-1)")
}

func TestShowCommand(t *testing.T) {
	cache := writeTestCache(t)

	out, err := runApp(t, cache, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "ID: news-1")
	assert.Contains(t, out, "Fındık alımı başladı.")
	assert.Contains(t, out, "Size: 12")
	assert.Contains(t, out, "... 2 more dimensions ...")

	out, err = runApp(t, cache, "show", "--preview", "20", "2")
	require.NoError(t, err)
	assert.NotContains(t, out, "more dimensions")

	_, err = runApp(t, cache, "show", "3")
	assert.Error(t, err)
	_, err = runApp(t, cache, "show", "abc")
	assert.Error(t, err)
}

func TestMissingCache(t *testing.T) {
	_, err := runApp(t, filepath.Join(t.TempDir(), "none.json"), "count")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache file not found")
}
