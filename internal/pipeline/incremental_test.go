package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/recur/internal/store"
)

func openCache(t *testing.T) *store.Cache {
	t.Helper()
	c, err := store.Open(filepath.Join(t.TempDir(), "recur.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLoadWithCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cache := openCache(t)
	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	checking := writeCSV(t, dir, "checking.csv", monthlyRows(start, "Netflix", -99, 6)...)
	savings := writeCSV(t, dir, "savings.csv", monthlyRows(start, "Spotify", -119, 4)...)

	first, err := LoadWithCache(ctx, dir, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, first.CacheHits)
	assert.Equal(t, 2, first.Reparsed)
	assert.Equal(t, 2, first.ParsedFiles)
	assert.Len(t, first.Transactions, 10)

	second, err := LoadWithCache(ctx, dir, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.CacheHits)
	assert.Equal(t, 0, second.Reparsed)
	assert.Equal(t, first.Transactions, second.Transactions)

	// Grow one file and bump its mtime so the diff sees it.
	writeCSV(t, dir, "checking.csv", monthlyRows(start, "Netflix", -99, 7)...)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(checking, later, later))

	third, err := LoadWithCache(ctx, dir, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, third.CacheHits)
	assert.Equal(t, 1, third.Reparsed)
	assert.Len(t, third.Transactions, 11)

	require.NoError(t, os.Remove(savings))

	fourth, err := LoadWithCache(ctx, dir, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, fourth.Removed)
	assert.Len(t, fourth.Transactions, 7)

	tracked, err := cache.GetTrackedFiles()
	require.NoError(t, err)
	assert.NotContains(t, tracked, savings)
}

func TestLoadWithCache_Progress(t *testing.T) {
	dir := t.TempDir()
	cache := openCache(t)
	writeCSV(t, dir, "a.csv", "2024-01-01,Netflix,-99")
	writeCSV(t, dir, "b.csv", "2024-01-01,Spotify,-119")

	_, err := LoadWithCache(context.Background(), dir, cache, nil)
	require.NoError(t, err)

	var last int
	_, err = LoadWithCache(context.Background(), dir, cache, func(current, total int) {
		last = current
	})
	require.NoError(t, err)
	assert.Zero(t, last, "nothing reparsed, so no progress callbacks")
}

func TestCachePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	assert.Equal(t, "/tmp/xdg-cache/recur", CacheDir())
	assert.Equal(t, "/tmp/xdg-cache/recur/recur.db", CachePath())
}
