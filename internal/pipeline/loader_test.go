package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	writeCSV(t, dir, "checking.csv", monthlyRows(start, "Kortköp NETFLIX.COM", -99, 6)...)
	writeCSV(t, dir, "savings.csv", append(monthlyRows(start, "Spotify", -119, 4), "bad,row,here")...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.csv"), []byte("foo,bar\n1,2\n"), 0o600))

	var calls atomic.Int64
	result, err := Load(context.Background(), dir, func(current, total int) {
		calls.Add(1)
		assert.Equal(t, 3, total)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalFiles)
	assert.Equal(t, 2, result.ParsedFiles)
	assert.Equal(t, 1, result.FileErrors)
	assert.Equal(t, 1, result.ParseErrors)
	assert.Equal(t, 3, result.AccountCount)
	assert.Len(t, result.Transactions, 10)
	assert.Equal(t, int64(3), calls.Load())
}

func TestLoad_MissingDir(t *testing.T) {
	result, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, err)
	assert.Zero(t, result.TotalFiles)
	assert.Empty(t, result.Transactions)
}

func TestLoad_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "a.csv", "2024-01-01,Netflix,-99")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, dir, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
