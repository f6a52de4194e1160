package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/recur/internal/model"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "sub", "recur.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sample(account string, n int) []model.Transaction {
	base := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	txns := make([]model.Transaction, n)
	for i := range txns {
		txns[i] = model.Transaction{
			ID:          account + "-" + string(rune('a'+i)),
			Date:        base.AddDate(0, i, 0),
			Description: "Kortköp NETFLIX.COM",
			Amount:      -99.5,
			Account:     account,
		}
	}
	return txns
}

func TestSaveAndLoad(t *testing.T) {
	c := openTemp(t)

	require.NoError(t, c.SaveFile("/data/checking.csv", sample("checking", 3), 100, 2048))
	require.NoError(t, c.SaveFile("/data/savings.csv", sample("savings", 2), 200, 512))

	got, err := c.LoadAllTransactions()
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, sample("checking", 3), got[:3])
	assert.Equal(t, sample("savings", 2), got[3:])

	tracked, err := c.GetTrackedFiles()
	require.NoError(t, err)
	assert.Equal(t, FileInfo{MtimeNs: 100, SizeBytes: 2048}, tracked["/data/checking.csv"])
	assert.Equal(t, FileInfo{MtimeNs: 200, SizeBytes: 512}, tracked["/data/savings.csv"])
}

func TestSaveFile_ReplacesRows(t *testing.T) {
	c := openTemp(t)

	require.NoError(t, c.SaveFile("/data/checking.csv", sample("checking", 4), 100, 2048))
	require.NoError(t, c.SaveFile("/data/checking.csv", sample("checking", 2), 101, 1024))

	n, err := c.TransactionCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tracked, err := c.GetTrackedFiles()
	require.NoError(t, err)
	assert.Equal(t, int64(101), tracked["/data/checking.csv"].MtimeNs)
}

func TestDeleteFile(t *testing.T) {
	c := openTemp(t)

	require.NoError(t, c.SaveFile("/data/checking.csv", sample("checking", 3), 100, 2048))
	require.NoError(t, c.DeleteFile("/data/checking.csv"))

	n, err := c.TransactionCount()
	require.NoError(t, err)
	assert.Zero(t, n)

	tracked, err := c.GetTrackedFiles()
	require.NoError(t, err)
	assert.Empty(t, tracked)
}

func TestReviewed(t *testing.T) {
	c := openTemp(t)

	keys, err := c.ReviewedKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, c.MarkReviewed("Spotify", "family plan"))
	require.NoError(t, c.MarkReviewed("Netflix", ""))
	require.NoError(t, c.MarkReviewed("Spotify", "cancelled"))

	list, err := c.ListReviewed()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Netflix", list[0].Key)
	assert.Equal(t, "Spotify", list[1].Key)
	assert.Equal(t, "cancelled", list[1].Note)
	assert.False(t, list[1].ReviewedAt.IsZero())

	keys, err = c.ReviewedKeys()
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"Netflix": {}, "Spotify": {}}, keys)

	require.NoError(t, c.UnmarkReviewed("Netflix"))
	err = c.UnmarkReviewed("Netflix")
	assert.True(t, errors.Is(err, ErrNotReviewed), "err = %v", err)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recur.db")

	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.SaveFile("/data/a.csv", sample("a", 2), 1, 1))
	require.NoError(t, c.MarkReviewed("Netflix", ""))
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	n, err := c.TransactionCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := c.ReviewedKeys()
	require.NoError(t, err)
	assert.Contains(t, keys, "Netflix")
}
