// Package store provides a SQLite-backed cache for parsed statement rows and
// the set of merchants the user has already reviewed.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/theirongolddev/recur/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotReviewed is returned when unmarking a merchant that was never marked.
var ErrNotReviewed = errors.New("merchant not reviewed")

// Cache provides SQLite-backed transaction caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces every cached row of filePath with txns and records the
// file's mtime and size, all in one transaction.
func (c *Cache) SaveFile(filePath string, txns []model.Transaction, mtimeNs, sizeBytes int64) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO file_tracker (file_path, mtime_ns, size_bytes, parsed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			mtime_ns = excluded.mtime_ns,
			size_bytes = excluded.size_bytes,
			parsed_at = excluded.parsed_at`,
		filePath, mtimeNs, sizeBytes, now)
	if err != nil {
		return fmt.Errorf("tracking %s: %w", filePath, err)
	}

	if _, err := tx.Exec("DELETE FROM transactions WHERE file_path = ?", filePath); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO transactions
		(file_path, id, account, date, description, amount)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range txns {
		_, err := stmt.Exec(filePath, t.ID, t.Account, t.Date.Format(time.RFC3339Nano), t.Description, t.Amount)
		if err != nil {
			return fmt.Errorf("inserting %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// LoadAllTransactions reads every cached row, in file then insertion order.
func (c *Cache) LoadAllTransactions() ([]model.Transaction, error) {
	rows, err := c.db.Query(`SELECT id, account, date, description, amount
		FROM transactions ORDER BY file_path, rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var date string
		if err := rows.Scan(&t.ID, &t.Account, &date, &t.Description, &t.Amount); err != nil {
			return nil, err
		}
		t.Date, err = time.Parse(time.RFC3339Nano, date)
		if err != nil {
			return nil, fmt.Errorf("parsing cached date %q: %w", date, err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// DeleteFile removes a file's tracking entry and, by cascade, its rows.
func (c *Cache) DeleteFile(filePath string) error {
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", filePath)
	return err
}

// TransactionCount returns the number of cached rows.
func (c *Cache) TransactionCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}

// Reviewed is one merchant the user has confirmed or dismissed.
type Reviewed struct {
	Key        string
	ReviewedAt time.Time
	Note       string
}

// MarkReviewed records key as reviewed, replacing any earlier note.
func (c *Cache) MarkReviewed(key, note string) error {
	_, err := c.db.Exec(`INSERT INTO reviewed (merchant_key, reviewed_at, note)
		VALUES (?, ?, ?)
		ON CONFLICT(merchant_key) DO UPDATE SET
			reviewed_at = excluded.reviewed_at,
			note = excluded.note`,
		key, time.Now().UTC().Format(time.RFC3339), note)
	if err != nil {
		return fmt.Errorf("marking %q reviewed: %w", key, err)
	}
	return nil
}

// UnmarkReviewed forgets key. Returns ErrNotReviewed if it wasn't marked.
func (c *Cache) UnmarkReviewed(key string) error {
	res, err := c.db.Exec("DELETE FROM reviewed WHERE merchant_key = ?", key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", key, ErrNotReviewed)
	}
	return nil
}

// ReviewedKeys returns the reviewed merchant keys as a set, ready to pass
// as the detector's skip list.
func (c *Cache) ReviewedKeys() (map[string]struct{}, error) {
	list, err := c.ListReviewed()
	if err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(list))
	for _, r := range list {
		keys[r.Key] = struct{}{}
	}
	return keys, nil
}

// ListReviewed returns every reviewed merchant sorted by key.
func (c *Cache) ListReviewed() ([]Reviewed, error) {
	rows, err := c.db.Query("SELECT merchant_key, reviewed_at, note FROM reviewed")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Reviewed
	for rows.Next() {
		var r Reviewed
		var at string
		if err := rows.Scan(&r.Key, &at, &r.Note); err != nil {
			return nil, err
		}
		r.ReviewedAt, _ = time.Parse(time.RFC3339, at)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
