package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/recur/internal/logger"
	"github.com/theirongolddev/recur/internal/source"
	"github.com/theirongolddev/recur/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
	Removed   int // tracked files no longer on disk
}

// LoadWithCache discovers, diffs against cache, parses only changed files,
// and returns the combined transaction set.
func LoadWithCache(ctx context.Context, dir string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	log := logger.FromContext(ctx)

	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &CachedLoadResult{
		LoadResult: LoadResult{
			TotalFiles:   len(files),
			AccountCount: source.CountAccounts(files),
		},
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	// Forget files that were deleted or moved since the last run.
	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[f.Path] = struct{}{}
	}
	for path := range tracked {
		if _, ok := present[path]; ok {
			continue
		}
		if err := cache.DeleteFile(path); err != nil {
			return nil, fmt.Errorf("dropping %s from cache: %w", path, err)
		}
		result.Removed++
		log.Info().Str("file", path).Msg("statement gone, dropped from cache")
	}

	var toReparse []source.DiscoveredFile
	unchanged := make(map[string]struct{})

	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}

		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() {
			unchanged[f.Path] = struct{}{}
		} else {
			toReparse = append(toReparse, f)
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)
	result.ParsedFiles = len(unchanged)

	if len(toReparse) > 0 {
		results, err := parseFiles(ctx, toReparse, func(n int) {
			if progressFn != nil {
				progressFn(n+result.CacheHits, result.TotalFiles)
			}
		})
		if err != nil {
			return nil, err
		}

		for i, pr := range results {
			path := toReparse[i].Path
			if pr.Err != nil {
				log.Warn().Err(pr.Err).Str("file", path).Msg("skipping unreadable statement")
				result.FileErrors++
				if _, ok := tracked[path]; ok {
					if err := cache.DeleteFile(path); err != nil {
						return nil, fmt.Errorf("dropping %s from cache: %w", path, err)
					}
				}
				continue
			}
			result.ParsedFiles++
			result.ParseErrors += pr.ParseErrors

			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if err := cache.SaveFile(path, pr.Transactions, info.ModTime().UnixNano(), info.Size()); err != nil {
				return nil, fmt.Errorf("caching %s: %w", path, err)
			}
		}
	}

	// Every live file's rows are in the cache now, so one read returns all of them.
	txns, err := cache.LoadAllTransactions()
	if err != nil {
		return nil, fmt.Errorf("loading cached transactions: %w", err)
	}
	result.Transactions = txns

	log.Debug().
		Int("files", result.TotalFiles).
		Int("cache_hits", result.CacheHits).
		Int("reparsed", result.Reparsed).
		Int("transactions", len(txns)).
		Msg("loaded statements")

	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "recur")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "recur")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "recur.db")
}
