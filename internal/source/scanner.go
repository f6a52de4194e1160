package source

import (
	"os"
	"path/filepath"
	"strings"
)

// ScanDir walks dir and discovers every CSV statement export beneath it.
// A missing directory is not an error; it simply holds no statements.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".csv") {
			return nil
		}

		files = append(files, DiscoveredFile{
			Path:    path,
			Account: strings.TrimSuffix(name, filepath.Ext(name)),
		})
		return nil
	})

	return files, err
}

// CountAccounts returns the number of distinct accounts in a set of files.
func CountAccounts(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.Account] = struct{}{}
	}
	return len(seen)
}
