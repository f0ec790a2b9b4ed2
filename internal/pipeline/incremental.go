package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/cusage/internal/source"
	"github.com/theirongolddev/cusage/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
	// CacheErrors counts write-back failures; the result is still complete.
	CacheErrors int
}

// LoadWithCache discovers exports, reuses cached records for files whose
// mtime and size are unchanged, parses the rest, and writes them back.
func LoadWithCache(paths []string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanPaths(paths)
	if err != nil {
		return nil, err
	}

	result := &CachedLoadResult{
		LoadResult: LoadResult{Files: files, TotalFiles: len(files)},
	}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	// Diff: partition into changed and unchanged, remembering slot order.
	slots := make([]parseResult, len(files))
	var toReparse []source.DiscoveredFile
	var reparseSlot []int

	for i, f := range files {
		key := cacheKey(f.Path)
		cached, ok := tracked[key]
		if ok && cached.Matches(f.MtimeNs, f.SizeBytes) {
			recs, err := cache.LoadFile(key)
			if err == nil {
				slots[i] = parseResult{records: recs}
				result.CacheHits++
				continue
			}
		}
		toReparse = append(toReparse, f)
		reparseSlot = append(reparseSlot, i)
	}
	result.Reparsed = len(toReparse)

	if len(toReparse) > 0 {
		parsed := parseAll(toReparse, progressFn, result.CacheHits, result.TotalFiles)
		for j, pr := range parsed {
			slots[reparseSlot[j]] = pr
		}
	}

	for i, pr := range slots {
		if pr.err != nil {
			return nil, &FileError{Path: files[i].Path, Err: pr.err}
		}
		result.Records = append(result.Records, pr.records...)
	}

	// Only write back once every file parsed, so a failed load caches nothing.
	for j, f := range toReparse {
		if _, err := cache.SaveFile(cacheKey(f.Path), f.MtimeNs, f.SizeBytes, slots[reparseSlot[j]].records); err != nil {
			result.CacheErrors++
		}
	}

	return result, nil
}

// cacheKey makes relative and absolute spellings of a path share an entry.
func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "cusage")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "cusage")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "records.db")
}
