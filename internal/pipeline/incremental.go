package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/dupont/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
	// Pruned counts cache entries dropped because their file is gone.
	Pruned int
	// CachedFiles is the number of files tracked by the cache after the load.
	CachedFiles int
	// CacheErr is set when the cache could not be used and the result
	// came from a full parse.
	CacheErr error
}

// LoadAuto loads specs through the parse cache at cachePath, falling back
// to a full parse when the cache cannot be opened or read. An empty
// cachePath disables the cache.
func LoadAuto(specs []BankSpec, cachePath string, progressFn ProgressFunc) (*CachedLoadResult, error) {
	var cacheErr error
	if cachePath != "" {
		cache, err := store.Open(cachePath)
		if err == nil {
			cr, loadErr := LoadWithCache(specs, cache, progressFn)
			_ = cache.Close()
			if loadErr == nil {
				return cr, nil
			}
			cacheErr = loadErr
		} else {
			cacheErr = err
		}
	}

	result, err := Load(specs, progressFn)
	if err != nil {
		return nil, err
	}
	return &CachedLoadResult{
		LoadResult: *result,
		Reparsed:   result.TotalFiles,
		CacheErr:   cacheErr,
	}, nil
}

// LoadWithCache diffs the listed files against the cache, parses only
// changed files, and stores the fresh parses. Entries for files that no
// longer exist on disk are pruned.
func LoadWithCache(specs []BankSpec, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	result := &CachedLoadResult{
		LoadResult: LoadResult{
			Registry:   NewRegistry(),
			TotalFiles: len(specs),
		},
	}
	if len(specs) == 0 {
		return result, nil
	}
	if err := checkSpecs(specs); err != nil {
		return nil, err
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	if result.Pruned, err = prune(cache, tracked); err != nil {
		return nil, fmt.Errorf("pruning cache: %w", err)
	}

	results := make([]parseResult, len(specs))
	var toReparse []int
	for i, s := range specs {
		info, err := os.Stat(s.Path)
		if err != nil {
			// Let the parser report the real error.
			toReparse = append(toReparse, i)
			continue
		}
		cached, ok := tracked[s.Path]
		if !ok || !cached.Matches(info) {
			toReparse = append(toReparse, i)
			continue
		}
		rs, err := cache.LoadRecordSet(s.Path)
		if err != nil {
			toReparse = append(toReparse, i)
			continue
		}
		results[i] = parseResult{rs: rs}
		result.CacheHits++
	}
	result.Reparsed = len(toReparse)

	if len(toReparse) > 0 {
		sub := make([]BankSpec, len(toReparse))
		for j, i := range toReparse {
			sub[j] = specs[i]
		}
		if progressFn != nil && result.CacheHits > 0 {
			progressFn(result.CacheHits, result.TotalFiles)
		}
		fresh := parseAll(sub, progressFn, result.CacheHits, result.TotalFiles)

		for j, i := range toReparse {
			results[i] = fresh[j]
			if fresh[j].err != nil {
				continue
			}
			info, err := os.Stat(specs[i].Path)
			if err == nil {
				_ = cache.SaveRecordSet(fresh[j].rs, info.ModTime().UnixNano(), info.Size())
			}
		}
	}

	if err := collect(&result.LoadResult, specs, results); err != nil {
		return nil, err
	}
	if result.CachedFiles, err = cache.FileCount(); err != nil {
		return nil, fmt.Errorf("counting cache: %w", err)
	}
	return result, nil
}

// prune deletes tracked entries whose file has been removed and drops them
// from tracked. Files that exist but were not requested are kept.
func prune(cache *store.Cache, tracked map[string]store.FileInfo) (int, error) {
	n := 0
	for path := range tracked {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := cache.DeleteFile(path); err != nil {
			return n, err
		}
		delete(tracked, path)
		n++
	}
	return n, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "dupont")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "dupont")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "records.db")
}
