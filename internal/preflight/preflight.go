package preflight

import (
	"context"

	"vibeshuffle/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional marks checks whose failure degrades rather than blocks playback.
	Optional bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadableDirectory("Music directory", cfg.Paths.MusicDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	// A broken cache only costs recomputation.
	cache := CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir)
	cache.Optional = true
	results = append(results, cache)

	for _, dep := range CheckSystemDeps(cfg) {
		result := Result{Name: dep.Name, Passed: dep.Available, Optional: dep.Optional, Detail: dep.Path}
		if !dep.Available {
			result.Detail = dep.Detail
		}
		results = append(results, result)
	}

	results = append(results, CheckEmbedder(ctx, cfg.Embedder))
	return results
}

// Failed returns the failed checks that are not optional.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
