package playerrun

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"vibeshuffle/internal/config"
	"vibeshuffle/internal/embedcache"
	"vibeshuffle/internal/embedder"
	"vibeshuffle/internal/library"
	"vibeshuffle/internal/media/ffprobe"
	"vibeshuffle/internal/preflight"
)

// LibraryOptions configures library initialization.
type LibraryOptions struct {
	// Embedder overrides the configured embedding function.
	Embedder embedder.Embedder
	// Progress receives a progress bar; nil logs sampled progress instead.
	Progress io.Writer
}

// Scan embeds every track under the music directory, filling the cache,
// and reports what it found.
func Scan(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts LibraryOptions) (library.Report, embedcache.Stats, error) {
	_, report, stats, err := loadLibrary(ctx, cfg, logger, opts)
	return report, stats, err
}

func loadLibrary(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts LibraryOptions) (*library.Store, library.Report, embedcache.Stats, error) {
	if err := cfg.ValidateMusicDir(); err != nil {
		return nil, library.Report{}, embedcache.Stats{}, err
	}
	emb := opts.Embedder
	if emb == nil {
		var err error
		emb, err = embedder.New(cfg.Embedder)
		if err != nil {
			return nil, library.Report{}, embedcache.Stats{}, fmt.Errorf("embedder: %w", err)
		}
	}
	cache, err := embedcache.Open(ctx, cfg, emb, logger)
	if err != nil {
		return nil, library.Report{}, embedcache.Stats{}, fmt.Errorf("embedding cache: %w", err)
	}
	defer cache.Close()

	loadOpts := library.LoadOptions{
		Extensions: cfg.Player.Extensions,
		Logger:     logger,
		Progress:   opts.Progress,
	}
	if cfg.Probe.Enabled {
		binary := preflight.FFprobePath(cfg)
		loadOpts.Probe = func(ctx context.Context, path string) error {
			return ffprobe.Probe(ctx, binary, path)
		}
	}
	store, report, err := library.Load(ctx, cfg.Paths.MusicDir, cache, loadOpts)
	return store, report, cache.Stats(), err
}
