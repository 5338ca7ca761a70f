package embedcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"vibeshuffle/internal/config"
	"vibeshuffle/internal/embedder"
	"vibeshuffle/internal/embedding"
	"vibeshuffle/internal/fingerprint"
	"vibeshuffle/internal/logging"
)

// Outcome reports how GetOrCompute produced a vector.
type Outcome int

const (
	// OutcomeHit means the vector came from the backend.
	OutcomeHit Outcome = iota
	// OutcomeComputed means the embedder ran because no record existed.
	OutcomeComputed
	// OutcomeRecomputed means a corrupt record was discarded and replaced.
	OutcomeRecomputed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeComputed:
		return "computed"
	case OutcomeRecomputed:
		return "recomputed"
	default:
		return "unknown"
	}
}

// Stats counts GetOrCompute results since construction.
type Stats struct {
	Hits       int
	Computed   int
	Recomputed int
	Failures   int
}

// Options configures a Cache.
type Options struct {
	// Backend may be nil for compute-only mode.
	Backend       Backend
	Embedder      embedder.Embedder
	Fingerprinter fingerprint.Fingerprinter
	// Dimension pins the vector length; zero adopts the first vector seen.
	Dimension int
	Logger    *slog.Logger
	Now       func() time.Time
}

// Cache maps audio files to embeddings.
type Cache struct {
	mu        sync.Mutex
	backend   Backend
	embedder  embedder.Embedder
	fp        fingerprint.Fingerprinter
	dimension int
	logger    *slog.Logger
	now       func() time.Time
	stats     Stats
}

// New constructs a Cache.
func New(opts Options) (*Cache, error) {
	if opts.Embedder == nil {
		return nil, errors.New("embedcache: embedder is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		backend:   opts.Backend,
		embedder:  opts.Embedder,
		fp:        opts.Fingerprinter,
		dimension: opts.Dimension,
		logger:    logging.NewComponentLogger(opts.Logger, "embedcache"),
		now:       now,
	}, nil
}

// OpenBackend opens the backend selected by cfg.
func OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Cache.Backend)) {
	case "files", "":
		return OpenFiles(cfg.Paths.CacheDir)
	case "sqlite":
		return OpenSQLite(ctx, cfg.Paths.CacheDir)
	default:
		return nil, fmt.Errorf("cache backend: unsupported value %q", cfg.Cache.Backend)
	}
}

// Open builds a Cache from configuration. A backend that cannot be opened is
// logged and the cache runs in compute-only mode.
func Open(ctx context.Context, cfg *config.Config, emb embedder.Embedder, logger *slog.Logger) (*Cache, error) {
	scheme, err := fingerprint.ParseScheme(cfg.Cache.Fingerprint)
	if err != nil {
		return nil, err
	}
	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		logging.WarnWithContext(logging.NewComponentLogger(logger, "embedcache"),
			"embedding cache unavailable; running compute-only", "cache_unavailable",
			logging.String("cache_dir", cfg.Paths.CacheDir),
			logging.String("backend", cfg.Cache.Backend),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.cache_dir exists and is writable"),
			logging.String(logging.FieldImpact, "every embedding is recomputed and nothing is persisted"))
		backend = nil
	}
	return New(Options{
		Backend:       backend,
		Embedder:      emb,
		Fingerprinter: fingerprint.New(scheme),
		Dimension:     cfg.Cache.Dimension,
		Logger:        logger,
	})
}

// GetOrCompute returns the embedding for path, computing and persisting it on a miss.
func (c *Cache) GetOrCompute(ctx context.Context, path string) (embedding.Vector, Outcome, error) {
	fp, err := c.fp.Of(path)
	if err != nil {
		c.recordFailure()
		return nil, OutcomeComputed, fmt.Errorf("fingerprint: %w", err)
	}

	outcome := OutcomeComputed
	if backend := c.currentBackend(); backend != nil {
		rec, loadErr := backend.Load(ctx, fp)
		if loadErr == nil {
			if dimErr := c.acceptDimension(rec.Embedding); dimErr != nil {
				loadErr = fmt.Errorf("%w: %v", ErrCorruptRecord, dimErr)
			}
		}
		switch {
		case loadErr == nil:
			c.count(OutcomeHit)
			return rec.Embedding, OutcomeHit, nil
		case errors.Is(loadErr, ErrNotFound):
		default:
			outcome = OutcomeRecomputed
			logging.WarnWithContext(c.logger, "discarding corrupt embedding record", "cache_record_corrupt",
				logging.Fingerprint(fp),
				logging.Track(path),
				logging.Error(loadErr),
				logging.String(logging.FieldErrorHint, "run vibeshuffle cache prune or cache clear if this repeats"),
				logging.String(logging.FieldImpact, "embedding is recomputed and the record overwritten"))
			if rmErr := backend.Remove(ctx, fp); rmErr != nil {
				c.logger.Debug("remove corrupt record failed", logging.Fingerprint(fp), logging.Error(rmErr))
			}
		}
	}

	vec, err := c.embedder.Embed(ctx, path)
	if err != nil {
		c.recordFailure()
		return nil, outcome, fmt.Errorf("embed: %w", err)
	}
	if err := c.acceptDimension(vec); err != nil {
		c.recordFailure()
		return nil, outcome, err
	}

	c.persist(ctx, Record{
		Fingerprint: fp,
		Scheme:      c.fp.Scheme(),
		Path:        path,
		Model:       c.embedder.Model(),
		Dimension:   len(vec),
		Embedding:   vec,
		CreatedAt:   c.now().UTC(),
	})
	c.count(outcome)
	return vec, outcome, nil
}

// Dimension returns the expected vector length, or zero before the first vector.
func (c *Cache) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ComputeOnly reports whether no backend is in use.
func (c *Cache) ComputeOnly() bool {
	return c.currentBackend() == nil
}

// Close releases the backend.
func (c *Cache) Close() error {
	c.mu.Lock()
	backend := c.backend
	c.backend = nil
	c.mu.Unlock()
	if backend == nil {
		return nil
	}
	return backend.Close()
}

func (c *Cache) persist(ctx context.Context, rec Record) {
	backend := c.currentBackend()
	if backend == nil {
		return
	}
	if err := backend.Store(ctx, rec); err != nil {
		logging.WarnWithContext(c.logger, "embedding cache write failed; switching to compute-only", "cache_unavailable",
			logging.Fingerprint(rec.Fingerprint),
			logging.Track(rec.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on the cache directory"),
			logging.String(logging.FieldImpact, "remaining embeddings are not persisted for this run"))
		c.mu.Lock()
		c.backend = nil
		c.mu.Unlock()
		_ = backend.Close()
		return
	}
	c.logger.Debug("stored embedding",
		logging.Fingerprint(rec.Fingerprint),
		logging.Track(rec.Path),
		logging.Int("dimension", rec.Dimension))
}

func (c *Cache) currentBackend() Backend {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend
}

// acceptDimension adopts the first dimension seen and rejects others.
func (c *Cache) acceptDimension(vec embedding.Vector) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := vec.Validate(c.dimension); err != nil {
		return err
	}
	if c.dimension == 0 {
		c.dimension = len(vec)
	}
	return nil
}

func (c *Cache) count(outcome Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch outcome {
	case OutcomeHit:
		c.stats.Hits++
	case OutcomeComputed:
		c.stats.Computed++
	case OutcomeRecomputed:
		c.stats.Recomputed++
	}
}

func (c *Cache) recordFailure() {
	c.mu.Lock()
	c.stats.Failures++
	c.mu.Unlock()
}
