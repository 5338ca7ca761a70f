package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"vibeshuffle/internal/embedcache"
	"vibeshuffle/internal/embedding"
	"vibeshuffle/internal/logging"
)

// Loader resolves the embedding of one file.
type Loader interface {
	GetOrCompute(ctx context.Context, path string) (embedding.Vector, embedcache.Outcome, error)
}

// ProbeFunc reports whether a file is decodable.
type ProbeFunc func(ctx context.Context, path string) error

// LoadOptions tunes Load.
type LoadOptions struct {
	Extensions []string
	// Probe, when set, runs before embedding; failures skip the file.
	Probe  ProbeFunc
	Logger *slog.Logger
	// Progress receives a progress bar when non-nil; otherwise progress is
	// logged at sampled percentages.
	Progress io.Writer
}

// Report summarizes a Load.
type Report struct {
	Discovered int
	Loaded     int
	Skipped    int
	Hits       int
	Computed   int
	Recomputed int
}

// TerminalProgress returns stderr when it is a terminal, otherwise nil.
func TerminalProgress() io.Writer {
	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return os.Stderr
	}
	return nil
}

// Load scans root and embeds every file through loader. Files that fail are
// skipped with a warning. An empty result returns ErrEmptyPlaylist.
func Load(ctx context.Context, root string, loader Loader, opts LoadOptions) (*Store, Report, error) {
	logger := logging.NewComponentLogger(opts.Logger, "library")

	paths, err := Scan(root, opts.Extensions)
	if err != nil {
		return nil, Report{}, err
	}
	report := Report{Discovered: len(paths)}
	logger.Info("scanned music directory", logging.String("music_dir", root), logging.Int("files", len(paths)))
	if len(paths) == 0 {
		return nil, report, fmt.Errorf("%w: no audio files under %s", ErrEmptyPlaylist, root)
	}

	progress := newProgress(opts.Progress, len(paths), logger)
	defer progress.finish()

	tracks := make([]Track, 0, len(paths))
	vectors := make([]embedding.Vector, 0, len(paths))
	dim := 0
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		vec, outcome, err := loadOne(ctx, path, loader, opts.Probe)
		if err == nil && dim > 0 && vec.Dim() != dim {
			err = fmt.Errorf("%w: got %d, want %d", embedding.ErrDimensionMismatch, vec.Dim(), dim)
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, report, err
			}
			report.Skipped++
			logging.WarnWithContext(logger, "skipping track", "track_skipped",
				logging.Track(path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the file decodes and the embedder is reachable"),
				logging.String(logging.FieldImpact, "track is left out of this session"))
			progress.step(i+1, path)
			continue
		}
		if dim == 0 {
			dim = vec.Dim()
		}
		switch outcome {
		case embedcache.OutcomeHit:
			report.Hits++
		case embedcache.OutcomeRecomputed:
			report.Recomputed++
		default:
			report.Computed++
		}
		tracks = append(tracks, Track{Path: path})
		vectors = append(vectors, vec)
		report.Loaded++
		progress.step(i+1, path)
	}

	if len(tracks) == 0 {
		return nil, report, fmt.Errorf("%w: all %d files were skipped", ErrEmptyPlaylist, len(paths))
	}
	store, err := NewStore(tracks, vectors)
	if err != nil {
		return nil, report, err
	}
	logger.Info("playlist ready",
		logging.Int("tracks", report.Loaded),
		logging.Int("skipped", report.Skipped),
		logging.Int("cache_hits", report.Hits),
		logging.Int("computed", report.Computed+report.Recomputed))
	return store, report, nil
}

func loadOne(ctx context.Context, path string, loader Loader, probe ProbeFunc) (embedding.Vector, embedcache.Outcome, error) {
	if probe != nil {
		if err := probe(ctx, path); err != nil {
			return nil, embedcache.OutcomeComputed, fmt.Errorf("probe: %w", err)
		}
	}
	return loader.GetOrCompute(ctx, path)
}

type progress struct {
	bar     *progressbar.ProgressBar
	sampler *logging.ProgressSampler
	total   int
	logger  *slog.Logger
}

func newProgress(w io.Writer, total int, logger *slog.Logger) *progress {
	p := &progress{total: total, logger: logger}
	if w != nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("embedding"),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(0),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		)
		return p
	}
	p.sampler = logging.NewProgressSampler(10)
	return p
}

func (p *progress) step(done int, path string) {
	if p.bar != nil {
		_ = p.bar.Add(1)
		return
	}
	if p.sampler.ShouldLog(done, p.total) {
		p.logger.Info("embedding progress",
			logging.Int("done", done),
			logging.Int("total", p.total),
			logging.Float64(logging.FieldProgressPercent, logging.Percent(done, p.total)),
			logging.Track(path))
	}
}

func (p *progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
