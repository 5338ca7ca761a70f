package playerrun

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"vibeshuffle/internal/audio"
	"vibeshuffle/internal/config"
	"vibeshuffle/internal/ipc"
	"vibeshuffle/internal/logging"
	"vibeshuffle/internal/player"
	"vibeshuffle/internal/preflight"
	"vibeshuffle/internal/search"
	"vibeshuffle/internal/session"
)

// Options configures a player run.
type Options struct {
	LibraryOptions
	// DryRun plays through the silent backend.
	DryRun bool
	// NoShuffle keeps scan order regardless of player.shuffle_on_start.
	NoShuffle bool
	// Input supplies interactive commands, one per line. Nil disables the
	// command loop; the player is then driven over the control socket.
	Input io.Reader
	// Output receives command results. Defaults to stdout.
	Output io.Writer
	// Logger overrides the configured logger.
	Logger *slog.Logger
	// Backend overrides the configured audio backend.
	Backend audio.Backend
	// Rand seeds shuffling and random jumps.
	Rand *rand.Rand
}

// Run initializes the library and plays until quit, SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return errors.New("config is required")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	sessionID := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = logging.NewFromConfig(cfg, sessionID)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	} else {
		logger = logger.With(logging.String(logging.FieldSessionID, sessionID))
	}

	lock, err := player.AcquireLock(cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release player lock",
				logging.Error(err),
				logging.String(logging.FieldEventType, "lock_release_failed"),
				logging.String(logging.FieldErrorHint, "remove the lock file if the next start fails"),
				logging.String(logging.FieldImpact, "next player start may report another instance"))
		}
	}()

	logPreflight(ctx, logger, cfg, opts)

	start := time.Now()
	store, report, _, err := loadLibrary(ctx, cfg, logger, opts.LibraryOptions)
	if err != nil {
		return err
	}
	logger.Info("library loaded",
		logging.String(logging.FieldEventType, "library_loaded"),
		logging.Int("tracks", report.Loaded),
		logging.Int("skipped", report.Skipped),
		logging.Duration("elapsed", time.Since(start)))

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.Player.ShuffleOnStart && !opts.NoShuffle {
		store.Shuffle(rng)
	}

	sess, err := session.New(store, session.Options{
		Lookahead:          cfg.Similarity.Lookahead,
		DuplicateThreshold: cfg.Similarity.DuplicateThreshold,
		Volume:             cfg.Player.Volume,
		Rand:               rng,
	})
	if err != nil {
		return err
	}

	backend := opts.Backend
	switch {
	case backend != nil:
	case opts.DryRun:
		backend = audio.NewNull()
	default:
		backend, err = audio.New(cfg, logger)
		if err != nil {
			return err
		}
	}

	printer := newPrinter(out)
	ctrl, err := player.New(sess, backend, player.Options{
		Logger:       logger,
		PollInterval: time.Duration(cfg.Player.PollIntervalMS) * time.Millisecond,
		Search:       search.Options{Limit: cfg.Search.Limit, MinScore: cfg.Search.MinScore},
		Notify:       func(r player.Result) { printer.line(r.Message) },
	})
	if err != nil {
		return err
	}

	runErr := make(chan error, 1)
	go func() { runErr <- ctrl.Run(ctx) }()

	srv, err := ipc.NewServer(ctx, cfg.SocketPath(), ctrl, logger)
	remote := err == nil
	if err != nil {
		logging.WarnWithContext(logger, "control socket unavailable", "ipc_unavailable",
			logging.String("socket", cfg.SocketPath()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.state_dir is writable"),
			logging.String(logging.FieldImpact, "vibeshuffle ctl and hotkeys cannot reach this player"))
	} else {
		srv.Serve()
		defer srv.Close()
	}

	printer.line(fmt.Sprintf("%d tracks loaded (%d skipped). h for help.", report.Loaded, report.Skipped))
	if opts.Input != nil {
		go func() {
			if !readCommands(ctx, opts.Input, ctrl, printer, logger) {
				return
			}
			// End of input detaches the terminal. Without a control socket
			// nothing else can reach the player, so stop it.
			if !remote {
				logger.Info("command input closed; stopping player")
				cancel()
				return
			}
			logger.Info("command input closed; control continues over the socket",
				logging.String("socket", cfg.SocketPath()))
		}()
	}

	err = <-runErr
	cancel()
	return err
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config, opts Options) {
	results := preflight.RunAll(ctx, cfg)
	for _, r := range preflight.Failed(results) {
		if opts.DryRun && r.Name == "FFplay" {
			continue
		}
		if opts.Embedder != nil && r.Name == "Embedder" {
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldErrorHint, "run vibeshuffle doctor for details"),
			logging.String(logging.FieldImpact, "playback or initialization may fail"))
	}
}

// readCommands feeds input lines to the controller until EOF or shutdown.
// It reports true when the input ran out rather than the player stopping.
func readCommands(ctx context.Context, in io.Reader, ctrl *player.Controller, printer *printer, logger *slog.Logger) bool {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, err := player.ParseCommand(line)
		if err != nil {
			printer.line(err.Error())
			continue
		}
		result, err := ctrl.Do(ctx, cmd)
		if errors.Is(err, player.ErrStopped) || errors.Is(err, context.Canceled) {
			return false
		}
		if result.Message != "" {
			printer.line(result.Message)
		} else if err != nil {
			printer.line(err.Error())
		}
		if result.Quit {
			return false
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Debug("command input failed", logging.Error(err))
	}
	return ctx.Err() == nil
}
