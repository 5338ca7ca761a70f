package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"vibeshuffle/internal/audio"
	"vibeshuffle/internal/logging"
	"vibeshuffle/internal/search"
	"vibeshuffle/internal/session"
)

// DefaultPollInterval is the end-of-track polling period.
const DefaultPollInterval = 100 * time.Millisecond

const commandBuffer = 32

// ErrStopped reports a command submitted after Run returned.
var ErrStopped = errors.New("player stopped")

// Result is the outcome of a command.
type Result struct {
	// Message is the one-line report shown to the user.
	Message  string
	Snapshot session.Snapshot
	// Matches holds ranked results for KindSearch.
	Matches []search.Match
	// Quit is set when the command ended the controller.
	Quit bool
}

type outcome struct {
	result Result
	err    error
}

// Options configures a Controller.
type Options struct {
	Logger       *slog.Logger
	PollInterval time.Duration
	Search       search.Options
	// Notify receives reports for events no caller asked for, such as the
	// automatic advance at the end of a track. It runs on the controller
	// goroutine and must not submit commands.
	Notify func(Result)
}

// Controller is the single owner of a playback session.
type Controller struct {
	session  *session.Session
	backend  audio.Backend
	logger   *slog.Logger
	interval time.Duration
	search   search.Options
	notify   func(Result)

	cmds chan Command
	done chan struct{}

	// loaded is true while the backend holds the current track, playing or paused.
	loaded  bool
	matches []search.Match
}

// New returns a controller for sess. Call Run to start it.
func New(sess *session.Session, backend audio.Backend, opts Options) (*Controller, error) {
	if sess == nil {
		return nil, errors.New("player requires a session")
	}
	if backend == nil {
		return nil, errors.New("player requires an audio backend")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	backend.SetVolume(sess.Volume())
	return &Controller{
		session:  sess,
		backend:  backend,
		logger:   logging.NewComponentLogger(logger, "player"),
		interval: interval,
		search:   opts.Search,
		notify:   opts.Notify,
		cmds:     make(chan Command, commandBuffer),
		done:     make(chan struct{}),
	}, nil
}

// Run consumes commands until ctx is canceled or a quit command arrives.
// Playback is stopped on return.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Debug("player loop started", logging.Int("tracks", c.session.Store().Len()))
	defer func() {
		if err := c.backend.Stop(); err != nil {
			c.logger.Debug("stop on exit failed", logging.Error(err))
		}
		c.logger.Debug("player loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.poll()
		case cmd := <-c.cmds:
			result, err := c.handle(cmd)
			if err != nil {
				c.logger.Debug("command failed",
					logging.String(logging.FieldCommand, cmd.Kind.String()),
					logging.Error(err),
				)
			}
			if cmd.reply != nil {
				cmd.reply <- outcome{result: result, err: err}
			}
			if result.Quit {
				return nil
			}
		}
	}
}

// Do submits cmd and waits for its result.
func (c *Controller) Do(ctx context.Context, cmd Command) (Result, error) {
	cmd.reply = make(chan outcome, 1)
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case out := <-cmd.reply:
		return out.result, out.err
	case <-c.done:
		// Run may have answered just before exiting.
		select {
		case out := <-cmd.reply:
			return out.result, out.err
		default:
			return Result{}, ErrStopped
		}
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} { return c.done }

func (c *Controller) handle(cmd Command) (Result, error) {
	switch cmd.Kind {
	case KindToggle:
		return c.apply(c.session.Toggle(c.loaded))
	case KindStop:
		return c.apply(c.session.Stop())
	case KindNextRandom:
		return c.apply(c.session.NextRandom())
	case KindNextSimilar:
		t, err := c.session.NextSimilar()
		if err != nil {
			return c.report(noSelectionMessage(err)), err
		}
		return c.apply(t)
	case KindPrevious:
		return c.apply(c.session.Previous())
	case KindLike:
		t, err := c.session.Like()
		if err != nil {
			return c.report(noSelectionMessage(err)), err
		}
		snap := c.session.Snapshot()
		return c.report(fmt.Sprintf("liked: %s (%d similar queued)", t.Track.Name(), len(snap.Pending))), nil
	case KindShuffle:
		c.session.Shuffle()
		c.matches = nil
		return c.report(fmt.Sprintf("shuffled %d tracks", c.session.Store().Len())), nil
	case KindSearch:
		return c.find(cmd.Query), nil
	case KindSelect:
		return c.selectNumber(cmd.Number)
	case KindVolume:
		return c.setVolume(cmd.Volume), nil
	case KindVolumeUp:
		return c.setVolume(c.session.Volume() + VolumeStep), nil
	case KindVolumeDown:
		return c.setVolume(c.session.Volume() - VolumeStep), nil
	case KindStatus:
		return c.report(describe(c.session.Snapshot())), nil
	case KindHelp:
		return c.report(HelpText), nil
	case KindQuit:
		result := c.report("bye")
		result.Quit = true
		return result, nil
	default:
		return c.report(""), fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Kind)
	}
}

// poll advances to the next similar track when the playing track ended.
// Failures are logged; the loop keeps running.
func (c *Controller) poll() {
	if c.session.Status() != session.Playing {
		return
	}
	if !c.backend.Finished() {
		return
	}
	c.loaded = false
	t, err := c.session.NextSimilar()
	if err != nil {
		logging.WarnWithContext(c.logger, "auto-advance failed", "auto_advance_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "press m or n to pick the next track"),
			logging.String(logging.FieldImpact, "playback stopped at end of track"),
		)
		c.session.MarkStopped()
		return
	}
	result, err := c.apply(t)
	if err == nil {
		c.logger.Info("auto-advanced",
			logging.String(logging.FieldEventType, "auto_advance"),
			logging.Track(t.Track.Path),
			logging.Index(t.Index),
		)
	}
	if c.notify != nil {
		c.notify(result)
	}
}

// apply performs the backend call a transition asks for. A failed load or
// play leaves the track selected and the session stopped.
func (c *Controller) apply(t session.Transition) (Result, error) {
	name := t.Track.Name()
	switch t.Action {
	case session.ActionPlay:
		if err := c.play(t); err != nil {
			return c.fail(t, err)
		}
		return c.report("playing: " + name), nil
	case session.ActionResume:
		if err := c.backend.Unpause(); err != nil {
			return c.fail(t, err)
		}
		return c.report("resumed: " + name), nil
	case session.ActionPause:
		if err := c.backend.Pause(); err != nil {
			return c.fail(t, err)
		}
		return c.report("paused: " + name), nil
	case session.ActionStop:
		c.loaded = false
		if err := c.backend.Stop(); err != nil {
			return c.report("stopped"), fmt.Errorf("stop playback: %w", err)
		}
		return c.report("stopped"), nil
	default:
		if t.Changed {
			return c.report("selected: " + name), nil
		}
		return c.report(""), nil
	}
}

func (c *Controller) play(t session.Transition) error {
	c.loaded = false
	if err := c.backend.Load(t.Track.Path); err != nil {
		return fmt.Errorf("load %s: %w", t.Track.Path, err)
	}
	c.backend.SetVolume(c.session.Volume())
	if err := c.backend.Play(); err != nil {
		return fmt.Errorf("play %s: %w", t.Track.Path, err)
	}
	c.loaded = true
	c.logger.Debug("track started",
		logging.Track(t.Track.Path),
		logging.Index(t.Index),
	)
	return nil
}

func (c *Controller) fail(t session.Transition, err error) (Result, error) {
	c.session.MarkStopped()
	c.loaded = false
	_ = c.backend.Stop()
	logging.WarnWithContext(c.logger, "playback failed", "playback_failed",
		logging.Track(t.Track.Path),
		logging.Index(t.Index),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the file decodes with ffplay; press n or m to move on"),
		logging.String(logging.FieldImpact, "track selected but not playing"),
	)
	return c.report(fmt.Sprintf("cannot play %s: %v", t.Track.Name(), err)), err
}

func (c *Controller) find(query string) Result {
	matches := search.Find(query, c.session.Store().Names(), c.search)
	c.matches = matches
	result := c.report(describeMatches(query, matches))
	result.Matches = matches
	return result
}

// selectNumber resolves a 1-based number against the last search listing,
// falling back to the playlist position when no listing is active.
func (c *Controller) selectNumber(n int) (Result, error) {
	index := n - 1
	if len(c.matches) > 0 {
		if n < 1 || n > len(c.matches) {
			err := fmt.Errorf("%w: result %d (listing has %d)", session.ErrInvalidIndex, n, len(c.matches))
			return c.report(err.Error()), err
		}
		index = c.matches[n-1].Index
	}
	t, err := c.session.SelectByIndex(index)
	if err != nil {
		return c.report(err.Error()), err
	}
	c.matches = nil
	return c.apply(t)
}

func (c *Controller) setVolume(v float64) Result {
	level := c.session.SetVolume(v)
	c.backend.SetVolume(level)
	return c.report(fmt.Sprintf("volume: %d%%", int(math.Round(level*100))))
}

func (c *Controller) report(message string) Result {
	return Result{Message: message, Snapshot: c.session.Snapshot()}
}

func noSelectionMessage(err error) string {
	if errors.Is(err, session.ErrNoSelection) {
		return "nothing selected; press p to start"
	}
	return err.Error()
}
