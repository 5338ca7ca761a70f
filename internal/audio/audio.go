package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"vibeshuffle/internal/config"
)

// ErrNotLoaded reports a playback call made before Load.
var ErrNotLoaded = errors.New("no track loaded")

// Backend plays one track at a time.
type Backend interface {
	// Load replaces the current track, stopping anything still playing.
	Load(path string) error
	Play() error
	Pause() error
	Unpause() error
	Stop() error
	// SetVolume takes a level in [0, 1].
	SetVolume(volume float64)
	// Busy reports whether a track is audibly playing.
	Busy() bool
	// Finished reports, once, that the playing track reached its end.
	Finished() bool
}

// New returns the backend configured under [player].
func New(cfg *config.Config, logger *slog.Logger) (Backend, error) {
	if cfg == nil {
		return nil, errors.New("audio backend: config is nil")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Player.Backend)) {
	case "", "ffplay":
		backend := NewFFplay(cfg.FFplayBinary(), logger)
		backend.SetVolume(cfg.Player.Volume)
		return backend, nil
	case "null":
		backend := NewNull()
		backend.SetVolume(cfg.Player.Volume)
		return backend, nil
	default:
		return nil, fmt.Errorf("audio backend: unsupported backend %q", cfg.Player.Backend)
	}
}

func clampVolume(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
