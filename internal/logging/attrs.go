package logging

import (
	"context"
	"log/slog"
	"time"
)

type Attr = slog.Attr

func String(key, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Track tags a line with the file path it concerns.
func Track(path string) Attr { return slog.String(FieldTrack, path) }

// Index tags a line with a playlist position.
func Index(i int) Attr { return slog.Int(FieldIndex, i) }

// Fingerprint tags a line with an embedding cache key.
func Fingerprint(fp string) Attr { return slog.String(FieldFingerprint, fp) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger tags logger with component. A nil logger discards.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact, filling generic values for any the caller left out.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	var hasHint, hasImpact bool
	for _, a := range attrs {
		switch a.Key {
		case FieldErrorHint:
			hasHint = true
		case FieldImpact:
			hasImpact = true
		}
	}
	args := make([]any, 0, len(attrs)+3)
	args = append(args, String(FieldEventType, eventType))
	for _, a := range attrs {
		if a.Key == FieldEventType {
			continue
		}
		args = append(args, a)
	}
	if !hasHint {
		args = append(args, String(FieldErrorHint, "run vibeshuffle doctor"))
	}
	if !hasImpact {
		args = append(args, String(FieldImpact, "playback continues"))
	}
	logger.Warn(msg, args...)
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
