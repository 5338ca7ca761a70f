// Package logging assembles structured slog loggers and formatting helpers used
// across VibeShuffle.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and fans records out so the interactive terminal sees concise
// console lines while the log directory keeps a full JSON trail. A no-op
// logger is provided for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits the same field names (component, event_type, error_hint, impact).
package logging
