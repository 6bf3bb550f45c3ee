// Package mpclog provides the structured logging conventions shared by the
// solver and the JIT pipeline. Library code never reaches for slog.Default;
// every component that logs takes an explicit *slog.Logger, and OrDiscard
// substitutes a silent logger when the caller did not configure one -
// equivalent to the original engine's DEBUG_PRINT macro being compiled out.
package mpclog

import (
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
)

// New returns a colorized, human-facing logger suitable for examples and
// verbose test runs.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
	}))
}

// OrDiscard returns logger unchanged if non-nil, otherwise a logger that
// drops every record. Components accept a possibly-nil *slog.Logger and
// call this once at construction time rather than checking for nil at every
// call site.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1, // above any level actually logged
	}))
}
