// Package logging provides structured logging for logpulse.
//
// Diagnostics go to stderr so they never mix with pulse lines and reports
// on stdout, and never end up in the captured log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a logger writing to stderr. Format is "json" or "text";
// verbose lowers the level to debug and adds source locations.
func New(format string, verbose bool) *slog.Logger {
	return NewWithWriter(os.Stderr, format, verbose)
}

// NewWithWriter creates a logger writing to w. Useful for tests and for
// discarding output when the TUI owns the terminal.
func NewWithWriter(w io.Writer, format string, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything. Used while the TUI is
// active so log output cannot corrupt the dashboard.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetDefault installs the logger as the slog package default.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
