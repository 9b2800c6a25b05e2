package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates the process-wide slog.Logger. Production output is JSON on
// stdout at Info level; debug mode switches to a human-readable text
// handler at Debug level.
func New(debug bool) *slog.Logger {
	return NewWithWriter(os.Stdout, debug)
}

// NewWithWriter creates a logger with a specific writer, for tests.
func NewWithWriter(w io.Writer, debug bool) *slog.Logger {
	if debug {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
