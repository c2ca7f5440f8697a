package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup creates the process logger, sets it as the default and returns it.
// level accepts debug, info, warn or error (case-insensitive, default info).
// format "json" selects JSON output; anything else is text.
func Setup(level, format string) *slog.Logger {
	return New(os.Stderr, level, format)
}

// New builds a logger writing to w without touching the default.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	if w == os.Stderr {
		slog.SetDefault(logger)
	}
	return logger
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
