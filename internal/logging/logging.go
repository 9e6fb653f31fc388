package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init sets the default slog logger. Logs always go to stderr so stdout
// stays free for results. jsonLogs selects JSON lines, used when results are
// themselves machine-read; otherwise logs are human-readable text.
func Init(jsonLogs bool, level slog.Level) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, jsonLogs, level)))
}

// NewHandler builds the handler Init installs, writing to w.
func NewHandler(w io.Writer, jsonLogs bool, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if jsonLogs {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
