// Package logging holds the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the shared logger. Packages log through it directly.
var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// SetLogger overrides the shared logger (tests, CLI flags).
func SetLogger(l *slog.Logger) {
	Logger = l
}

// Init replaces the shared logger with a text handler writing to w at the
// given level and returns it.
func Init(w io.Writer, level string) *slog.Logger {
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	SetLogger(l)
	return l
}

// Discard silences all logging.
func Discard() {
	SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ParseLevel converts a string log level to slog.Level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "critical", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
