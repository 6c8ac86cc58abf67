// Package logging wraps slog with the platform's JSON logging conventions.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger emits structured JSON records. Binaries build one at startup and
// hand component-tagged children to the packages they wire up.
type Logger struct {
	*slog.Logger
}

// New creates a stdout logger at the given level. Unknown or empty levels
// fall back to info.
func New(level string) *Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter creates a logger writing to w, mainly so tests can capture
// output.
func NewWithWriter(w io.Writer, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{Logger: slog.New(handler)}
}

// Default returns an info-level stdout logger.
func Default() *Logger {
	return New("info")
}

// Component returns a child logger that tags every record with the
// component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("component", name))}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
