package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/gray-logic-av/internal/infrastructure/config"
)

// ServiceName is the value of the service attribute on every record.
const ServiceName = "graylogic-av"

// Logger is a slog.Logger whose records carry service and version
// attributes. Safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to stdout, or stderr when cfg.Output says so.
func New(cfg config.LoggingConfig, version string) *Logger {
	var w io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		w = os.Stderr
	}
	return NewWithWriter(cfg, version, w)
}

// NewWithWriter creates a Logger writing to w. cfg.Output is ignored.
// Debug level also records the source position of each call.
func NewWithWriter(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	return &Logger{Logger: slog.New(h).With("service", ServiceName, "version", version)}
}

// parseLevel maps a configured level name to slog. Unknown names mean info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// With returns a child logger carrying args on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component returns a child tagged component=name.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Default is the JSON info-level logger used before config is loaded.
func Default() *Logger {
	return New(config.LoggingConfig{}, "dev")
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}
