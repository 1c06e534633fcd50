package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/limbx/limbx-core/internal/infrastructure/config"
)

// ServiceName is the service field on every entry.
const ServiceName = "limbx-core"

// Logger is the core's structured logger: slog with the service and
// version fields attached and durations rendered for operators.
//
// Safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds the logger described by the logging section of config.yaml.
//
// Output is "stdout" (default) or "stderr"; format is "json" (default) or
// "text". Durations such as a run's total time are written as "42.5s"
// rather than nanoseconds.
//
// Parameters:
//   - cfg: Logging configuration from config.yaml
//   - version: Build version, added to every entry
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		output = os.Stderr
	}
	return newLogger(output, cfg, version)
}

func newLogger(w io.Writer, cfg config.LoggingConfig, version string) *Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: humanDurations,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", ServiceName),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// humanDurations rewrites duration values as time.Duration strings.
func humanDurations(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindDuration {
		return slog.String(a.Key, a.Value.Duration().Round(time.Millisecond).String())
	}
	return a
}

// parseLevel maps debug, info, warn(ing) and error; anything else is info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// With returns a child logger with extra fields.
//
// Example:
//
//	engineLogger := logger.With("component", "engine")
//	engineLogger.Info("instance created") // Includes component=engine
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component returns a child logger tagged with the subsystem name
// (engine, mqtt, api, roster, ...).
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Default is the logger used before config.yaml has been read: JSON on
// stdout at info level, version "dev".
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
