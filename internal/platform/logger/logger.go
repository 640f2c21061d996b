// Package logger provides structured logging functionality for the
// application using Go's standard library log/slog package.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/openswap/barter-api/internal/config"
)

// ctxKey is the private context key for request-scoped loggers.
type ctxKey struct{}

// Setup initializes the application's logging system from configuration.
// It creates a structured JSON logger at the configured level, installs it
// as the process default, and returns it.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo

		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})

	log := slog.New(handler)
	slog.SetDefault(log)

	return log, nil
}

// WithLogger returns a context carrying the given logger. Request
// middleware uses it to attach a logger enriched with the trace ID.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext retrieves the logger from the context, falling back to the
// process default when none is attached.
func FromContext(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return log
	}
	return slog.Default()
}

// FromContextOrDefault retrieves the logger from the context, falling back
// to the supplied component logger instead of the process default.
func FromContextOrDefault(ctx context.Context, def *slog.Logger) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return log
	}
	if def != nil {
		return def
	}
	return slog.Default()
}
