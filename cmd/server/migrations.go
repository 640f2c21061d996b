package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/openswap/barter-api/internal/platform/postgres"
)

// slogGooseLogger adapts the goose logger interface to use slog
type slogGooseLogger struct{}

// Printf implements the goose.Logger Printf method by forwarding messages to slog.Info
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

// Fatalf implements the goose.Logger Fatalf method by forwarding error messages to slog.Error.
// Unlike the standard Fatalf behavior, this does NOT call os.Exit, so main
// can handle application exit consistently.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
}

// runMigrations brings the database schema up to the latest version using
// the migrations embedded in the binary.
func (app *application) runMigrations(ctx context.Context) error {
	log := app.logger.With(slog.String("component", "migrations"))
	startTime := time.Now()

	goose.SetLogger(&slogGooseLogger{})
	goose.SetBaseFS(postgres.MigrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	log.Info("applying database migrations")
	if err := goose.UpContext(ctx, app.db, postgres.MigrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, app.db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	log.Info("database migrations applied",
		slog.Int64("version", version),
		slog.Int64("duration_ms", time.Since(startTime).Milliseconds()))
	return nil
}
