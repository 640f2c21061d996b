// Package main implements the entry point for the barter API server,
// which manages trade listings, the offer lifecycle, and the trade ledger.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/joho/godotenv"
)

// main wires configuration, logging, the database, migrations, services,
// and the HTTP server, then blocks until shutdown.
func main() {
	// A local .env is optional; real deployments set environment variables.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.runMigrations(context.Background()); err != nil {
		app.cleanup()
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	router := app.setupRouter()
	if err := app.startHTTPServer(context.Background(), router); err != nil {
		slog.Error("server exited with error", "error", err)
		app.cleanup()
		log.Fatalf("Server error: %v", err)
	}
}
