package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/openswap/barter-api/internal/config"
	"github.com/openswap/barter-api/internal/platform/logger"
	"github.com/openswap/barter-api/internal/platform/postgres"
	"github.com/openswap/barter-api/internal/service"
	"github.com/openswap/barter-api/internal/service/auth"
	"github.com/openswap/barter-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore     store.UserStore
	categoryStore store.CategoryStore
	postStore     store.PostStore
	offerStore    store.OfferStore
	tradeStore    store.TradeStore

	// Service interfaces
	jwtService   auth.JWTService
	userService  service.UserService
	postService  service.PostService
	offerService service.OfferService
}

// initializeApp loads configuration and builds the full dependency graph.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	app := &application{
		config: cfg,
		logger: appLogger,
		db:     db,
	}

	if err := app.buildServices(); err != nil {
		app.cleanup()
		return nil, err
	}

	return app, nil
}

// buildServices constructs the stores and services from the open database
// connection.
func (app *application) buildServices() error {
	app.userStore = postgres.NewPostgresUserStore(app.db, app.logger)
	app.categoryStore = postgres.NewPostgresCategoryStore(app.db, app.logger)
	app.postStore = postgres.NewPostgresPostStore(app.db, app.logger)
	app.offerStore = postgres.NewPostgresOfferStore(app.db, app.logger)
	app.tradeStore = postgres.NewPostgresTradeStore(app.db, app.logger)

	jwtService, err := auth.NewJWTService(app.config.Auth)
	if err != nil {
		return fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.jwtService = jwtService

	userService, err := service.NewUserService(
		app.userStore,
		auth.NewBcryptHasher(app.config.Auth.BcryptCost),
		auth.NewBcryptVerifier(),
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	app.userService = userService

	postService, err := service.NewPostService(
		app.db,
		app.postStore,
		app.offerStore,
		app.categoryStore,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create post service: %w", err)
	}
	app.postService = postService

	offerService, err := service.NewOfferService(
		app.db,
		app.postStore,
		app.offerStore,
		app.tradeStore,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create offer service: %w", err)
	}
	app.offerService = offerService

	return nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
