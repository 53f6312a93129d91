package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/findmypet-api/internal/config"
	"github.com/phrazzld/findmypet-api/internal/platform/logger"
	"github.com/phrazzld/findmypet-api/internal/platform/metrics"
	"github.com/phrazzld/findmypet-api/internal/platform/postgres"
	"github.com/phrazzld/findmypet-api/internal/platform/uploads"
	"github.com/phrazzld/findmypet-api/internal/service"
	"github.com/phrazzld/findmypet-api/internal/service/auth"
	"github.com/phrazzld/findmypet-api/internal/store"
)

// application holds all the shared application dependencies. It is built
// once at startup and passed explicitly; nothing lives in package globals.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	metrics *metrics.Metrics

	jwtService     auth.JWTService
	accountService service.AccountService
	petPostService service.PetPostService
}

// newApplication wires stores, services and attachment storage on top of an
// open database. Initialization order: token service, stores, storage, services.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	userStore := postgres.NewPostgresUserStore(db, logger)
	petPostStore := postgres.NewPostgresPetPostStore(db, logger)
	transactor := store.NewSQLTransactor(db)

	storage, err := uploads.NewLocalStorage(cfg.Uploads, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload storage: %w", err)
	}
	logger.Info("Upload storage ready", "dir", storage.Dir(), "url_prefix", storage.URLPrefix())

	app.accountService, err = service.NewAccountService(
		userStore,
		transactor,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.NewBcryptVerifier(),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize account service: %w", err)
	}

	app.petPostService, err = service.NewPetPostService(petPostStore, transactor, storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pet post service: %w", err)
	}

	return app, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
		return
	}
	app.logger.Info("Database connection closed")
}

// bootstrap loads configuration, sets up logging and opens the database.
func bootstrap(ctx context.Context) (*config.Config, *slog.Logger, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

// runServe applies pending migrations and serves HTTP until ctx is cancelled.
func runServe(ctx context.Context) error {
	cfg, log, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	if err := postgres.Migrate(ctx, db, postgres.MigrateUp, log); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return err
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}

// runMigrate executes a single goose command.
func runMigrate(ctx context.Context, command string) error {
	_, log, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return postgres.Migrate(ctx, db, command, log)
}
