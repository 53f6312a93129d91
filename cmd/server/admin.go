package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/findmypet-api/internal/platform/postgres"
	"github.com/phrazzld/findmypet-api/internal/service"
	"github.com/phrazzld/findmypet-api/internal/service/auth"
	"github.com/phrazzld/findmypet-api/internal/store"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@example.com"
)

type adminOptions struct {
	Username string
	Email    string
	Password string
}

// runCreateAdmin seeds the administrator account against the configured database.
func runCreateAdmin(ctx context.Context, opts adminOptions) error {
	cfg, log, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	accounts, err := service.NewAccountService(
		postgres.NewPostgresUserStore(db, log),
		store.NewSQLTransactor(db),
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.NewBcryptVerifier(),
		log,
	)
	if err != nil {
		return err
	}

	_, err = createAdmin(ctx, accounts, opts, log)
	return err
}

// createAdmin registers the admin account unless an account with the same
// email or username already exists. It reports whether an account was created.
func createAdmin(
	ctx context.Context,
	accounts service.AccountService,
	opts adminOptions,
	log *slog.Logger,
) (bool, error) {
	user, err := accounts.Register(ctx, service.RegisterParams{
		Username: opts.Username,
		Email:    opts.Email,
		Password: opts.Password,
	})
	switch {
	case err == nil:
		log.Info("admin user created", slog.Int64("user_id", user.ID), slog.String("username", user.Username))
		return true, nil
	case errors.Is(err, store.ErrDuplicate):
		log.Info("admin user already exists", slog.String("username", opts.Username))
		return false, nil
	default:
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}
}
