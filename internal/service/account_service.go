package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/findmypet-api/internal/domain"
	"github.com/phrazzld/findmypet-api/internal/platform/logger"
	"github.com/phrazzld/findmypet-api/internal/service/auth"
	"github.com/phrazzld/findmypet-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// RegisterParams holds a registration request that already passed
// required-field checks.
type RegisterParams struct {
	Username string
	Email    string
	Password string
	Phone    *string
}

// AccountService manages account registration, login and lookup.
type AccountService interface {
	// Register creates an account. Returns store.ErrEmailExists or
	// store.ErrUsernameExists on conflicts, email being checked first.
	Register(ctx context.Context, params RegisterParams) (*domain.User, error)

	// Authenticate returns the account matching email and password, or
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetAccount returns store.ErrUserNotFound for unknown IDs.
	GetAccount(ctx context.Context, id int64) (*domain.User, error)
}

type accountServiceImpl struct {
	users    store.UserStore
	tx       store.Transactor
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	logger   *slog.Logger
}

// NewAccountService creates an AccountService.
// It returns an error if any of the required dependencies are nil.
func NewAccountService(
	users store.UserStore,
	tx store.Transactor,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) (AccountService, error) {
	switch {
	case users == nil:
		return nil, errors.New("user store cannot be nil")
	case tx == nil:
		return nil, errors.New("transactor cannot be nil")
	case hasher == nil:
		return nil, errors.New("password hasher cannot be nil")
	case verifier == nil:
		return nil, errors.New("password verifier cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &accountServiceImpl{
		users:    users,
		tx:       tx,
		hasher:   hasher,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "account_service")),
	}, nil
}

// Register implements AccountService.Register
func (s *accountServiceImpl) Register(ctx context.Context, params RegisterParams) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var user *domain.User
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		if err := ensureAbsent(ctx, users.GetByEmail, params.Email, store.ErrEmailExists); err != nil {
			return err
		}
		if err := ensureAbsent(ctx, users.GetByUsername, params.Username, store.ErrUsernameExists); err != nil {
			return err
		}

		hash, err := s.hasher.Hash(params.Password)
		if err != nil {
			if errors.Is(err, bcrypt.ErrPasswordTooLong) {
				return domain.NewValidationError("password must be at most 72 bytes")
			}
			return NewServiceError("account", "register", "failed to hash password", err)
		}

		user, err = domain.NewUser(params.Username, params.Email, hash, params.Phone)
		if err != nil {
			return domain.NewValidationError(err.Error())
		}

		return users.Create(ctx, user)
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("registration conflict", slog.String("error", err.Error()))
		} else {
			log.Error("registration failed", slog.String("error", err.Error()))
		}
		return nil, err
	}

	log.Info("account registered", slog.Int64("user_id", user.ID))
	return user, nil
}

// ensureAbsent fails with conflict when lookup finds a row for key.
func ensureAbsent(
	ctx context.Context,
	lookup func(context.Context, string) (*domain.User, error),
	key string,
	conflict error,
) error {
	_, err := lookup(ctx, key)
	switch {
	case err == nil:
		return conflict
	case errors.Is(err, store.ErrUserNotFound):
		return nil
	default:
		return err
	}
}

// Authenticate implements AccountService.Authenticate
func (s *accountServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up account for login", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.verifier.Compare(user.PasswordHash, password); err != nil {
		log.Debug("login with wrong password", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetAccount implements AccountService.GetAccount
func (s *accountServiceImpl) GetAccount(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve account",
				slog.String("error", err.Error()),
				slog.Int64("user_id", id))
		}
		return nil, err
	}
	return user, nil
}
