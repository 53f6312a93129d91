//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database. Tests using it are skipped unless a database URL is
// configured through FINDMYPET_TEST_DATABASE_URL or FINDMYPET_DATABASE_URL.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/findmypet-api/internal/platform/logger"
	"github.com/phrazzld/findmypet-api/internal/platform/postgres"
	"github.com/phrazzld/findmypet-api/internal/redact"
	"github.com/stretchr/testify/require"
)

// Environment variables consulted for the test database URL, in order.
const (
	EnvTestDatabaseURL = "FINDMYPET_TEST_DATABASE_URL"
	EnvDatabaseURL     = "FINDMYPET_DATABASE_URL"
)

// Timeout bounds setup operations such as ping and migrations.
const Timeout = 30 * time.Second

var migrateOnce sync.Once

// DatabaseURL returns the configured test database URL, or "" when none is set.
func DatabaseURL() string {
	for _, key := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// Open connects to the test database and applies all migrations once per
// process. The test is skipped when no database URL is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := DatabaseURL()
	if dbURL == "" {
		t.Skipf("skipping: set %s to run database tests", EnvTestDatabaseURL)
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("test database unreachable at %s: %v", redact.String(dbURL), redact.Error(err))
	}

	var migrateErr error
	migrateOnce.Do(func() {
		log, _ := logger.NewTestLogger(t)
		migrateErr = postgres.Migrate(ctx, db, postgres.MigrateUp, log)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// can write freely without leaking rows into each other.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin test transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
