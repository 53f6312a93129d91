package postgres

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"00001_create_users.sql", "00002_create_pet_posts.sql"}, names)

	for _, name := range names {
		body, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/"+name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up")
		assert.Contains(t, string(body), "-- +goose Down")
	}
}

func TestMigrateUnknownCommand(t *testing.T) {
	err := Migrate(context.Background(), nil, "sideways", nil)
	assert.ErrorContains(t, err, `unknown migration command "sideways"`)
}
