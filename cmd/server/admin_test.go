package main

import (
	"context"
	"io"
	"testing"

	"github.com/phrazzld/findmypet-api/internal/domain"
	"github.com/phrazzld/findmypet-api/internal/mocks"
	"github.com/phrazzld/findmypet-api/internal/platform/logger"
	"github.com/phrazzld/findmypet-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAdmin(t *testing.T) {
	log, buf := logger.NewTestLogger(t)
	accounts, err := service.NewAccountService(
		mocks.NewMockUserStore(), &mocks.MockTransactor{}, &mocks.MockPasswordHasher{}, mocks.PrefixVerifier(), log)
	require.NoError(t, err)
	ctx := context.Background()

	opts := adminOptions{Username: defaultAdminUsername, Email: defaultAdminEmail, Password: "s3cret-admin"}

	created, err := createAdmin(ctx, accounts, opts, log)
	require.NoError(t, err)
	assert.True(t, created)

	t.Run("existing account is left alone", func(t *testing.T) {
		created, err := createAdmin(ctx, accounts, opts, log)
		require.NoError(t, err)
		assert.False(t, created)

		sameName := opts
		sameName.Email = "other@example.com"
		created, err = createAdmin(ctx, accounts, sameName, log)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("invalid input is an error", func(t *testing.T) {
		bad := adminOptions{Username: "   ", Email: "root@example.com", Password: "s3cret-admin"}
		created, err := createAdmin(ctx, accounts, bad, log)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.False(t, created)
	})

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	var messages []string
	for _, e := range entries {
		if msg, ok := e["msg"].(string); ok {
			messages = append(messages, msg)
		}
	}
	assert.Contains(t, messages, "admin user created")
	assert.Contains(t, messages, "admin user already exists")
}

func TestRootCommand_ArgumentValidation(t *testing.T) {
	t.Setenv("FINDMYPET_ADMIN_PASSWORD", "")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown migrate command", args: []string{"migrate", "sideways"}, wantErr: "invalid argument"},
		{name: "migrate without command", args: []string{"migrate"}, wantErr: "accepts 1 arg"},
		{name: "serve takes no args", args: []string{"serve", "extra"}, wantErr: "unknown command"},
		{name: "create-admin without password", args: []string{"create-admin"}, wantErr: "--password is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetArgs(tc.args)
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)

			err := cmd.ExecuteContext(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
