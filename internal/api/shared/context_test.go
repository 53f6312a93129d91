package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := SetTraceID(context.Background())

	traceID := GetTraceID(ctx)
	require.Len(t, traceID, TraceIDLength*2)
	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err, "trace ID should be hex encoded")
}

func TestGetTraceIDWithoutValue(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))

	ctx := context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx), "non-string values are ignored")
}

func TestGenerateTraceIDUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := generateTraceID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate trace ID %s", id)
		seen[id] = struct{}{}
	}
}

func TestUserIDContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithUserID(context.Background(), 42)
	id, ok := UserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	// A differently typed value is not an account ID.
	ctx = context.WithValue(context.Background(), UserIDContextKey, "42")
	_, ok = UserIDFromContext(ctx)
	assert.False(t, ok)
}
