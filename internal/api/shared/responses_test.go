package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/findmypet-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusCreated, map[string]any{"message": "ok", "id": 7})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["message"])
	assert.Equal(t, float64(7), body["id"])
}

func TestRespondWithJSONEncodingError(t *testing.T) {
	log, buf := logger.NewTestLogger(t)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(logger.WithLogger(req.Context(), log))
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "failed to encode JSON response")
}

func TestRespondWithError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), TraceIDKey, "trace-123"))
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusNotFound, "Pet post not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Pet post not found","trace_id":"trace-123"}`, w.Body.String())
}

func TestRespondWithErrorNoTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusBadRequest, "Bad request")

	assert.JSONEq(t, `{"message":"Bad request"}`, w.Body.String())
}

func TestRespondWithErrorWithErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/pets/", nil)
	w := httptest.NewRecorder()

	msgs := []string{"title is required", "pet_type is required"}
	RespondWithError(w, req, http.StatusBadRequest, msgs[0], WithErrors(msgs))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "title is required", body.Message)
	assert.Equal(t, msgs, body.Errors)
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		opts      []ResponseOption
		wantLevel string
	}{
		{name: "server error logs at ERROR", status: http.StatusInternalServerError, wantLevel: "ERROR"},
		{name: "client error logs at DEBUG", status: http.StatusNotFound, wantLevel: "DEBUG"},
		{
			name:      "elevated client error logs at WARN",
			status:    http.StatusConflict,
			opts:      []ResponseOption{WithElevatedLogLevel()},
			wantLevel: "WARN",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log, buf := logger.NewTestLogger(t)
			req := httptest.NewRequest(http.MethodGet, "/api/pets/1", nil)
			req = req.WithContext(logger.WithLogger(req.Context(), log))
			w := httptest.NewRecorder()

			cause := errors.New("lookup failed for owner@example.com")
			RespondWithErrorAndLog(w, req, tc.status, "Something went wrong", cause, tc.opts...)

			assert.Equal(t, tc.status, w.Code)
			assert.NotContains(t, w.Body.String(), "owner@example.com")

			entries, err := buf.GetLogEntries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tc.wantLevel, entries[0]["level"])
			assert.Equal(t, "lookup failed for [REDACTED_EMAIL]", entries[0]["error"])
			assert.Equal(t, float64(tc.status), entries[0]["status_code"])
		})
	}
}
