package main

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/findmypet-api/internal/api"
	"github.com/phrazzld/findmypet-api/internal/api/shared"
	"github.com/phrazzld/findmypet-api/internal/config"
	"github.com/phrazzld/findmypet-api/internal/mocks"
	"github.com/phrazzld/findmypet-api/internal/platform/logger"
	"github.com/phrazzld/findmypet-api/internal/platform/metrics"
	"github.com/phrazzld/findmypet-api/internal/platform/uploads"
	"github.com/phrazzld/findmypet-api/internal/service"
	"github.com/phrazzld/findmypet-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

// newTestServer wires the real router, token service and upload storage over
// in-memory stores.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log, _ := logger.NewTestLogger(t)
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:                   8080,
			LogLevel:               "debug",
			CORSAllowedOrigins:     []string{"*"},
			ShutdownTimeoutSeconds: 1,
		},
		Auth: config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60, BcryptCost: 4},
		Uploads: config.UploadsConfig{
			Dir:          t.TempDir(),
			URLPrefix:    "/static/uploads",
			MaxSizeBytes: 1 << 20,
		},
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)

	storage, err := uploads.NewLocalStorage(cfg.Uploads, log)
	require.NoError(t, err)

	tx := &mocks.MockTransactor{}
	accounts, err := service.NewAccountService(
		mocks.NewMockUserStore(), tx, &mocks.MockPasswordHasher{}, mocks.PrefixVerifier(), log)
	require.NoError(t, err)
	posts, err := service.NewPetPostService(mocks.NewMockPetPostStore(), tx, storage, log)
	require.NoError(t, err)

	app := &application{
		config:         cfg,
		logger:         log,
		metrics:        metrics.New(),
		jwtService:     jwtService,
		accountService: accounts,
		petPostService: posts,
	}

	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body io.Reader, contentType string) (*http.Response, []byte) {
	c.t.Helper()

	req, err := http.NewRequest(method, c.base+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}

func (c *client) postJSON(path string, payload any) (*http.Response, []byte) {
	c.t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(c.t, err)
	return c.do(http.MethodPost, path, bytes.NewReader(b), "application/json")
}

func (c *client) sendForm(method, path string, fields map[string]string, filename string, content []byte) (*http.Response, []byte) {
	c.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(c.t, err)
		_, err = fw.Write(content)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())
	return c.do(method, path, &buf, mw.FormDataContentType())
}

// register creates an account and returns a client authenticated as it.
func register(t *testing.T, srv *httptest.Server, username string) *client {
	t.Helper()

	c := &client{t: t, base: srv.URL}
	resp, body := c.postJSON("/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret-" + username,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out api.AuthResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.AccessToken)
	c.token = out.AccessToken
	return c
}

func catFields() map[string]string {
	return map[string]string{
		"title":             "Missing cat",
		"description":       "Black cat with a white patch",
		"pet_type":          "cat",
		"last_seen_address": "Market Square",
		"last_seen_date":    "2024-06-01 09:15:00",
	}
}

func TestEndToEnd_CreateAndListOwnPosts(t *testing.T) {
	srv := newTestServer(t)
	alice := register(t, srv, "alice")

	resp, body := alice.sendForm(http.MethodPost, "/api/pets/", catFields(), "", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	resp, body = alice.do(http.MethodGet, "/api/pets/user", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list api.PetPostListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.PetPosts, 1)
	assert.Equal(t, "Missing cat", list.PetPosts[0].Title)
	assert.Equal(t, "2024-06-01T09:15:00Z", list.PetPosts[0].LastSeenDate)

	anon := &client{t: t, base: srv.URL}
	resp, body = anon.do(http.MethodGet, "/api/pets/?pet_type=cat&status=missing", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list.PetPosts, 1)

	resp, _ = anon.do(http.MethodGet, "/api/pets/?pet_type=dog", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEndToEnd_ImageUpload(t *testing.T) {
	srv := newTestServer(t)
	alice := register(t, srv, "alice")

	resp, body := alice.sendForm(http.MethodPost, "/api/pets/", catFields(), "photo.PNG", []byte("fake png"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created api.PetPostEnvelope
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotNil(t, created.PetPost.ImageURL)
	assert.True(t, strings.HasPrefix(*created.PetPost.ImageURL, "/static/uploads/"))
	assert.True(t, strings.HasSuffix(*created.PetPost.ImageURL, "_photo.PNG"))

	resp, data := alice.do(http.MethodGet, *created.PetPost.ImageURL, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "fake png", string(data))

	resp, body = alice.sendForm(http.MethodPost, "/api/pets/", catFields(), "photo.exe", []byte("MZ"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Nil(t, created.PetPost.ImageURL)

	resp, _ = alice.do(http.MethodGet, "/static/uploads/", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEndToEnd_OwnershipEnforced(t *testing.T) {
	srv := newTestServer(t)
	alice := register(t, srv, "alice")
	bob := register(t, srv, "bob")

	resp, body := alice.sendForm(http.MethodPost, "/api/pets/", catFields(), "", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created api.PetPostEnvelope
	require.NoError(t, json.Unmarshal(body, &created))
	path := "/api/pets/" + strconv.FormatInt(created.PetPost.ID, 10)

	resp, body = bob.sendForm(http.MethodPut, path, map[string]string{"status": "found"}, "", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, api.MsgNotOwnerUpdate, errorMessage(t, body))

	resp, body = bob.do(http.MethodDelete, path, nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, api.MsgNotOwnerDelete, errorMessage(t, body))

	resp, body = alice.sendForm(http.MethodPut, path, map[string]string{"status": "found"}, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "found", created.PetPost.Status)

	resp, _ = alice.do(http.MethodDelete, path, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = alice.do(http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEndToEnd_AuthFailureTiers(t *testing.T) {
	srv := newTestServer(t)

	sign := func(claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return token
	}
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantMsg: "Missing Authorization Header"},
		{
			name:       "wrong scheme",
			header:     "Token abc",
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Bad Authorization header. Expected 'Authorization: Bearer <JWT>'",
		},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnprocessableEntity},
		{
			name:       "wrong signature",
			header:     "Bearer " + mustSign(t, "another-secret-that-is-at-least-32-chars", jwt.MapClaims{"sub": "1", "exp": future}),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "expired",
			header:     "Bearer " + sign(jwt.MapClaims{"sub": "1", "exp": time.Now().Add(-time.Hour).Unix()}),
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Token has expired",
		},
		{
			name:       "numeric subject",
			header:     "Bearer " + sign(jwt.MapClaims{"sub": 1, "exp": future}),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "User ID must be a string",
		},
		{
			name:       "non numeric subject",
			header:     "Bearer " + sign(jwt.MapClaims{"sub": "abc", "exp": future}),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "User ID must be a number",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/profile", nil)
			require.NoError(t, err)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, resp.StatusCode, string(body))
			msg := errorMessage(t, body)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestEndToEnd_ProfileAndLogin(t *testing.T) {
	srv := newTestServer(t)
	alice := register(t, srv, "alice")

	resp, body := alice.do(http.MethodGet, "/api/auth/profile", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile api.ProfileResponse
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.Equal(t, "alice", profile.User.Username)

	anon := &client{t: t, base: srv.URL}
	resp, body = anon.postJSON("/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "secret-alice",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = anon.postJSON("/api/auth/register", map[string]string{
		"username": "alice2", "email": "alice@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "User with this email already exists", errorMessage(t, body))
}

func TestEndToEnd_RoutingAndOps(t *testing.T) {
	srv := newTestServer(t)
	anon := &client{t: t, base: srv.URL}

	resp, _ := anon.do(http.MethodGet, "/api/pets/abc", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := anon.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = anon.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `findmypet_http_requests_total{method="GET",route="/health",status="200"} 1`)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/pets/", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	preflight, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = preflight.Body.Close()
	assert.Equal(t, "*", preflight.Header.Get("Access-Control-Allow-Origin"))
}

func mustSign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp), string(body))
	return resp.Message
}
