package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meraroom/meraroom-server/internal/domain"
)

func TestRegisterAndLogin(t *testing.T) {
	ts := setupTestServer(t, defaultServerConfig())

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": "priya",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	registered := decodeEnvelope[AuthResponse](t, resp.Body.Bytes())
	assert.NotEmpty(t, registered.Data.Token)
	assert.Equal(t, "priya", registered.Data.User.Username)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"username": "priya",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	login := decodeEnvelope[AuthResponse](t, resp.Body.Bytes())
	assert.NotEmpty(t, login.Data.Token)
	assert.Equal(t, registered.Data.User.ID, login.Data.User.ID)
}

func TestRegister_UserExists(t *testing.T) {
	ts := setupTestServer(t, defaultServerConfig())

	body := map[string]any{"username": "priya", "password": "secret1"}
	resp := ts.api.Post("/api/v1/auth/register", body)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Post("/api/v1/auth/register", body)
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "USER_EXISTS", decodeEnvelope[any](t, resp.Body.Bytes()).Code)
}

func TestLogin_Errors(t *testing.T) {
	ts := setupTestServer(t, defaultServerConfig())

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{"username": "priya", "password": "secret1"})
	require.Equal(t, http.StatusCreated, resp.Code)

	tests := []struct {
		name     string
		username string
		password string
		status   int
		code     string
	}{
		{"unknown user", "nobody", "secret1", http.StatusNotFound, "NOT_FOUND"},
		{"wrong password", "priya", "wrong-one", http.StatusUnauthorized, "BAD_PASSWORD"},
		{"blank username", "   ", "secret1", http.StatusBadRequest, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/login", map[string]any{
				"username": tt.username,
				"password": tt.password,
			})
			require.Equal(t, tt.status, resp.Code, resp.Body.String())
			assert.Equal(t, tt.code, decodeEnvelope[any](t, resp.Body.Bytes()).Code)
		})
	}
}

func TestGetCurrentUser(t *testing.T) {
	ts := setupTestServer(t, defaultServerConfig())

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username":     "priya",
		"password":     "secret1",
		"display_name": "Priya",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	token := decodeEnvelope[AuthResponse](t, resp.Body.Bytes()).Data.Token

	resp = ts.api.Get("/api/v1/users/me", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	me := decodeEnvelope[domain.Profile](t, resp.Body.Bytes())
	assert.Equal(t, "Priya", me.Data.DisplayName)

	resp = ts.api.Get("/api/v1/users/me")
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/users/me", "Authorization: Bearer not-a-token")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeEnvelope[any](t, resp.Body.Bytes()).Code)
}

func TestAuthRateLimit(t *testing.T) {
	cfg := defaultServerConfig()
	cfg.AuthRateLimit = 2
	ts := setupTestServer(t, cfg)

	body := map[string]any{"username": "nobody", "password": "secret1"}
	for range 2 {
		resp := ts.api.Post("/api/v1/auth/login", body)
		require.Equal(t, http.StatusNotFound, resp.Code)
	}

	resp := ts.api.Post("/api/v1/auth/login", body)
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decodeEnvelope[any](t, resp.Body.Bytes()).Code)
}
