package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movigoo/host-server/internal/auth"
	"github.com/movigoo/host-server/internal/config"
	"github.com/movigoo/host-server/internal/storage/memory"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "router-test-secret-router-test-secret",
			JWTExpiry: time.Hour,
			JWTIssuer: "movigoo-host",
		},
		Sessions: config.SessionConfig{MaxAge: 24 * time.Hour},
		RateLimit: config.RateLimitConfig{
			PublicPerMinute:   100,
			HostPerMinute:     100,
			LoginPer15Minutes: 50,
		},
		CORS:        config.CORSConfig{AllowAllOrigins: true},
		Environment: "test",
	}
}

func newTestRouter(t *testing.T) (http.Handler, config.Config, *memory.Repository) {
	t.Helper()
	repo := memory.NewRepository()
	cfg := testConfig()
	router := NewRouter(Dependencies{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Repo:    repo,
		Version: "test",
	})
	return router, cfg, repo
}

func bearerToken(t *testing.T, cfg config.Config, hostUID string) string {
	t.Helper()
	manager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
	token, err := manager.Generate(hostUID)
	require.NoError(t, err)
	return token
}

func TestRouter_SessionLifecycle(t *testing.T) {
	router, cfg, _ := newTestRouter(t)
	token := bearerToken(t, cfg, "host-1")

	// Create a session with the identity token.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var created struct {
		SessionID  string `json:"sessionId"`
		SessionKey string `json:"sessionKey"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))

	// The session pair now authenticates host endpoints.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/kyc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	// Revoke it; the bearer token then stops working for host endpoints
	// because no active session remains.
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+created.SessionID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader([]byte(`{"mode":"draft"}`)))
	req.Header.Set("Authorization", "Bearer "+token)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRouter_EventsRequireAuth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader([]byte(`{"mode":"draft"}`)))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
}

func TestRouter_EventDraftWithSessionPair(t *testing.T) {
	router, cfg, _ := newTestRouter(t)
	token := bearerToken(t, cfg, "host-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusCreated, res.Code)

	var created struct {
		SessionID  string `json:"sessionId"`
		SessionKey string `json:"sessionKey"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))

	body := []byte(`{"mode":"draft","basicDetails":{"title":"First Draft"},"schedule":{"locations":[]},"tickets":{"venueConfigs":[]}}`)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(body))
	req.Header.Set("X-Session-Id", created.SessionID)
	req.Header.Set("X-Session-Key", created.SessionKey)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var out map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "draft", out["status"])
}

func TestRouter_HealthWithoutPool(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	// No database pool in this configuration; health reports unhealthy
	// but the endpoint itself works.
	require.Equal(t, http.StatusServiceUnavailable, res.Code)
	assert.Contains(t, res.Body.String(), "unhealthy")
}

func TestRouter_SecurityHeadersApplied(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
}
