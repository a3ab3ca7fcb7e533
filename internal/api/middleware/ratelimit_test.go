package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/movigoo/host-server/internal/config"
)

func loginRequest(remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	req.RemoteAddr = remoteAddr
	return req.WithContext(WithRateLimitTier(req.Context(), TierLogin))
}

func TestLoginRateLimit_AllowsInitialBurst(t *testing.T) {
	cfg := config.RateLimitConfig{LoginPer15Minutes: 5}
	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, loginRequest("192.168.1.100:12345"))
		if res.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, res.Code)
		}
	}
}

func TestLoginRateLimit_BlocksAfterBurst(t *testing.T) {
	cfg := config.RateLimitConfig{LoginPer15Minutes: 5}
	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), loginRequest("192.168.1.101:54321"))
	}

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, loginRequest("192.168.1.101:54321"))

	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", res.Code)
	}
	if retryAfter := res.Header().Get("Retry-After"); retryAfter != "180" {
		t.Errorf("expected Retry-After 180, got %s", retryAfter)
	}
}

func TestLoginRateLimit_PerIPIsolation(t *testing.T) {
	cfg := config.RateLimitConfig{LoginPer15Minutes: 5}
	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), loginRequest("192.168.1.100:12345"))
	}

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, loginRequest("192.168.1.200:54321"))

	if res.Code != http.StatusOK {
		t.Fatalf("different IP should not be rate limited, got status %d", res.Code)
	}
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	cfg := config.RateLimitConfig{LoginPer15Minutes: 5}
	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Spoofed X-Forwarded-For from an untrusted peer must not bypass
	// the per-IP budget.
	for i := 0; i < 5; i++ {
		req := loginRequest("10.0.0.1:12345")
		req.Header.Set("X-Forwarded-For", "203.0.113.45")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := loginRequest("10.0.0.1:12345")
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", res.Code)
	}
}

func TestRateLimit_TrustsForwardedForFromTrustedProxy(t *testing.T) {
	cfg := config.RateLimitConfig{
		LoginPer15Minutes: 5,
		TrustedProxyCIDRs: []string{"10.0.0.0/8"},
	}
	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := loginRequest("10.0.0.1:12345")
		req.Header.Set("X-Forwarded-For", "203.0.113.45")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// A different client behind the same proxy has its own budget.
	req := loginRequest("10.0.0.1:12345")
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200 for distinct forwarded client, got %d", res.Code)
	}
}

func TestRateLimit_HealthEndpointsExempt(t *testing.T) {
	cfg := config.RateLimitConfig{PublicPerMinute: 1}
	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "192.168.1.100:12345"
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("healthz should never be limited, got %d", res.Code)
		}
	}
}

func TestRateLimit_ZeroLimitDisablesTier(t *testing.T) {
	cfg := config.RateLimitConfig{HostPerMinute: 0}
	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
		req.RemoteAddr = "192.168.1.100:12345"
		req = req.WithContext(WithRateLimitTier(req.Context(), TierHost))
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("disabled tier should not limit, got %d", res.Code)
		}
	}
}
