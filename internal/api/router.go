// Package api assembles the HTTP surface: routing, middleware chain, and
// handler construction. Dependencies are injected; nothing here reaches
// for globals.
package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/movigoo/host-server/internal/api/handlers"
	"github.com/movigoo/host-server/internal/api/middleware"
	"github.com/movigoo/host-server/internal/auth"
	"github.com/movigoo/host-server/internal/config"
	"github.com/movigoo/host-server/internal/domain/events"
	"github.com/movigoo/host-server/internal/domain/hosts"
	"github.com/movigoo/host-server/internal/domain/kyc"
	"github.com/movigoo/host-server/internal/metrics"
	"github.com/movigoo/host-server/internal/storage"
)

// Dependencies carries everything the router needs. Pool may be nil in
// tests; health checks then degrade gracefully.
type Dependencies struct {
	Config   config.Config
	Logger   zerolog.Logger
	Repo     storage.Repository
	Pool     *pgxpool.Pool
	Notifier kyc.Notifier
	Version  string
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	env := cfg.Environment

	sessions := auth.NewSessionAuthenticator(deps.Repo.Sessions(), cfg.Sessions.MaxAge)
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)

	hostsService := hosts.NewService(deps.Repo.Hosts())
	kycService := kyc.NewService(deps.Repo.Kyc(), deps.Repo.Hosts(), deps.Notifier)
	eventsService := events.NewService(deps.Repo.Events(), kycService)

	sessionsHandler := handlers.NewSessionsHandler(sessions, tokens, env)
	hostsHandler := handlers.NewHostsHandler(hostsService, env)
	kycHandler := handlers.NewKycHandler(kycService, env)
	eventsHandler := handlers.NewEventsHandler(eventsService, env)
	health := handlers.NewHealthChecker(deps.Pool, deps.Version)

	tokenAuth := middleware.TokenAuth(tokens, env)
	hostAuth := middleware.HostAuth(sessions, tokens, env)

	// One limiter store shared by every route; the tier wrapper ahead of
	// it decides which budget applies.
	limiter := middleware.RateLimit(cfg.RateLimit)
	loginTier := chain(middleware.WithRateLimitTierHandler(middleware.TierLogin), limiter)
	hostTier := chain(middleware.WithRateLimitTierHandler(middleware.TierHost), limiter)
	publicTier := chain(middleware.WithRateLimitTierHandler(middleware.TierPublic), limiter)

	body := middleware.PublicRequestSize()
	eventBody := middleware.EventRequestSize()

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", health.Health())
	mux.Handle("GET /readyz", health.Ready())

	mux.Handle("POST /api/v1/hosts",
		hostTier(tokenAuth(body(http.HandlerFunc(hostsHandler.Register)))))
	mux.Handle("PATCH /api/v1/hosts/profile",
		hostTier(tokenAuth(body(http.HandlerFunc(hostsHandler.UpdateProfile)))))

	mux.Handle("POST /api/v1/sessions",
		loginTier(tokenAuth(body(http.HandlerFunc(sessionsHandler.Create)))))
	mux.Handle("POST /api/v1/sessions/verify",
		publicTier(body(http.HandlerFunc(sessionsHandler.Verify))))
	mux.Handle("GET /api/v1/sessions",
		hostTier(tokenAuth(http.HandlerFunc(sessionsHandler.List))))
	mux.Handle("DELETE /api/v1/sessions/{id}",
		hostTier(tokenAuth(http.HandlerFunc(sessionsHandler.RevokeOne))))
	mux.Handle("DELETE /api/v1/sessions",
		hostTier(tokenAuth(http.HandlerFunc(sessionsHandler.RevokeAll))))

	mux.Handle("POST /api/v1/kyc",
		hostTier(tokenAuth(body(http.HandlerFunc(kycHandler.Submit)))))
	mux.Handle("GET /api/v1/kyc",
		hostTier(tokenAuth(http.HandlerFunc(kycHandler.Status))))

	mux.Handle("POST /api/v1/events",
		hostTier(hostAuth(eventBody(http.HandlerFunc(eventsHandler.Upsert)))))
	mux.Handle("GET /api/v1/events/{id}",
		hostTier(hostAuth(http.HandlerFunc(eventsHandler.Get))))

	requireHTTPS := env != "development" && env != "test"

	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(deps.Logger)(handler)
	if cfg.Tracing.Enabled {
		handler = middleware.Tracing(handler)
	}
	handler = middleware.CorrelationID(deps.Logger)(handler)
	handler = middleware.CORS(cfg.CORS, deps.Logger)(handler)
	handler = middleware.SecurityHeaders(requireHTTPS)(handler)
	return handler
}

func chain(outer, inner func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return outer(inner(next))
	}
}
