package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/movigoo/host-server/internal/api/problem"
	"github.com/movigoo/host-server/internal/auth"
)

const (
	// SessionIDHeader and SessionKeyHeader carry the opaque session
	// credential issued at session creation.
	SessionIDHeader  = "X-Session-Id"
	SessionKeyHeader = "X-Session-Key"
)

type contextKeyHost string

const hostUIDKey contextKeyHost = "host_uid"

// HostUID returns the authenticated host uid, or "" when unauthenticated.
func HostUID(ctx context.Context) string {
	if uid, ok := ctx.Value(hostUIDKey).(string); ok {
		return uid
	}
	return ""
}

// WithHostUID returns a context carrying the authenticated host uid.
// Handler tests use this to bypass the middleware.
func WithHostUID(ctx context.Context, hostUID string) context.Context {
	return context.WithValue(ctx, hostUIDKey, hostUID)
}

// TokenVerifier resolves an identity token to a host uid.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// SessionVerifier resolves a session credential pair and checks for live
// sessions during token authentication.
type SessionVerifier interface {
	Verify(ctx context.Context, sessionID, rawKey string) (string, error)
	RequireActiveSession(ctx context.Context, hostUID string) error
}

// HostAuth authenticates requests to host endpoints. A session credential
// pair takes precedence; otherwise a bearer identity token is accepted,
// but only while the host still has at least one active session.
func HostAuth(sessions SessionVerifier, tokens TokenVerifier, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(SessionIDHeader)
			sessionKey := r.Header.Get(SessionKeyHeader)

			if sessionID != "" || sessionKey != "" {
				hostUID, err := sessions.Verify(r.Context(), sessionID, sessionKey)
				if err != nil {
					writeAuthFailure(w, r, err, env)
					return
				}
				serveAs(next, w, r, hostUID)
				return
			}

			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				writeAuthFailure(w, r, err, env)
				return
			}
			hostUID, err := tokens.VerifyToken(token)
			if err != nil {
				writeAuthFailure(w, r, err, env)
				return
			}
			if err := sessions.RequireActiveSession(r.Context(), hostUID); err != nil {
				writeAuthFailure(w, r, err, env)
				return
			}
			serveAs(next, w, r, hostUID)
		})
	}
}

// TokenAuth authenticates with a bearer identity token only. Session
// creation uses this: the caller cannot hold a session credential yet.
func TokenAuth(tokens TokenVerifier, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				writeAuthFailure(w, r, err, env)
				return
			}
			hostUID, err := tokens.VerifyToken(token)
			if err != nil {
				writeAuthFailure(w, r, err, env)
				return
			}
			serveAs(next, w, r, hostUID)
		})
	}
}

func serveAs(next http.Handler, w http.ResponseWriter, r *http.Request, hostUID string) {
	ctx := WithHostUID(r.Context(), hostUID)
	next.ServeHTTP(w, r.WithContext(ctx))
}

func writeAuthFailure(w http.ResponseWriter, r *http.Request, err error, env string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, env)
	default:
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", err, env)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
