package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/movigoo/host-server/internal/api/middleware"
	"github.com/movigoo/host-server/internal/api/problem"
	"github.com/movigoo/host-server/internal/auth"
	"github.com/movigoo/host-server/internal/metrics"
)

// SessionsHandler manages host device sessions. Creation returns the raw
// session key exactly once; every later response exposes metadata only.
type SessionsHandler struct {
	Sessions *auth.SessionAuthenticator
	Tokens   *auth.JWTManager
	Env      string
}

func NewSessionsHandler(sessions *auth.SessionAuthenticator, tokens *auth.JWTManager, env string) *SessionsHandler {
	return &SessionsHandler{Sessions: sessions, Tokens: tokens, Env: env}
}

type createSessionResponse struct {
	Success    bool   `json:"success"`
	SessionID  string `json:"sessionId"`
	SessionKey string `json:"sessionKey"`
	CreatedAt  string `json:"createdAt"`
}

// Create issues a new session for the authenticated host. The middleware
// has already verified the identity token.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostUID := middleware.HostUID(r.Context())
	if hostUID == "" {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.Env)
		return
	}

	meta := auth.SessionMeta{
		UserAgent: r.UserAgent(),
		SourceIP:  clientIP(r),
	}
	session, rawKey, err := h.Sessions.Issue(r.Context(), hostUID, meta)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	metrics.SessionsIssuedTotal.Inc()
	writeJSON(w, http.StatusCreated, createSessionResponse{
		Success:    true,
		SessionID:  session.ID,
		SessionKey: rawKey,
		CreatedAt:  session.CreatedAt.Format(timeFormat),
	})
}

type verifySessionRequest struct {
	Token      string `json:"token,omitempty"`
	SessionID  string `json:"sessionId,omitempty"`
	SessionKey string `json:"sessionKey,omitempty"`
}

type verifySessionResponse struct {
	Valid   bool   `json:"valid"`
	HostUID string `json:"hostUid,omitempty"`
}

// Verify checks a credential without authenticating the request itself:
// either an identity token or a sessionId + sessionKey pair.
func (h *SessionsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifySessionRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	switch {
	case req.SessionID != "" || req.SessionKey != "":
		hostUID, err := h.Sessions.Verify(r.Context(), req.SessionID, req.SessionKey)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, verifySessionResponse{Valid: false})
			return
		}
		writeJSON(w, http.StatusOK, verifySessionResponse{Valid: true, HostUID: hostUID})
	case strings.TrimSpace(req.Token) != "":
		hostUID, err := h.Tokens.VerifyToken(req.Token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, verifySessionResponse{Valid: false})
			return
		}
		if err := h.Sessions.RequireActiveSession(r.Context(), hostUID); err != nil {
			writeJSON(w, http.StatusUnauthorized, verifySessionResponse{Valid: false})
			return
		}
		writeJSON(w, http.StatusOK, verifySessionResponse{Valid: true, HostUID: hostUID})
	default:
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			errors.New("either token or sessionId and sessionKey must be provided"), h.Env)
	}
}

type sessionView struct {
	SessionID string `json:"sessionId"`
	UserAgent string `json:"userAgent,omitempty"`
	SourceIP  string `json:"sourceIp,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type listSessionsResponse struct {
	Sessions []sessionView `json:"sessions"`
}

// List returns the host's sessions, newest first. Key hashes never leave
// the server.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	hostUID := middleware.HostUID(r.Context())

	sessions, err := h.Sessions.List(r.Context(), hostUID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, sessionView{
			SessionID: s.ID,
			UserAgent: s.UserAgent,
			SourceIP:  s.SourceIP,
			CreatedAt: s.CreatedAt.Format(timeFormat),
		})
	}

	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: views})
}

type revokeResponse struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deletedCount"`
}

// RevokeOne logs out a single device. Revoking an absent or already
// revoked session succeeds with deletedCount 0.
func (h *SessionsHandler) RevokeOne(w http.ResponseWriter, r *http.Request) {
	hostUID := middleware.HostUID(r.Context())
	sessionID := strings.TrimSpace(pathParam(r, "id"))
	if sessionID == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			errors.New("session id is required"), h.Env)
		return
	}

	deleted, err := h.Sessions.RevokeOne(r.Context(), hostUID, sessionID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}
	metrics.SessionsRevokedTotal.WithLabelValues("one").Add(float64(deleted))

	writeJSON(w, http.StatusOK, revokeResponse{Success: true, DeletedCount: deleted})
}

// RevokeAll logs the host out everywhere.
func (h *SessionsHandler) RevokeAll(w http.ResponseWriter, r *http.Request) {
	hostUID := middleware.HostUID(r.Context())

	deleted, err := h.Sessions.RevokeAll(r.Context(), hostUID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}
	metrics.SessionsRevokedTotal.WithLabelValues("all").Add(float64(deleted))

	writeJSON(w, http.StatusOK, revokeResponse{Success: true, DeletedCount: deleted})
}
