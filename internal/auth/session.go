package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is an opaque host session credential. The raw key handed to the
// client at creation is never stored; only its SHA-256 hex digest is.
type Session struct {
	ID        string
	HostUID   string
	KeyHash   string
	UserAgent string
	SourceIP  string
	CreatedAt time.Time
}

// SessionMeta carries the client details recorded alongside a new session.
type SessionMeta struct {
	UserAgent string
	SourceIP  string
}

type SessionStore interface {
	Insert(ctx context.Context, session Session) error
	// GetByID looks a session up by its id alone. The session id is globally
	// unique, so no owner scoping is needed for the lookup.
	GetByID(ctx context.Context, sessionID string) (*Session, error)
	ListByHost(ctx context.Context, hostUID string) ([]Session, error)
	// DeleteOne and DeleteByHost return the number of rows removed.
	// Deleting an absent session is not an error.
	DeleteOne(ctx context.Context, hostUID, sessionID string) (int64, error)
	DeleteByHost(ctx context.Context, hostUID string) (int64, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidSessionKey = errors.New("invalid session key")
	ErrSessionExpired    = errors.New("session expired")
	ErrNoActiveSession   = errors.New("no active session")
)

const rawKeyBytes = 32

// SessionAuthenticator issues and verifies host session credentials.
type SessionAuthenticator struct {
	store  SessionStore
	maxAge time.Duration
}

func NewSessionAuthenticator(store SessionStore, maxAge time.Duration) *SessionAuthenticator {
	return &SessionAuthenticator{store: store, maxAge: maxAge}
}

// Issue creates a session for hostUID and returns it together with the raw
// key. The raw key is returned exactly once and must not be logged.
func (a *SessionAuthenticator) Issue(ctx context.Context, hostUID string, meta SessionMeta) (Session, string, error) {
	if hostUID == "" {
		return Session{}, "", fmt.Errorf("issue session: empty host uid")
	}

	raw := make([]byte, rawKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return Session{}, "", fmt.Errorf("issue session: %w", err)
	}
	rawKey := hex.EncodeToString(raw)

	session := Session{
		ID:        uuid.New().String(),
		HostUID:   hostUID,
		KeyHash:   HashSessionKey(rawKey),
		UserAgent: meta.UserAgent,
		SourceIP:  meta.SourceIP,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.Insert(ctx, session); err != nil {
		return Session{}, "", fmt.Errorf("issue session: %w", err)
	}
	return session, rawKey, nil
}

// Verify resolves a sessionID+rawKey pair to the owning host uid.
// The hash comparison is constant-time; combined with comparing digests
// rather than raw secrets this keeps key verification free of timing leaks.
func (a *SessionAuthenticator) Verify(ctx context.Context, sessionID, rawKey string) (string, error) {
	if sessionID == "" || rawKey == "" {
		return "", ErrSessionNotFound
	}

	stored, err := a.store.GetByID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if stored == nil {
		return "", ErrSessionNotFound
	}

	if a.maxAge > 0 && time.Since(stored.CreatedAt) > a.maxAge {
		return "", ErrSessionExpired
	}

	candidate := HashSessionKey(rawKey)
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(stored.KeyHash)) != 1 {
		return "", ErrInvalidSessionKey
	}
	return stored.HostUID, nil
}

// RequireActiveSession checks that hostUID holds at least one live session.
// Token-based flows on host-only endpoints use this to ensure the caller
// actually has a host device session, not just a valid identity token.
func (a *SessionAuthenticator) RequireActiveSession(ctx context.Context, hostUID string) error {
	sessions, err := a.store.ListByHost(ctx, hostUID)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	for _, s := range sessions {
		if a.maxAge == 0 || time.Since(s.CreatedAt) <= a.maxAge {
			return nil
		}
	}
	return ErrNoActiveSession
}

// List returns the host's sessions for the devices screen. Key hashes stay
// internal; callers must not serialize them.
func (a *SessionAuthenticator) List(ctx context.Context, hostUID string) ([]Session, error) {
	return a.store.ListByHost(ctx, hostUID)
}

// RevokeOne deletes a single session. Absent sessions count as success so
// that logout is idempotent.
func (a *SessionAuthenticator) RevokeOne(ctx context.Context, hostUID, sessionID string) (int64, error) {
	return a.store.DeleteOne(ctx, hostUID, sessionID)
}

// RevokeAll deletes every session the host owns and reports how many were
// removed. A second call returns zero, never an error.
func (a *SessionAuthenticator) RevokeAll(ctx context.Context, hostUID string) (int64, error) {
	return a.store.DeleteByHost(ctx, hostUID)
}

// SweepExpired removes sessions older than the configured max age.
// A zero max age disables sweeping.
func (a *SessionAuthenticator) SweepExpired(ctx context.Context) (int64, error) {
	if a.maxAge == 0 {
		return 0, nil
	}
	return a.store.DeleteExpired(ctx, time.Now().UTC().Add(-a.maxAge))
}

// HashSessionKey returns the hex SHA-256 digest of a raw session key.
func HashSessionKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}
