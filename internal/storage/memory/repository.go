// Package memory provides an in-memory storage.Repository used by tests
// and local development. All operations are safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/movigoo/host-server/internal/auth"
	"github.com/movigoo/host-server/internal/domain/events"
	"github.com/movigoo/host-server/internal/domain/hosts"
	"github.com/movigoo/host-server/internal/domain/kyc"
	"github.com/movigoo/host-server/internal/storage"
)

type ownedKey struct {
	hostUID string
	eventID string
}

type Repository struct {
	mu        sync.RWMutex
	sessions  map[string]auth.Session
	hosts     map[string]hosts.Host
	kyc       map[string]kyc.Record
	owned     map[ownedKey]events.EventDocument
	published map[string]events.EventDocument

	// PublishErr, when set, makes every PublishBoth fail without writing.
	PublishErr error
}

func NewRepository() *Repository {
	return &Repository{
		sessions:  make(map[string]auth.Session),
		hosts:     make(map[string]hosts.Host),
		kyc:       make(map[string]kyc.Record),
		owned:     make(map[ownedKey]events.EventDocument),
		published: make(map[string]events.EventDocument),
	}
}

func (r *Repository) Sessions() auth.SessionStore   { return (*sessionStore)(r) }
func (r *Repository) Hosts() storage.HostRepository { return (*hostStore)(r) }
func (r *Repository) Kyc() kyc.Repository           { return (*kycStore)(r) }
func (r *Repository) Events() events.Repository     { return (*eventStore)(r) }

// WithTx runs fn against the same store. The in-memory store has no
// transactions; PublishBoth is already all or nothing.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	return fn(ctx, r)
}

type sessionStore Repository

func (s *sessionStore) Insert(_ context.Context, session auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *sessionStore) GetByID(_ context.Context, sessionID string) (*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	return &session, nil
}

func (s *sessionStore) ListByHost(_ context.Context, hostUID string) ([]auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []auth.Session
	for _, session := range s.sessions {
		if session.HostUID == hostUID {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *sessionStore) DeleteOne(_ context.Context, hostUID, sessionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok || session.HostUID != hostUID {
		return 0, nil
	}
	delete(s.sessions, sessionID)
	return 1, nil
}

func (s *sessionStore) DeleteByHost(_ context.Context, hostUID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, session := range s.sessions {
		if session.HostUID == hostUID {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *sessionStore) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, session := range s.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

type hostStore Repository

func (s *hostStore) Get(_ context.Context, uid string) (*hosts.Host, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	host, ok := s.hosts[uid]
	if !ok {
		return nil, hosts.ErrNotFound
	}
	return &host, nil
}

func (s *hostStore) Create(_ context.Context, host hosts.Host) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hosts[host.UID] = host
	return nil
}

func (s *hostStore) Update(_ context.Context, host hosts.Host) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hosts[host.UID]; !ok {
		return hosts.ErrNotFound
	}
	s.hosts[host.UID] = host
	return nil
}

func (s *hostStore) Lookup(_ context.Context, hostUID string) (kyc.HostInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	host, ok := s.hosts[hostUID]
	if !ok {
		return kyc.HostInfo{}, kyc.ErrHostNotFound
	}
	return kyc.HostInfo{IsHost: host.IsHost, Name: host.Name, Email: host.Email}, nil
}

func (s *hostStore) SetKycStatus(_ context.Context, hostUID string, status kyc.Status, submittedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	host, ok := s.hosts[hostUID]
	if !ok {
		return kyc.ErrHostNotFound
	}
	host.KycStatus = status
	host.KycSubmittedAt = &submittedAt
	s.hosts[hostUID] = host
	return nil
}

type kycStore Repository

func (s *kycStore) Get(_ context.Context, hostUID string) (*kyc.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.kyc[hostUID]
	if !ok {
		return nil, kyc.ErrNotFound
	}
	return &record, nil
}

func (s *kycStore) Upsert(_ context.Context, record kyc.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kyc[record.HostUID] = record
	return nil
}

type eventStore Repository

func (s *eventStore) GetOwned(_ context.Context, hostUID, eventID string) (*events.EventDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.owned[ownedKey{hostUID, eventID}]
	if !ok {
		return nil, events.ErrNotFound
	}
	return &doc, nil
}

func (s *eventStore) GetPublished(_ context.Context, eventID string) (*events.EventDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.published[eventID]
	if !ok {
		return nil, events.ErrNotFound
	}
	return &doc, nil
}

func (s *eventStore) UpsertOwned(_ context.Context, doc events.EventDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owned[ownedKey{doc.HostUID, doc.ID}] = doc
	return nil
}

func (s *eventStore) PublishBoth(_ context.Context, doc events.EventDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PublishErr != nil {
		return s.PublishErr
	}
	s.owned[ownedKey{doc.HostUID, doc.ID}] = doc
	s.published[doc.ID] = doc
	return nil
}
