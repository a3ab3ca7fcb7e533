package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/movigoo/host-server/internal/domain/kyc"
	"github.com/movigoo/host-server/internal/sanitize"
)

// Repository is the storage surface the publication workflow needs.
// The owner-scoped copy is the host's mutable view (drafts and the host's
// record of published events); the published copy is the global one.
type Repository interface {
	// GetOwned returns the owner-scoped copy, ErrNotFound if absent.
	GetOwned(ctx context.Context, hostUID, eventID string) (*EventDocument, error)
	// GetPublished returns the global published copy, ErrNotFound if absent.
	GetPublished(ctx context.Context, eventID string) (*EventDocument, error)
	// UpsertOwned writes the owner-scoped copy only.
	UpsertOwned(ctx context.Context, doc EventDocument) error
	// PublishBoth writes the owner-scoped and the global copy in one
	// atomic operation; a reader never observes only one side published.
	PublishBoth(ctx context.Context, doc EventDocument) error
}

// KycReader reads a host's verification status.
type KycReader interface {
	Status(ctx context.Context, hostUID string) (kyc.Status, error)
}

// OwnershipLocation says where an event was found during ownership
// resolution. Draft wins over published: the owner-scoped copy is checked
// first and is authoritative for the host's own view.
type OwnershipLocation string

const (
	LocationNone      OwnershipLocation = "none"
	LocationDraft     OwnershipLocation = "draft"
	LocationPublished OwnershipLocation = "published"
)

// Ownership is the result of resolving caller vs. event id. Owned false
// with Exists true means the event belongs to another host; callers
// translate that to forbidden rather than not found.
type Ownership struct {
	Exists   bool
	Owned    bool
	Location OwnershipLocation
	Document *EventDocument
}

// UpsertInput is the editable portion of an event submission.
type UpsertInput struct {
	EventID      string
	BasicDetails BasicDetails
	Schedule     Schedule
	Tickets      TicketConfig
}

// Saved reports a successful draft write.
type Saved struct {
	EventID   string
	LastSaved time.Time
}

// BlockReason distinguishes the two soft publish blocks. Both preserve the
// submitted content as a draft; neither is a system failure.
type BlockReason string

const (
	BlockNone       BlockReason = ""
	BlockKyc        BlockReason = "kyc_not_verified"
	BlockValidation BlockReason = "validation_failed"
)

// PublishResult reports a publish attempt: either success with
// Status published, or a block with the draft saved and details attached.
type PublishResult struct {
	EventID      string
	Status       Status
	Blocked      BlockReason
	Errors       ValidationErrors
	SavedAsDraft bool
	PublishedAt  time.Time
}

type Service struct {
	repo Repository
	kyc  KycReader
	now  func() time.Time
}

func NewService(repo Repository, kycReader KycReader) *Service {
	return &Service{repo: repo, kyc: kycReader, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the service clock. Tests use this to pin timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ResolveOwnership checks the owner-scoped location first, then the global
// published one. The owner-scoped location is keyed by the caller, so a hit
// there is owned unconditionally; a published hit compares the stored host.
func (s *Service) ResolveOwnership(ctx context.Context, hostUID, eventID string) (Ownership, error) {
	owned, err := s.repo.GetOwned(ctx, hostUID, eventID)
	if err == nil {
		return Ownership{Exists: true, Owned: true, Location: LocationDraft, Document: owned}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Ownership{}, fmt.Errorf("resolve ownership: %w", err)
	}

	published, err := s.repo.GetPublished(ctx, eventID)
	if err == nil {
		return Ownership{
			Exists:   true,
			Owned:    published.HostUID == hostUID,
			Location: LocationPublished,
		}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Ownership{}, fmt.Errorf("resolve ownership: %w", err)
	}
	return Ownership{Location: LocationNone}, nil
}

// SaveDraft upserts the owner-scoped copy only. It sets createdAt on first
// write and preserves it afterwards, always refreshes updatedAt, and never
// touches the global published copy.
func (s *Service) SaveDraft(ctx context.Context, hostUID string, input UpsertInput) (Saved, error) {
	eventID, err := s.resolveEventID(ctx, hostUID, input.EventID)
	if err != nil {
		return Saved{}, err
	}
	return s.writeDraft(ctx, hostUID, eventID, input)
}

// Publish runs the full gate: KYC, then structural validation, then the
// atomic dual write. Blocked submissions are still saved as drafts so the
// host's work is never discarded.
func (s *Service) Publish(ctx context.Context, hostUID string, input UpsertInput) (PublishResult, error) {
	eventID, err := s.resolveEventID(ctx, hostUID, input.EventID)
	if err != nil {
		return PublishResult{}, err
	}

	status, err := s.kyc.Status(ctx, hostUID)
	if err != nil {
		return PublishResult{}, fmt.Errorf("read kyc status: %w", err)
	}
	if !kyc.PermitsPublication(status) {
		if _, err := s.writeDraft(ctx, hostUID, eventID, input); err != nil {
			return PublishResult{}, err
		}
		return PublishResult{
			EventID:      eventID,
			Status:       StatusDraft,
			Blocked:      BlockKyc,
			SavedAsDraft: true,
		}, nil
	}

	doc := s.buildDocument(hostUID, eventID, input)
	if validationErrs := Validate(doc); len(validationErrs) > 0 {
		if _, err := s.writeDraft(ctx, hostUID, eventID, input); err != nil {
			return PublishResult{}, err
		}
		return PublishResult{
			EventID:      eventID,
			Status:       StatusDraft,
			Blocked:      BlockValidation,
			Errors:       validationErrs,
			SavedAsDraft: true,
		}, nil
	}

	now := s.now()
	doc.Status = StatusPublished
	doc.UpdatedAt = now
	doc.PublishedAt = &now
	doc.CreatedAt = now

	// On republish both copies take the owner-scoped copy's original
	// createdAt, never the global copy's own prior value. Keeping the two
	// locations from drifting is an invariant, not an accident.
	existing, err := s.repo.GetOwned(ctx, hostUID, eventID)
	if err == nil {
		doc.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, ErrNotFound) {
		return PublishResult{}, fmt.Errorf("publish: %w", err)
	}

	if err := s.repo.PublishBoth(ctx, doc); err != nil {
		return PublishResult{}, fmt.Errorf("publish: %w", err)
	}

	return PublishResult{
		EventID:     eventID,
		Status:      StatusPublished,
		PublishedAt: now,
	}, nil
}

// Get fetches an event for its owner, draft-first then published.
func (s *Service) Get(ctx context.Context, hostUID, eventID string) (*EventDocument, error) {
	owned, err := s.repo.GetOwned(ctx, hostUID, eventID)
	if err == nil {
		return owned, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get event: %w", err)
	}

	published, err := s.repo.GetPublished(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if published.HostUID != hostUID {
		return nil, ErrForbidden
	}
	return published, nil
}

func (s *Service) resolveEventID(ctx context.Context, hostUID, eventID string) (string, error) {
	if eventID == "" {
		id, err := NewEventID()
		if err != nil {
			return "", fmt.Errorf("mint event id: %w", err)
		}
		return id, nil
	}

	ownership, err := s.ResolveOwnership(ctx, hostUID, eventID)
	if err != nil {
		return "", err
	}
	if !ownership.Exists {
		return "", ErrNotFound
	}
	if !ownership.Owned {
		return "", ErrForbidden
	}
	return eventID, nil
}

func (s *Service) writeDraft(ctx context.Context, hostUID, eventID string, input UpsertInput) (Saved, error) {
	now := s.now()
	doc := s.buildDocument(hostUID, eventID, input)
	doc.Status = StatusDraft
	doc.CreatedAt = now
	doc.UpdatedAt = now

	existing, err := s.repo.GetOwned(ctx, hostUID, eventID)
	if err == nil {
		doc.CreatedAt = existing.CreatedAt
		doc.PublishedAt = existing.PublishedAt
	} else if !errors.Is(err, ErrNotFound) {
		return Saved{}, fmt.Errorf("save draft: %w", err)
	}

	if err := s.repo.UpsertOwned(ctx, doc); err != nil {
		return Saved{}, fmt.Errorf("save draft: %w", err)
	}
	return Saved{EventID: eventID, LastSaved: now}, nil
}

func (s *Service) buildDocument(hostUID, eventID string, input UpsertInput) EventDocument {
	doc := EventDocument{
		ID:           eventID,
		HostUID:      hostUID,
		BasicDetails: input.BasicDetails,
		Schedule:     input.Schedule,
		Tickets:      input.Tickets,
	}
	scrub(&doc)
	return doc
}

// scrub strips markup from host-supplied text. Descriptions keep basic
// formatting; everything else is plain text.
func scrub(doc *EventDocument) {
	bd := &doc.BasicDetails
	bd.Title = sanitize.Text(bd.Title)
	bd.Description = sanitize.HTML(bd.Description)
	bd.Genres = sanitize.TextSlice(bd.Genres)
	bd.Languages = sanitize.TextSlice(bd.Languages)
	bd.TermsText = sanitize.Text(bd.TermsText)

	for li := range doc.Schedule.Locations {
		location := &doc.Schedule.Locations[li]
		location.Name = sanitize.Text(location.Name)
		for vi := range location.Venues {
			venue := &location.Venues[vi]
			venue.Name = sanitize.Text(venue.Name)
			venue.Address = sanitize.Text(venue.Address)
		}
	}
	for ci := range doc.Tickets.VenueConfigs {
		config := &doc.Tickets.VenueConfigs[ci]
		for ti := range config.TicketTypes {
			config.TicketTypes[ti].TypeName = sanitize.Text(config.TicketTypes[ti].TypeName)
		}
	}
}
