package kyc

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusNone     Status = "none"
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// Record is a host's identity-verification submission. One per host,
// keyed by uid; review happens out of band.
type Record struct {
	HostUID         string
	FullName        string
	DocumentType    string
	DocumentNumber  string
	DocumentURL     string
	Address         string
	Status          Status
	SubmittedAt     time.Time
	UpdatedAt       time.Time
	VerifiedAt      *time.Time
	RejectionReason string
}

type Repository interface {
	Get(ctx context.Context, hostUID string) (*Record, error)
	Upsert(ctx context.Context, record Record) error
}

// HostInfo is the slice of a host account the KYC flow needs.
type HostInfo struct {
	IsHost bool
	Name   string
	Email  string
}

// HostDirectory resolves host accounts and mirrors the KYC status onto
// the host profile so event reads stay a single lookup.
type HostDirectory interface {
	Lookup(ctx context.Context, hostUID string) (HostInfo, error)
	SetKycStatus(ctx context.Context, hostUID string, status Status, submittedAt time.Time) error
}

// Notifier acknowledges a KYC submission. Failures are logged, never
// surfaced; mail is best effort.
type Notifier interface {
	KycSubmitted(ctx context.Context, name, email string) error
}

var (
	ErrNotFound        = errors.New("kyc record not found")
	ErrHostNotFound    = errors.New("host not found")
	ErrNotHost         = errors.New("not a host account")
	ErrAlreadyVerified = errors.New("kyc already verified")
)

// PermitsPublication is the one authorization rule gating event
// publication. Only verified hosts may publish.
func PermitsPublication(status Status) bool {
	return status == StatusVerified
}

type Submission struct {
	FullName       string
	DocumentType   string
	DocumentNumber string
	DocumentURL    string
	Address        string
}

type Service struct {
	repo     Repository
	hosts    HostDirectory
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, hostDir HostDirectory, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		hosts:    hostDir,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Status reads a host's verification status, defaulting to none when no
// record exists.
func (s *Service) Status(ctx context.Context, hostUID string) (Status, error) {
	record, err := s.repo.Get(ctx, hostUID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return StatusNone, nil
		}
		return "", fmt.Errorf("read kyc status: %w", err)
	}
	return record.Status, nil
}

// Detail returns the full record, or nil when the host never submitted.
func (s *Service) Detail(ctx context.Context, hostUID string) (*Record, error) {
	record, err := s.repo.Get(ctx, hostUID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read kyc record: %w", err)
	}
	return record, nil
}

// Submit files (or refiles) a KYC submission. Resubmission is allowed
// while pending or after rejection, never once verified.
func (s *Service) Submit(ctx context.Context, hostUID string, submission Submission) (Record, error) {
	info, err := s.hosts.Lookup(ctx, hostUID)
	if err != nil {
		if errors.Is(err, ErrHostNotFound) {
			return Record{}, ErrHostNotFound
		}
		return Record{}, fmt.Errorf("lookup host: %w", err)
	}
	if !info.IsHost {
		return Record{}, ErrNotHost
	}

	existing, err := s.repo.Get(ctx, hostUID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Record{}, fmt.Errorf("read kyc record: %w", err)
	}
	if existing != nil && existing.Status == StatusVerified {
		return Record{}, ErrAlreadyVerified
	}

	now := s.now()
	record := Record{
		HostUID:        hostUID,
		FullName:       submission.FullName,
		DocumentType:   submission.DocumentType,
		DocumentNumber: submission.DocumentNumber,
		DocumentURL:    submission.DocumentURL,
		Address:        submission.Address,
		Status:         StatusPending,
		SubmittedAt:    now,
		UpdatedAt:      now,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return Record{}, fmt.Errorf("store kyc record: %w", err)
	}
	if err := s.hosts.SetKycStatus(ctx, hostUID, StatusPending, now); err != nil {
		return Record{}, fmt.Errorf("mirror kyc status: %w", err)
	}

	if s.notifier != nil && info.Email != "" {
		// Best effort; the submission already succeeded.
		_ = s.notifier.KycSubmitted(ctx, info.Name, info.Email)
	}
	return record, nil
}
