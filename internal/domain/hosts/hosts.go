package hosts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/movigoo/host-server/internal/domain/kyc"
	"github.com/movigoo/host-server/internal/sanitize"
)

// Host is an organizer account. A single identity is either a host or a
// customer, never both; registration refuses to flip a customer account.
type Host struct {
	UID            string
	Name           string
	Phone          string
	Email          string
	IsHost         bool
	IsCustomer     bool
	KycStatus      kyc.Status
	KycSubmittedAt *time.Time
	CreatedAt      time.Time
}

type Repository interface {
	Get(ctx context.Context, uid string) (*Host, error)
	Create(ctx context.Context, host Host) error
	Update(ctx context.Context, host Host) error
}

var (
	ErrNotFound          = errors.New("host not found")
	ErrAccountIsCustomer = errors.New("account already registered as customer")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
)

type RegisterInput struct {
	UID   string
	Name  string
	Phone string
	Email string
}

type RegisterResult struct {
	Created bool
	Updated bool
}

// ProfileUpdate carries optional profile fields; nil means leave as is.
type ProfileUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register creates a host account, or upgrades an existing non-customer
// account to a host. Customer accounts are refused outright.
func (s *Service) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	existing, err := s.repo.Get(ctx, input.UID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return RegisterResult{}, fmt.Errorf("register host: %w", err)
	}

	name := sanitize.Text(input.Name)
	phone := sanitize.Text(input.Phone)

	if existing != nil {
		if existing.IsCustomer {
			return RegisterResult{}, ErrAccountIsCustomer
		}
		existing.Name = name
		existing.Phone = phone
		existing.IsHost = true
		existing.IsCustomer = false
		if err := s.repo.Update(ctx, *existing); err != nil {
			return RegisterResult{}, fmt.Errorf("register host: %w", err)
		}
		return RegisterResult{Updated: true}, nil
	}

	host := Host{
		UID:        input.UID,
		Name:       name,
		Phone:      phone,
		IsHost:     true,
		IsCustomer: false,
		KycStatus:  kyc.StatusNone,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, host); err != nil {
		return RegisterResult{}, fmt.Errorf("register host: %w", err)
	}
	return RegisterResult{Created: true}, nil
}

// Get returns a host account.
func (s *Service) Get(ctx context.Context, uid string) (*Host, error) {
	return s.repo.Get(ctx, uid)
}

// UpdateProfile applies the provided profile fields. At least one field
// must be set.
func (s *Service) UpdateProfile(ctx context.Context, uid string, update ProfileUpdate) error {
	if update.Name == nil && update.Email == nil && update.Phone == nil {
		return ErrNoFieldsToUpdate
	}

	host, err := s.repo.Get(ctx, uid)
	if err != nil {
		return err
	}

	if update.Name != nil {
		host.Name = sanitize.Text(*update.Name)
	}
	if update.Email != nil {
		host.Email = sanitize.Text(*update.Email)
	}
	if update.Phone != nil {
		host.Phone = sanitize.Text(*update.Phone)
	}

	if err := s.repo.Update(ctx, *host); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
