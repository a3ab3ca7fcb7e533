package storage

import (
	"context"

	"github.com/movigoo/host-server/internal/auth"
	"github.com/movigoo/host-server/internal/domain/events"
	"github.com/movigoo/host-server/internal/domain/hosts"
	"github.com/movigoo/host-server/internal/domain/kyc"
)

// HostRepository is the host account store plus the directory surface
// the KYC flow reads.
type HostRepository interface {
	hosts.Repository
	kyc.HostDirectory
}

// Repository groups data access by domain.
type Repository interface {
	Sessions() auth.SessionStore
	Hosts() HostRepository
	Kyc() kyc.Repository
	Events() events.Repository

	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
