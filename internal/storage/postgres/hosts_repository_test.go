package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/movigoo/host-server/internal/domain/hosts"
	"github.com/movigoo/host-server/internal/domain/kyc"
)

func TestHostRepositoryCreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)

	repo := &HostRepository{pool: pool}
	host := hosts.Host{
		UID:       "host-1",
		Name:      "Meera Pillai",
		Phone:     "+919800000001",
		Email:     "meera@example.com",
		IsHost:    true,
		KycStatus: kyc.StatusNone,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, host))

	got, err := repo.Get(ctx, "host-1")
	require.NoError(t, err)
	require.Equal(t, host.Name, got.Name)
	require.Equal(t, kyc.StatusNone, got.KycStatus)
	require.Nil(t, got.KycSubmittedAt)

	got.Email = "meera.p@example.com"
	require.NoError(t, repo.Update(ctx, *got))

	updated, err := repo.Get(ctx, "host-1")
	require.NoError(t, err)
	require.Equal(t, "meera.p@example.com", updated.Email)
}

func TestHostRepositoryGetMissing(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)

	repo := &HostRepository{pool: pool}

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, hosts.ErrNotFound)

	err = repo.Update(ctx, hosts.Host{UID: "missing"})
	require.ErrorIs(t, err, hosts.ErrNotFound)
}

func TestHostRepositoryLookupAndSetKycStatus(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)

	repo := &HostRepository{pool: pool}
	insertHost(t, ctx, pool, "host-1", "Meera Pillai")

	info, err := repo.Lookup(ctx, "host-1")
	require.NoError(t, err)
	require.True(t, info.IsHost)
	require.Equal(t, "host-1@example.com", info.Email)

	_, err = repo.Lookup(ctx, "missing")
	require.ErrorIs(t, err, kyc.ErrHostNotFound)

	submittedAt := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.SetKycStatus(ctx, "host-1", kyc.StatusPending, submittedAt))

	host, err := repo.Get(ctx, "host-1")
	require.NoError(t, err)
	require.Equal(t, kyc.StatusPending, host.KycStatus)
	require.NotNil(t, host.KycSubmittedAt)
	require.Equal(t, submittedAt, *host.KycSubmittedAt)
}
