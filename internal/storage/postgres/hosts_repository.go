package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/movigoo/host-server/internal/domain/hosts"
	"github.com/movigoo/host-server/internal/domain/kyc"
)

func (r *HostRepository) Get(ctx context.Context, uid string) (*hosts.Host, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT uid, name, phone, email, is_host, is_customer, kyc_status, kyc_submitted_at, created_at
  FROM hosts
 WHERE uid = $1
`, uid)

	var host hosts.Host
	if err := row.Scan(
		&host.UID,
		&host.Name,
		&host.Phone,
		&host.Email,
		&host.IsHost,
		&host.IsCustomer,
		&host.KycStatus,
		&host.KycSubmittedAt,
		&host.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, hosts.ErrNotFound
		}
		return nil, fmt.Errorf("get host: %w", err)
	}
	return &host, nil
}

func (r *HostRepository) Create(ctx context.Context, host hosts.Host) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO hosts (uid, name, phone, email, is_host, is_customer, kyc_status, kyc_submitted_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, host.UID, host.Name, host.Phone, host.Email, host.IsHost, host.IsCustomer, host.KycStatus, host.KycSubmittedAt, host.CreatedAt)
	if err != nil {
		return fmt.Errorf("create host: %w", err)
	}
	return nil
}

func (r *HostRepository) Update(ctx context.Context, host hosts.Host) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE hosts
   SET name = $2,
       phone = $3,
       email = $4,
       is_host = $5,
       is_customer = $6,
       kyc_status = $7,
       kyc_submitted_at = $8
 WHERE uid = $1
`, host.UID, host.Name, host.Phone, host.Email, host.IsHost, host.IsCustomer, host.KycStatus, host.KycSubmittedAt)
	if err != nil {
		return fmt.Errorf("update host: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return hosts.ErrNotFound
	}
	return nil
}

func (r *HostRepository) Lookup(ctx context.Context, hostUID string) (kyc.HostInfo, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT is_host, name, email
  FROM hosts
 WHERE uid = $1
`, hostUID)

	var info kyc.HostInfo
	if err := row.Scan(&info.IsHost, &info.Name, &info.Email); err != nil {
		if err == pgx.ErrNoRows {
			return kyc.HostInfo{}, kyc.ErrHostNotFound
		}
		return kyc.HostInfo{}, fmt.Errorf("lookup host: %w", err)
	}
	return info, nil
}

func (r *HostRepository) SetKycStatus(ctx context.Context, hostUID string, status kyc.Status, submittedAt time.Time) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE hosts
   SET kyc_status = $2,
       kyc_submitted_at = $3
 WHERE uid = $1
`, hostUID, status, submittedAt)
	if err != nil {
		return fmt.Errorf("set kyc status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return kyc.ErrHostNotFound
	}
	return nil
}
