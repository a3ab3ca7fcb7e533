package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/movigoo/host-server/internal/domain/kyc"
)

func (r *KycRepository) Get(ctx context.Context, hostUID string) (*kyc.Record, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT host_uid, full_name, document_type, document_number, document_url, address,
       status, submitted_at, updated_at, verified_at, rejection_reason
  FROM kyc_records
 WHERE host_uid = $1
`, hostUID)

	var record kyc.Record
	if err := row.Scan(
		&record.HostUID,
		&record.FullName,
		&record.DocumentType,
		&record.DocumentNumber,
		&record.DocumentURL,
		&record.Address,
		&record.Status,
		&record.SubmittedAt,
		&record.UpdatedAt,
		&record.VerifiedAt,
		&record.RejectionReason,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, kyc.ErrNotFound
		}
		return nil, fmt.Errorf("get kyc record: %w", err)
	}
	return &record, nil
}

func (r *KycRepository) Upsert(ctx context.Context, record kyc.Record) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO kyc_records (host_uid, full_name, document_type, document_number, document_url,
                         address, status, submitted_at, updated_at, verified_at, rejection_reason)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (host_uid) DO UPDATE SET
       full_name = EXCLUDED.full_name,
       document_type = EXCLUDED.document_type,
       document_number = EXCLUDED.document_number,
       document_url = EXCLUDED.document_url,
       address = EXCLUDED.address,
       status = EXCLUDED.status,
       submitted_at = EXCLUDED.submitted_at,
       updated_at = EXCLUDED.updated_at,
       verified_at = EXCLUDED.verified_at,
       rejection_reason = EXCLUDED.rejection_reason
`, record.HostUID, record.FullName, record.DocumentType, record.DocumentNumber, record.DocumentURL,
		record.Address, record.Status, record.SubmittedAt, record.UpdatedAt, record.VerifiedAt, record.RejectionReason)
	if err != nil {
		return fmt.Errorf("upsert kyc record: %w", err)
	}
	return nil
}
