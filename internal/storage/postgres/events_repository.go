package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/movigoo/host-server/internal/domain/events"
)

const eventColumns = `event_id, host_uid, status, basic_details, schedule, tickets, created_at, updated_at, published_at`

func (r *EventRepository) GetOwned(ctx context.Context, hostUID, eventID string) (*events.EventDocument, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM host_events
 WHERE host_uid = $1
   AND event_id = $2
`, hostUID, eventID)
	return scanEvent(row)
}

func (r *EventRepository) GetPublished(ctx context.Context, eventID string) (*events.EventDocument, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM published_events
 WHERE event_id = $1
`, eventID)
	return scanEvent(row)
}

func (r *EventRepository) UpsertOwned(ctx context.Context, doc events.EventDocument) error {
	args, err := eventArgs(doc)
	if err != nil {
		return err
	}
	if _, err := r.queryer().Exec(ctx, upsertSQL("host_events"), args...); err != nil {
		return fmt.Errorf("upsert owned event: %w", err)
	}
	return nil
}

// PublishBoth writes the owner copy and the global copy in one
// transaction. If the repository is already transactional the caller's
// transaction is used.
func (r *EventRepository) PublishBoth(ctx context.Context, doc events.EventDocument) error {
	if r.tx != nil {
		return publishBoth(ctx, r.tx, doc)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	if err := publishBoth(ctx, tx, doc); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func publishBoth(ctx context.Context, tx pgx.Tx, doc events.EventDocument) error {
	args, err := eventArgs(doc)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, upsertSQL("host_events"), args...); err != nil {
		return fmt.Errorf("publish owner copy: %w", err)
	}
	if _, err := tx.Exec(ctx, upsertSQL("published_events"), args...); err != nil {
		return fmt.Errorf("publish global copy: %w", err)
	}
	return nil
}

func upsertSQL(table string) string {
	conflict := "(event_id)"
	if table == "host_events" {
		conflict = "(host_uid, event_id)"
	}
	return `
INSERT INTO ` + table + ` (` + eventColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT ` + conflict + ` DO UPDATE SET
       status = EXCLUDED.status,
       basic_details = EXCLUDED.basic_details,
       schedule = EXCLUDED.schedule,
       tickets = EXCLUDED.tickets,
       created_at = EXCLUDED.created_at,
       updated_at = EXCLUDED.updated_at,
       published_at = EXCLUDED.published_at
`
}

func eventArgs(doc events.EventDocument) ([]any, error) {
	basicDetails, err := json.Marshal(doc.BasicDetails)
	if err != nil {
		return nil, fmt.Errorf("encode basic details: %w", err)
	}
	schedule, err := json.Marshal(doc.Schedule)
	if err != nil {
		return nil, fmt.Errorf("encode schedule: %w", err)
	}
	tickets, err := json.Marshal(doc.Tickets)
	if err != nil {
		return nil, fmt.Errorf("encode tickets: %w", err)
	}
	return []any{
		doc.ID, doc.HostUID, doc.Status,
		basicDetails, schedule, tickets,
		doc.CreatedAt, doc.UpdatedAt, doc.PublishedAt,
	}, nil
}

func scanEvent(row pgx.Row) (*events.EventDocument, error) {
	var (
		doc          events.EventDocument
		basicDetails []byte
		schedule     []byte
		tickets      []byte
	)
	if err := row.Scan(
		&doc.ID,
		&doc.HostUID,
		&doc.Status,
		&basicDetails,
		&schedule,
		&tickets,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.PublishedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}

	if err := json.Unmarshal(basicDetails, &doc.BasicDetails); err != nil {
		return nil, fmt.Errorf("decode basic details: %w", err)
	}
	if err := json.Unmarshal(schedule, &doc.Schedule); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	if err := json.Unmarshal(tickets, &doc.Tickets); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	return &doc, nil
}
