package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/movigoo/host-server/internal/auth"
)

func (r *SessionRepository) Insert(ctx context.Context, session auth.Session) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO host_sessions (session_id, host_uid, key_hash, user_agent, source_ip, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, session.ID, session.HostUID, session.KeyHash, session.UserAgent, session.SourceIP, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*auth.Session, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT session_id, host_uid, key_hash, user_agent, source_ip, created_at
  FROM host_sessions
 WHERE session_id = $1
`, sessionID)

	var session auth.Session
	if err := row.Scan(
		&session.ID,
		&session.HostUID,
		&session.KeyHash,
		&session.UserAgent,
		&session.SourceIP,
		&session.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, auth.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) ListByHost(ctx context.Context, hostUID string) ([]auth.Session, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT session_id, host_uid, key_hash, user_agent, source_ip, created_at
  FROM host_sessions
 WHERE host_uid = $1
 ORDER BY created_at DESC
`, hostUID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []auth.Session
	for rows.Next() {
		var session auth.Session
		if err := rows.Scan(
			&session.ID,
			&session.HostUID,
			&session.KeyHash,
			&session.UserAgent,
			&session.SourceIP,
			&session.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) DeleteOne(ctx context.Context, hostUID, sessionID string) (int64, error) {
	tag, err := r.queryer().Exec(ctx, `
DELETE FROM host_sessions
 WHERE host_uid = $1
   AND session_id = $2
`, hostUID, sessionID)
	if err != nil {
		return 0, fmt.Errorf("delete session: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) DeleteByHost(ctx context.Context, hostUID string) (int64, error) {
	tag, err := r.queryer().Exec(ctx, `
DELETE FROM host_sessions
 WHERE host_uid = $1
`, hostUID)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.queryer().Exec(ctx, `
DELETE FROM host_sessions
 WHERE created_at < $1
`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
