package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/loadline/collab/internal/domain"
)

// SessionRepository implements domain.SessionRepository
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists the session together with its host participant in one
// transaction, so a session is never observable without its host row.
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session, host *domain.Participant) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO collab_sessions
			(id, resource_type, resource_id, session_name, host_user_id, status, participant_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		session.ID,
		session.ResourceType,
		session.ResourceID,
		session.SessionName,
		session.HostUserID,
		session.Status,
		session.ParticipantCount,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO collab_participants
			(id, session_id, user_id, role, is_active, can_annotate, can_comment, can_moderate, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		host.ID,
		host.SessionID,
		host.UserID,
		host.Role,
		host.IsActive,
		host.Permissions.CanAnnotate,
		host.Permissions.CanComment,
		host.Permissions.CanModerate,
		host.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create host participant: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var s domain.Session
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, resource_type, resource_id, session_name, host_user_id, status, participant_count, created_at
		FROM collab_sessions
		WHERE id = $1
	`, id).Scan(
		&s.ID,
		&s.ResourceType,
		&s.ResourceID,
		&s.SessionName,
		&s.HostUserID,
		&s.Status,
		&s.ParticipantCount,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) ListActive(ctx context.Context, resourceType, resourceID string) ([]domain.Session, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, resource_type, resource_id, session_name, host_user_id, status, participant_count, created_at
		FROM collab_sessions
		WHERE resource_type = $1 AND resource_id = $2 AND status = $3
		ORDER BY created_at DESC
	`, resourceType, resourceID, domain.SessionActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(
			&s.ID,
			&s.ResourceType,
			&s.ResourceID,
			&s.SessionName,
			&s.HostUserID,
			&s.Status,
			&s.ParticipantCount,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE collab_sessions SET status = $1 WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
