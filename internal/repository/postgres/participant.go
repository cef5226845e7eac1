package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/loadline/collab/internal/domain"
)

// ParticipantRepository implements domain.ParticipantRepository
type ParticipantRepository struct {
	db *DB
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Join inserts or reactivates the participant row for (session, user) and
// recomputes the session's participant_count from the active rows, all in
// one transaction. The unique index on (session_id, user_id) makes the
// upsert safe under concurrent joins by the same user.
func (r *ParticipantRepository) Join(ctx context.Context, p *domain.Participant) (*domain.Participant, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var out domain.Participant
	err = tx.QueryRow(ctx, `
		INSERT INTO collab_participants
			(id, session_id, user_id, role, is_active, can_annotate, can_comment, can_moderate, joined_at)
		VALUES ($1, $2, $3, $4, true, $5, $6, $7, $8)
		ON CONFLICT (session_id, user_id) DO UPDATE
			SET is_active = true, left_at = NULL
		RETURNING id, session_id, user_id, role, is_active, can_annotate, can_comment, can_moderate, joined_at, left_at
	`,
		p.ID,
		p.SessionID,
		p.UserID,
		p.Role,
		p.Permissions.CanAnnotate,
		p.Permissions.CanComment,
		p.Permissions.CanModerate,
		p.JoinedAt,
	).Scan(
		&out.ID,
		&out.SessionID,
		&out.UserID,
		&out.Role,
		&out.IsActive,
		&out.Permissions.CanAnnotate,
		&out.Permissions.CanComment,
		&out.Permissions.CanModerate,
		&out.JoinedAt,
		&out.LeftAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert participant: %w", err)
	}

	if err := recountParticipants(ctx, tx, p.SessionID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit join: %w", err)
	}
	return &out, nil
}

// Leave deactivates the participant row and recomputes participant_count in
// the same transaction. Leaving when already inactive is a no-op.
func (r *ParticipantRepository) Leave(ctx context.Context, sessionID, userID uuid.UUID) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE collab_participants
		SET is_active = false, left_at = $1
		WHERE session_id = $2 AND user_id = $3 AND is_active = true
	`, time.Now(), sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate participant: %w", err)
	}

	if err := recountParticipants(ctx, tx, sessionID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit leave: %w", err)
	}
	return nil
}

// recountParticipants refreshes the cached participant_count from the
// active participant rows. Runs inside the caller's transaction.
func recountParticipants(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE collab_sessions
		SET participant_count = (
			SELECT COUNT(*) FROM collab_participants
			WHERE session_id = $1 AND is_active = true
		)
		WHERE id = $1
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to recount participants: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) Get(ctx context.Context, sessionID, userID uuid.UUID) (*domain.Participant, error) {
	var p domain.Participant
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, session_id, user_id, role, is_active, can_annotate, can_comment, can_moderate, joined_at, left_at
		FROM collab_participants
		WHERE session_id = $1 AND user_id = $2
	`, sessionID, userID).Scan(
		&p.ID,
		&p.SessionID,
		&p.UserID,
		&p.Role,
		&p.IsActive,
		&p.Permissions.CanAnnotate,
		&p.Permissions.CanComment,
		&p.Permissions.CanModerate,
		&p.JoinedAt,
		&p.LeftAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return &p, nil
}

func (r *ParticipantRepository) ListActive(ctx context.Context, sessionID uuid.UUID) ([]domain.Participant, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, session_id, user_id, role, is_active, can_annotate, can_comment, can_moderate, joined_at, left_at
		FROM collab_participants
		WHERE session_id = $1 AND is_active = true
		ORDER BY joined_at
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(
			&p.ID,
			&p.SessionID,
			&p.UserID,
			&p.Role,
			&p.IsActive,
			&p.Permissions.CanAnnotate,
			&p.Permissions.CanComment,
			&p.Permissions.CanModerate,
			&p.JoinedAt,
			&p.LeftAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
