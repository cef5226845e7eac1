package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/loadline/collab/internal/domain"
)

// CommentRepository implements domain.CommentRepository
type CommentRepository struct {
	db *DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO collab_comments
			(id, session_id, annotation_id, parent_comment_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		c.ID,
		c.SessionID,
		c.AnnotationID,
		c.ParentCommentID,
		c.UserID,
		c.Content,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, session_id, annotation_id, parent_comment_id, user_id, content, created_at
		FROM collab_comments
		WHERE id = $1
	`, id).Scan(
		&c.ID,
		&c.SessionID,
		&c.AnnotationID,
		&c.ParentCommentID,
		&c.UserID,
		&c.Content,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

func (r *CommentRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Comment, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, session_id, annotation_id, parent_comment_id, user_id, content, created_at
		FROM collab_comments
		WHERE session_id = $1
		ORDER BY created_at
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(
			&c.ID,
			&c.SessionID,
			&c.AnnotationID,
			&c.ParentCommentID,
			&c.UserID,
			&c.Content,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
