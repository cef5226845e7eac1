package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/loadline/collab/internal/domain"
)

// AnnotationRepository implements domain.AnnotationRepository
type AnnotationRepository struct {
	db *DB
}

// NewAnnotationRepository creates a new annotation repository
func NewAnnotationRepository(db *DB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

func (r *AnnotationRepository) Create(ctx context.Context, a *domain.Annotation) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO collab_annotations
			(id, session_id, user_id, annotation_type, target_element,
			 pos_x, pos_y, pos_width, pos_height, content, color, visibility, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		a.ID,
		a.SessionID,
		a.UserID,
		a.AnnotationType,
		a.TargetElement,
		a.Position.X,
		a.Position.Y,
		a.Position.Width,
		a.Position.Height,
		a.Content,
		a.Color,
		a.Visibility,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create annotation: %w", err)
	}
	return nil
}

func (r *AnnotationRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Annotation, error) {
	var a domain.Annotation
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, session_id, user_id, annotation_type, target_element,
		       pos_x, pos_y, pos_width, pos_height, content, color, visibility, created_at
		FROM collab_annotations
		WHERE id = $1
	`, id).Scan(
		&a.ID,
		&a.SessionID,
		&a.UserID,
		&a.AnnotationType,
		&a.TargetElement,
		&a.Position.X,
		&a.Position.Y,
		&a.Position.Width,
		&a.Position.Height,
		&a.Content,
		&a.Color,
		&a.Visibility,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAnnotationNotFound
		}
		return nil, fmt.Errorf("failed to get annotation: %w", err)
	}
	return &a, nil
}

func (r *AnnotationRepository) ListVisible(ctx context.Context, sessionID uuid.UUID) ([]domain.Annotation, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, session_id, user_id, annotation_type, target_element,
		       pos_x, pos_y, pos_width, pos_height, content, color, visibility, created_at
		FROM collab_annotations
		WHERE session_id = $1 AND visibility = $2
		ORDER BY created_at
	`, sessionID, domain.VisibilityVisible)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}
	defer rows.Close()

	var annotations []domain.Annotation
	for rows.Next() {
		var a domain.Annotation
		if err := rows.Scan(
			&a.ID,
			&a.SessionID,
			&a.UserID,
			&a.AnnotationType,
			&a.TargetElement,
			&a.Position.X,
			&a.Position.Y,
			&a.Position.Width,
			&a.Position.Height,
			&a.Content,
			&a.Color,
			&a.Visibility,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		annotations = append(annotations, a)
	}
	return annotations, rows.Err()
}

func (r *AnnotationRepository) Update(ctx context.Context, id uuid.UUID, update *domain.AnnotationUpdate) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE collab_annotations SET
			pos_x      = COALESCE($1, pos_x),
			pos_y      = COALESCE($2, pos_y),
			pos_width  = COALESCE($3, pos_width),
			pos_height = COALESCE($4, pos_height),
			content    = COALESCE($5, content),
			color      = COALESCE($6, color)
		WHERE id = $7
	`,
		posField(update.Position, func(p *domain.Position) float64 { return p.X }),
		posField(update.Position, func(p *domain.Position) float64 { return p.Y }),
		posField(update.Position, func(p *domain.Position) float64 { return p.Width }),
		posField(update.Position, func(p *domain.Position) float64 { return p.Height }),
		update.Content,
		update.Color,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update annotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAnnotationNotFound
	}
	return nil
}

func posField(p *domain.Position, get func(*domain.Position) float64) *float64 {
	if p == nil {
		return nil
	}
	v := get(p)
	return &v
}

func (r *AnnotationRepository) SetVisibility(ctx context.Context, id uuid.UUID, v domain.Visibility) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE collab_annotations SET visibility = $1 WHERE id = $2
	`, v, id)
	if err != nil {
		return fmt.Errorf("failed to update annotation visibility: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAnnotationNotFound
	}
	return nil
}
