package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loadline/collab/internal/domain"
)

// CollabService persists and queries the durable collaboration artifacts:
// positioned annotations and threaded comments. Capability checks run
// against the caller's participant row before any write.
type CollabService struct {
	sessions       *SessionService
	annotationRepo domain.AnnotationRepository
	commentRepo    domain.CommentRepository
}

// NewCollabService creates a new collab service
func NewCollabService(sessions *SessionService, annotationRepo domain.AnnotationRepository, commentRepo domain.CommentRepository) *CollabService {
	return &CollabService{
		sessions:       sessions,
		annotationRepo: annotationRepo,
		commentRepo:    commentRepo,
	}
}

// AnnotationInput carries the caller-supplied fields of a new annotation
type AnnotationInput struct {
	AnnotationType string          `json:"annotation_type" validate:"required"`
	TargetElement  string          `json:"target_element"`
	Position       domain.Position `json:"position"`
	Content        string          `json:"content"`
	Color          string          `json:"color"`
}

// CreateAnnotation persists a visible annotation authored by userID.
// Requires an active membership with the annotate capability.
func (s *CollabService) CreateAnnotation(ctx context.Context, sessionID, userID uuid.UUID, input AnnotationInput) (*domain.Annotation, error) {
	p, err := s.sessions.ActiveParticipant(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !p.Permissions.CanAnnotate {
		return nil, domain.ErrPermissionDenied
	}

	a := &domain.Annotation{
		ID:             uuid.New(),
		SessionID:      sessionID,
		UserID:         userID,
		AnnotationType: input.AnnotationType,
		TargetElement:  input.TargetElement,
		Position:       input.Position,
		Content:        input.Content,
		Color:          input.Color,
		Visibility:     domain.VisibilityVisible,
		CreatedAt:      time.Now(),
	}
	if err := s.annotationRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create annotation: %w", err)
	}
	return a, nil
}

// UpdateAnnotation applies a partial edit (move, retext, recolor) to an
// annotation in the session.
func (s *CollabService) UpdateAnnotation(ctx context.Context, sessionID, annotationID, userID uuid.UUID, update domain.AnnotationUpdate) (*domain.Annotation, error) {
	p, err := s.sessions.ActiveParticipant(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !p.Permissions.CanAnnotate {
		return nil, domain.ErrPermissionDenied
	}

	a, err := s.annotationRepo.Get(ctx, annotationID)
	if err != nil {
		return nil, err
	}
	if a.SessionID != sessionID {
		return nil, domain.ErrInvalidReference
	}

	if err := s.annotationRepo.Update(ctx, annotationID, &update); err != nil {
		return nil, fmt.Errorf("failed to update annotation: %w", err)
	}
	return s.annotationRepo.Get(ctx, annotationID)
}

// HideAnnotation soft-deletes an annotation by setting it hidden. The row
// is kept; ListAnnotations stops returning it.
func (s *CollabService) HideAnnotation(ctx context.Context, sessionID, annotationID, userID uuid.UUID) error {
	p, err := s.sessions.ActiveParticipant(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if !p.Permissions.CanAnnotate {
		return domain.ErrPermissionDenied
	}

	a, err := s.annotationRepo.Get(ctx, annotationID)
	if err != nil {
		return err
	}
	if a.SessionID != sessionID {
		return domain.ErrInvalidReference
	}

	return s.annotationRepo.SetVisibility(ctx, annotationID, domain.VisibilityHidden)
}

// ListAnnotations returns the visible annotations of a session
func (s *CollabService) ListAnnotations(ctx context.Context, sessionID uuid.UUID) ([]domain.Annotation, error) {
	annotations, err := s.annotationRepo.ListVisible(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}
	return annotations, nil
}

// CommentInput carries the caller-supplied fields of a new comment
type CommentInput struct {
	Content         string     `json:"content" validate:"required"`
	AnnotationID    *uuid.UUID `json:"annotation_id,omitempty"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id,omitempty"`
}

// CreateComment persists a comment authored by userID. Requires an active
// membership with the comment capability. Annotation and parent comment
// references must point inside the same session.
func (s *CollabService) CreateComment(ctx context.Context, sessionID, userID uuid.UUID, input CommentInput) (*domain.Comment, error) {
	p, err := s.sessions.ActiveParticipant(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !p.Permissions.CanComment {
		return nil, domain.ErrPermissionDenied
	}

	if input.AnnotationID != nil {
		a, err := s.annotationRepo.Get(ctx, *input.AnnotationID)
		if err != nil {
			if errors.Is(err, domain.ErrAnnotationNotFound) {
				return nil, domain.ErrInvalidReference
			}
			return nil, err
		}
		if a.SessionID != sessionID {
			return nil, domain.ErrInvalidReference
		}
	}
	if input.ParentCommentID != nil {
		parent, err := s.commentRepo.Get(ctx, *input.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.SessionID != sessionID {
			return nil, domain.ErrInvalidReference
		}
	}

	c := &domain.Comment{
		ID:              uuid.New(),
		SessionID:       sessionID,
		AnnotationID:    input.AnnotationID,
		ParentCommentID: input.ParentCommentID,
		UserID:          userID,
		Content:         input.Content,
		CreatedAt:       time.Now(),
	}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return c, nil
}

// ListComments returns every comment of a session in creation order.
// Thread reconstruction is left to the consumer.
func (s *CollabService) ListComments(ctx context.Context, sessionID uuid.UUID) ([]domain.Comment, error) {
	comments, err := s.commentRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
