package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Comment is a threaded discussion entry, optionally attached to an
// annotation and/or nested under a parent comment. Comments are immutable
// once created.
type Comment struct {
	ID              uuid.UUID  `json:"id"`
	SessionID       uuid.UUID  `json:"session_id"`
	AnnotationID    *uuid.UUID `json:"annotation_id,omitempty"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id,omitempty"`
	UserID          uuid.UUID  `json:"user_id"`
	Content         string     `json:"content"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CommentRepository defines the interface for comment storage
type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	Get(ctx context.Context, id uuid.UUID) (*Comment, error)
	// ListBySession returns the full comment set for the session; thread
	// reconstruction is left to the consumer.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Comment, error)
}
