package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Visibility is the display state of an annotation. Deleting an annotation
// moves it to hidden; rows are never removed.
type Visibility string

const (
	VisibilityVisible Visibility = "visible"
	VisibilityHidden  Visibility = "hidden"
)

// Position locates an annotation on the shared resource
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Annotation is a durable, positioned marker left on the shared resource
type Annotation struct {
	ID             uuid.UUID  `json:"id"`
	SessionID      uuid.UUID  `json:"session_id"`
	UserID         uuid.UUID  `json:"user_id"`
	AnnotationType string     `json:"annotation_type"`
	TargetElement  string     `json:"target_element,omitempty"`
	Position       Position   `json:"position"`
	Content        string     `json:"content"`
	Color          string     `json:"color,omitempty"`
	Visibility     Visibility `json:"visibility"`
	CreatedAt      time.Time  `json:"created_at"`
}

// AnnotationUpdate carries the mutable fields of an annotation
type AnnotationUpdate struct {
	Position *Position `json:"position,omitempty"`
	Content  *string   `json:"content,omitempty"`
	Color    *string   `json:"color,omitempty"`
}

// AnnotationRepository defines the interface for annotation storage
type AnnotationRepository interface {
	Create(ctx context.Context, a *Annotation) error
	Get(ctx context.Context, id uuid.UUID) (*Annotation, error)
	// ListVisible returns annotations with visibility=visible for the session.
	ListVisible(ctx context.Context, sessionID uuid.UUID) ([]Annotation, error)
	Update(ctx context.Context, id uuid.UUID, update *AnnotationUpdate) error
	SetVisibility(ctx context.Context, id uuid.UUID, v Visibility) error
}
