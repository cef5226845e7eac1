package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of a collaboration session
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

// Session represents one shared collaborative context over a single
// (resourceType, resourceID) pair. HostUserID is fixed at creation.
type Session struct {
	ID               uuid.UUID     `json:"id"`
	ResourceType     string        `json:"resource_type"`
	ResourceID       string        `json:"resource_id"`
	SessionName      string        `json:"session_name"`
	HostUserID       uuid.UUID     `json:"host_user_id"`
	Status           SessionStatus `json:"status"`
	ParticipantCount int           `json:"participant_count"`
	CreatedAt        time.Time     `json:"created_at"`
}

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	// Create persists the session and its host participant atomically.
	Create(ctx context.Context, session *Session, host *Participant) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	// ListActive returns sessions with status=active for the given resource.
	ListActive(ctx context.Context, resourceType, resourceID string) ([]Session, error)
	SetStatus(ctx context.Context, id uuid.UUID, status SessionStatus) error
}
