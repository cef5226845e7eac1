package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Participant roles within a session
const (
	RoleHost        = "host"
	RoleParticipant = "participant"
)

// Permissions is the capability set attached to a participant
type Permissions struct {
	CanAnnotate bool `json:"can_annotate"`
	CanComment  bool `json:"can_comment"`
	CanModerate bool `json:"can_moderate"`
}

// HostPermissions returns the full capability set granted to a session host
func HostPermissions() Permissions {
	return Permissions{CanAnnotate: true, CanComment: true, CanModerate: true}
}

// DefaultPermissions returns the capability set granted on a plain join
func DefaultPermissions() Permissions {
	return Permissions{CanAnnotate: true, CanComment: true}
}

// Participant represents one user's membership in one session.
// At most one row exists per (SessionID, UserID); rejoining reactivates it.
type Participant struct {
	ID          uuid.UUID   `json:"id"`
	SessionID   uuid.UUID   `json:"session_id"`
	UserID      uuid.UUID   `json:"user_id"`
	Role        string      `json:"role"`
	IsActive    bool        `json:"is_active"`
	Permissions Permissions `json:"permissions"`
	JoinedAt    time.Time   `json:"joined_at"`
	LeftAt      *time.Time  `json:"left_at,omitempty"`
}

// ParticipantRepository defines the interface for participant storage.
//
// Join and Leave must recompute the parent session's participant_count from
// the active participant rows within the same transaction as the membership
// write, so the cached count never drifts under concurrent calls.
type ParticipantRepository interface {
	// Join inserts a new participant row, or reactivates the existing row
	// for (sessionID, userID) if one is present.
	Join(ctx context.Context, p *Participant) (*Participant, error)
	// Leave deactivates the participant row and stamps LeftAt. Deactivating
	// an already inactive row is a no-op, not an error.
	Leave(ctx context.Context, sessionID, userID uuid.UUID) error
	Get(ctx context.Context, sessionID, userID uuid.UUID) (*Participant, error)
	ListActive(ctx context.Context, sessionID uuid.UUID) ([]Participant, error)
}
