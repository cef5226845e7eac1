package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event kinds a client may send. Everything else is dropped at the relay.
const (
	EventAnnotationCreated = "annotation_created"
	EventAnnotationUpdated = "annotation_updated"
	EventAnnotationDeleted = "annotation_deleted"
	EventCommentCreated    = "comment_created"
	EventStatusChanged     = "status_changed"
	EventCursorMoved       = "cursor_moved"
)

// Server-originated event kinds
const (
	EventUserJoined = "user_joined"
	EventUserLeft   = "user_left"
)

var inboundEvents = map[string]struct{}{
	EventAnnotationCreated: {},
	EventAnnotationUpdated: {},
	EventAnnotationDeleted: {},
	EventCommentCreated:    {},
	EventStatusChanged:     {},
	EventCursorMoved:       {},
}

// Event is one frame on the live connection. Payload is relayed verbatim;
// the router never inspects it beyond the type discriminator. SessionID,
// UserID and Timestamp are stamped server-side on relay.
type Event struct {
	Type      string          `json:"type"`
	SessionID uuid.UUID       `json:"session_id,omitempty"`
	UserID    uuid.UUID       `json:"user_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// IsInbound reports whether the event kind is accepted from a client
func IsInbound(kind string) bool {
	_, ok := inboundEvents[kind]
	return ok
}

func presenceEvent(kind string, sessionID, userID uuid.UUID) []byte {
	b, _ := json.Marshal(Event{
		Type:      kind,
		SessionID: sessionID,
		UserID:    userID,
		Timestamp: time.Now(),
	})
	return b
}
