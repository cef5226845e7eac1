package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CloseSuperseded is sent to a connection that was replaced by a newer
// connection for the same (session, user).
const CloseSuperseded = 4409

// Hub is the connection registry: one live connection per (session, user),
// fanned out to per-session buckets. All access to the maps goes through
// the hub's mutex; handlers never touch the registry directly.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[uuid.UUID]*Client
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[uuid.UUID]map[uuid.UUID]*Client),
	}
}

// Register adds the client to the registry and announces it to the rest of
// the session. A prior connection for the same (session, user) is
// superseded: closed with CloseSuperseded and replaced.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	bucket, ok := h.sessions[c.sessionID]
	if !ok {
		bucket = make(map[uuid.UUID]*Client)
		h.sessions[c.sessionID] = bucket
	}
	prev := bucket[c.userID]
	bucket[c.userID] = c
	h.mu.Unlock()

	if prev != nil {
		prev.shutdown(CloseSuperseded)
	}

	h.broadcast(c.sessionID, c.userID, presenceEvent(EventUserJoined, c.sessionID, c.userID))

	log.Debug().
		Str("session_id", c.sessionID.String()).
		Str("user_id", c.userID.String()).
		Msg("Connection registered")
}

// Unregister removes the client from the registry and announces the
// departure. A client that was already superseded by a reconnect is not
// the registered entry anymore and leaves no trace: the user is still
// present on the newer connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	bucket, ok := h.sessions[c.sessionID]
	if !ok || bucket[c.userID] != c {
		h.mu.Unlock()
		return
	}
	delete(bucket, c.userID)
	if len(bucket) == 0 {
		delete(h.sessions, c.sessionID)
	}
	h.mu.Unlock()

	c.shutdown(0)
	h.broadcast(c.sessionID, c.userID, presenceEvent(EventUserLeft, c.sessionID, c.userID))

	log.Debug().
		Str("session_id", c.sessionID.String()).
		Str("user_id", c.userID.String()).
		Msg("Connection unregistered")
}

// Broadcast relays a raw frame to every connection in the session except
// the sender's.
func (h *Hub) Broadcast(sessionID, senderID uuid.UUID, message []byte) {
	h.broadcast(sessionID, senderID, message)
}

func (h *Hub) broadcast(sessionID, exclude uuid.UUID, message []byte) {
	h.mu.RLock()
	bucket := h.sessions[sessionID]
	var stalled []*Client
	for userID, peer := range bucket {
		if userID == exclude {
			continue
		}
		select {
		case peer.send <- message:
		default:
			// Peer's outbound queue is full; dropping it is the only way
			// to keep delivery moving for everyone else.
			stalled = append(stalled, peer)
		}
	}
	h.mu.RUnlock()

	for _, peer := range stalled {
		log.Warn().
			Str("session_id", sessionID.String()).
			Str("user_id", peer.userID.String()).
			Msg("Dropping stalled connection")
		h.Unregister(peer)
	}
}

// Present reports whether (session, user) currently has a live connection
func (h *Hub) Present(sessionID, userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[sessionID][userID]
	return ok
}

// SessionSize returns the number of live connections in a session
func (h *Hub) SessionSize(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}
