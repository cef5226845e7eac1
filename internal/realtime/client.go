package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Client is one live connection for one (session, user) pair. Inbound
// frames are relayed to the session through the hub; outbound frames are
// queued on send and written by writePump.
type Client struct {
	hub       *Hub
	sessionID uuid.UUID
	userID    uuid.UUID
	conn      *websocket.Conn
	send      chan []byte

	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	maxMessageSize int64

	closeOnce sync.Once
}

// NewClient wraps an upgraded connection. The caller is expected to
// register the client on the hub and start Run.
func NewClient(hub *Hub, sessionID, userID uuid.UUID, conn *websocket.Conn, opts Options) *Client {
	return &Client{
		hub:            hub,
		sessionID:      sessionID,
		userID:         userID,
		conn:           conn,
		send:           make(chan []byte, opts.SendBuffer),
		writeWait:      opts.WriteWait,
		pongWait:       opts.PongWait,
		pingPeriod:     opts.PingPeriod,
		maxMessageSize: opts.MaxMessageSize,
	}
}

// Options tunes the connection pumps
type Options struct {
	SendBuffer     int
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
}

// DefaultOptions returns the pump settings used when no configuration is
// supplied.
func DefaultOptions() Options {
	return Options{
		SendBuffer:     64,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 64 * 1024,
	}
}

// Run services the connection until it closes, then removes it from the
// registry. Blocks until the read side ends.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// shutdown closes the outbound queue exactly once. A non-zero code is
// written as the websocket close frame before the connection drops.
func (c *Client) shutdown(code int) {
	c.closeOnce.Do(func() {
		if code != 0 && c.conn != nil {
			deadline := time.Now().Add(c.writeWait)
			msg := websocket.FormatCloseMessage(code, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, deadline)
		}
		close(c.send)
	})
}

// readPump relays inbound frames to the session. Exits on any read error;
// the deferred unregister removes the registry entry and emits user_left.
func (c *Client) readPump() {
	defer c.hub.Unregister(c)

	c.conn.SetReadLimit(c.maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).
					Str("session_id", c.sessionID.String()).
					Str("user_id", c.userID.String()).
					Msg("Connection read failed")
			}
			return
		}

		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			log.Debug().Err(err).Str("user_id", c.userID.String()).Msg("Dropping malformed frame")
			continue
		}
		if !IsInbound(evt.Type) {
			log.Debug().Str("type", evt.Type).Str("user_id", c.userID.String()).Msg("Dropping unknown event kind")
			continue
		}

		// Stamp the sender; clients cannot speak for each other.
		evt.SessionID = c.sessionID
		evt.UserID = c.userID
		evt.Timestamp = time.Now()

		out, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		c.hub.Broadcast(c.sessionID, c.userID, out)
	}
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with pings. Exits when the queue is closed or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
