package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsTestServer upgrades each request and runs a client for the user named
// in the query string, all within one fixed session.
func wsTestServer(t *testing.T, hub *Hub, sessionID uuid.UUID) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.URL.Query().Get("user"))
		if err != nil {
			http.Error(w, "bad user", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, sessionID, userID, conn, DefaultOptions())
		hub.Register(client)
		client.Run()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialUser(t *testing.T, srv *httptest.Server, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + userID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitPresent blocks until the server-side goroutine has registered the
// user, since Dial returns before the handler reaches Register.
func waitPresent(t *testing.T, hub *Hub, sessionID, userID uuid.UUID) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.Present(sessionID, userID)
	}, 2*time.Second, 5*time.Millisecond)
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var evt Event
	require.NoError(t, json.Unmarshal(raw, &evt))
	return evt
}

func TestClient_RelayOverWire(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()
	srv := wsTestServer(t, hub, sessionID)

	userA := uuid.New()
	userB := uuid.New()

	connA := dialUser(t, srv, userA)
	waitPresent(t, hub, sessionID, userA)

	connB := dialUser(t, srv, userB)
	joined := readEvent(t, connA)
	assert.Equal(t, EventUserJoined, joined.Type)
	assert.Equal(t, userB, joined.UserID)

	// B emits a cursor move; A receives it stamped with B's identity even
	// though B claimed someone else's.
	frame, _ := json.Marshal(Event{
		Type:    EventCursorMoved,
		UserID:  uuid.New(),
		Payload: json.RawMessage(`{"x":4,"y":2}`),
	})
	require.NoError(t, connB.WriteMessage(websocket.TextMessage, frame))

	evt := readEvent(t, connA)
	assert.Equal(t, EventCursorMoved, evt.Type)
	assert.Equal(t, userB, evt.UserID)
	assert.Equal(t, sessionID, evt.SessionID)
	assert.JSONEq(t, `{"x":4,"y":2}`, string(evt.Payload))

	// Unknown kinds are dropped at the relay: the next frame A sees is
	// the following valid one.
	bogus, _ := json.Marshal(Event{Type: "reboot_everything"})
	require.NoError(t, connB.WriteMessage(websocket.TextMessage, bogus))
	valid, _ := json.Marshal(Event{Type: EventStatusChanged})
	require.NoError(t, connB.WriteMessage(websocket.TextMessage, valid))

	evt = readEvent(t, connA)
	assert.Equal(t, EventStatusChanged, evt.Type)

	// B disconnects; A hears exactly one user_left naming B.
	require.NoError(t, connB.Close())
	left := readEvent(t, connA)
	assert.Equal(t, EventUserLeft, left.Type)
	assert.Equal(t, userB, left.UserID)

	// Registry entry for B is gone once the server side unwinds.
	require.Eventually(t, func() bool {
		return !hub.Present(sessionID, userB)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_MalformedFrameIgnored(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()
	srv := wsTestServer(t, hub, sessionID)

	userA := uuid.New()
	userB := uuid.New()

	connA := dialUser(t, srv, userA)
	waitPresent(t, hub, sessionID, userA)
	connB := dialUser(t, srv, userB)
	readEvent(t, connA) // B's join announcement

	require.NoError(t, connB.WriteMessage(websocket.TextMessage, []byte("{not json")))
	valid, _ := json.Marshal(Event{Type: EventCursorMoved})
	require.NoError(t, connB.WriteMessage(websocket.TextMessage, valid))

	evt := readEvent(t, connA)
	assert.Equal(t, EventCursorMoved, evt.Type)
}
