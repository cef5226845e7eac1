package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/loadline/collab/internal/api/middleware"
	"github.com/loadline/collab/internal/api/response"
	"github.com/loadline/collab/internal/realtime"
	"github.com/loadline/collab/internal/service"
	"github.com/rs/zerolog/log"
)

// WSHandler upgrades live connections and hands them to the hub
type WSHandler struct {
	hub      *realtime.Hub
	sessions *service.SessionService
	opts     realtime.Options
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(hub *realtime.Hub, sessions *service.SessionService, opts realtime.Options) *WSHandler {
	return &WSHandler{
		hub:      hub,
		sessions: sessions,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin policy is enforced upstream; the API is token-gated.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve authorizes the caller against the session, upgrades the request,
// and runs the connection until it closes. Session and user identity are
// both required at connection time; either missing ends the request.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "user ID not found")
		return
	}

	// Membership gates the connection; the hub itself never checks.
	if _, err := h.sessions.ActiveParticipant(r.Context(), sessionID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Debug().Err(err).Msg("Websocket upgrade failed")
		return
	}

	client := realtime.NewClient(h.hub, sessionID, userID, conn, h.opts)
	h.hub.Register(client)
	client.Run()
}
