package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/loadline/collab/internal/api/middleware"
	"github.com/loadline/collab/internal/api/response"
	"github.com/loadline/collab/internal/service"
)

var validate = validator.New()

// SessionHandler serves the session lifecycle endpoints
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create starts a collaboration session on a resource; the caller becomes
// the host.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "user ID not found")
		return
	}

	var req struct {
		ResourceType string `json:"resource_type" validate:"required"`
		ResourceID   string `json:"resource_id" validate:"required"`
		SessionName  string `json:"session_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, "resource_type and resource_id are required")
		return
	}

	session, err := h.sessions.Create(r.Context(), req.ResourceType, req.ResourceID, req.SessionName, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, session)
}

// List returns active sessions for a resource
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	resourceType := r.URL.Query().Get("resource_type")
	resourceID := r.URL.Query().Get("resource_id")

	sessions, err := h.sessions.ListActive(r.Context(), resourceType, resourceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, sessions)
}

// Get returns one session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, session)
}

// Join adds the caller to the session
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "user ID not found")
		return
	}

	session, err := h.sessions.Join(r.Context(), sessionID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, session)
}

// Leave deactivates the caller's membership; idempotent
func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "user ID not found")
		return
	}

	if err := h.sessions.Leave(r.Context(), sessionID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "left session"})
}

// End marks the session ended; requires the moderate capability
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "user ID not found")
		return
	}

	if err := h.sessions.End(r.Context(), sessionID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "session ended"})
}

// Participants returns the active roster
func (h *SessionHandler) Participants(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	participants, err := h.sessions.Participants(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, participants)
}
