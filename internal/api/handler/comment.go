package handler

import (
	"encoding/json"
	"net/http"

	"github.com/loadline/collab/internal/api/middleware"
	"github.com/loadline/collab/internal/api/response"
	"github.com/loadline/collab/internal/service"
)

// CommentHandler serves the comment endpoints
type CommentHandler struct {
	collab *service.CollabService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(collab *service.CollabService) *CommentHandler {
	return &CommentHandler{collab: collab}
}

// Create persists a new comment authored by the caller
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "user ID not found")
		return
	}

	var input service.CommentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, "content is required")
		return
	}

	comment, err := h.collab.CreateComment(r.Context(), sessionID, userID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, comment)
}

// List returns every comment of the session
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	comments, err := h.collab.ListComments(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, comments)
}
