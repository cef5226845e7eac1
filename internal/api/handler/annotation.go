package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/loadline/collab/internal/api/middleware"
	"github.com/loadline/collab/internal/api/response"
	"github.com/loadline/collab/internal/domain"
	"github.com/loadline/collab/internal/service"
)

// AnnotationHandler serves the annotation endpoints
type AnnotationHandler struct {
	collab *service.CollabService
}

// NewAnnotationHandler creates a new annotation handler
func NewAnnotationHandler(collab *service.CollabService) *AnnotationHandler {
	return &AnnotationHandler{collab: collab}
}

// Create persists a new annotation authored by the caller
func (h *AnnotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "user ID not found")
		return
	}

	var input service.AnnotationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, "annotation_type is required")
		return
	}

	annotation, err := h.collab.CreateAnnotation(r.Context(), sessionID, userID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, annotation)
}

// List returns the visible annotations of the session
func (h *AnnotationHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	annotations, err := h.collab.ListAnnotations(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, annotations)
}

// Update applies a partial edit to an annotation
func (h *AnnotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "user ID not found")
		return
	}

	annotationID, err := uuid.Parse(chi.URLParam(r, "annotationID"))
	if err != nil {
		response.BadRequest(w, "invalid annotation ID")
		return
	}

	var update domain.AnnotationUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	annotation, err := h.collab.UpdateAnnotation(r.Context(), sessionID, annotationID, userID, update)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, annotation)
}

// Delete soft-deletes an annotation by hiding it
func (h *AnnotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "user ID not found")
		return
	}

	annotationID, err := uuid.Parse(chi.URLParam(r, "annotationID"))
	if err != nil {
		response.BadRequest(w, "invalid annotation ID")
		return
	}

	if err := h.collab.HideAnnotation(r.Context(), sessionID, annotationID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "annotation hidden"})
}
