package handler

import (
	"errors"
	"net/http"

	"github.com/loadline/collab/internal/api/response"
	"github.com/loadline/collab/internal/domain"
	"github.com/rs/zerolog/log"
)

// writeServiceError maps domain errors onto HTTP statuses. Anything not in
// the taxonomy is a 500 with the detail kept out of the response body.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidResourceRef):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrAnnotationNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrSessionInactive):
		response.Conflict(w, err.Error())
	case errors.Is(err, domain.ErrNotParticipant), errors.Is(err, domain.ErrPermissionDenied):
		response.Forbidden(w, err.Error())
	case errors.Is(err, domain.ErrInvalidReference):
		response.BadRequest(w, err.Error())
	default:
		log.Error().Err(err).Msg("Request failed")
		response.InternalError(w, "internal error")
	}
}
