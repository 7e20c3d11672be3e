package handlers

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/wordstreak-api/internal/streaks"
	log "github.com/sirupsen/logrus"
)

// APIError is the error body every operation returns: {"error": "..."}.
type APIError struct {
	Status  int      `json:"-"`
	Message string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) GetStatus() int {
	return e.Status
}

func init() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		// Request schema violations are client input errors like any other.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		apiErr := &APIError{Status: status, Message: message}
		for _, err := range errs {
			if err != nil {
				apiErr.Details = append(apiErr.Details, err.Error())
			}
		}
		return apiErr
	}
}

// engineError maps streak engine failures onto HTTP errors. Persistence
// failures are logged with their cause and reported with a generic message.
func engineError(op string, err error) error {
	var persistErr *streaks.PersistenceError
	switch {
	case errors.Is(err, streaks.ErrInvalidParticipant), errors.Is(err, streaks.ErrInvalidMonth):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, streaks.ErrParticipantNotFound):
		return huma.Error404NotFound("Participant not found")
	case errors.As(err, &persistErr):
		log.WithError(persistErr.Err).WithField("op", persistErr.Op).Error(op + " failed")
	default:
		log.WithError(err).Error(op + " failed")
	}
	return huma.Error500InternalServerError("Internal server error")
}
