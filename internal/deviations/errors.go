package deviations

import (
	"errors"
	"net/http"

	"github.com/concordsec/concord/internal/assessments"
)

var (
	// ErrNotFound is returned when a deviation cannot be located.
	ErrNotFound = errors.New("deviation not found")

	// ErrInvalidStatus is returned for an unknown deviation status.
	ErrInvalidStatus = errors.New("invalid deviation status")

	// ErrInvalidTransition is returned when a status change is not allowed
	// from the deviation's current state.
	ErrInvalidTransition = errors.New("invalid deviation status transition")
)

// MapHTTPStatus maps deviation domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, assessments.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
