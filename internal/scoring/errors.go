package scoring

import (
	"errors"
	"net/http"

	"github.com/concordsec/concord/internal/assessments"
)

// ErrNotFound is returned when a score row cannot be located.
var ErrNotFound = errors.New("score not found")

// MapHTTPStatus maps scoring errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, assessments.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
