package embeddings

import (
	"errors"
	"net/http"

	"github.com/concordsec/concord/internal/frameworks"
)

// ErrProviderUnavailable is returned when the embedding endpoint cannot be
// reached after bounded retries.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// MapHTTPStatus maps embedding domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, frameworks.ErrRequirementNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrProviderUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
