package similarity

import (
	"errors"
	"net/http"

	"github.com/concordsec/concord/internal/embeddings"
	"github.com/concordsec/concord/internal/frameworks"
)

// ErrEmptyQuery is returned when a text search is requested without text.
var ErrEmptyQuery = errors.New("search text is required")

// MapHTTPStatus maps similarity domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, frameworks.ErrRequirementNotFound) || errors.Is(err, frameworks.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrEmptyQuery) {
		return http.StatusBadRequest
	}
	if errors.Is(err, embeddings.ErrProviderUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
