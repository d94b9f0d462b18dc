package artifacts

import (
	"errors"
	"net/http"

	"github.com/concordsec/concord/internal/assessments"
	"github.com/concordsec/concord/internal/frameworks"
)

var (
	// ErrNotFound is returned when an artifact cannot be located.
	ErrNotFound = errors.New("artifact not found")

	// ErrMappingNotFound is returned when a mapping cannot be located.
	ErrMappingNotFound = errors.New("artifact mapping not found")

	// ErrDuplicate is returned when an artifact-requirement pair is
	// already mapped.
	ErrDuplicate = errors.New("artifact is already mapped to this requirement")

	// ErrInvalidKind is returned for an unknown artifact kind.
	ErrInvalidKind = errors.New("invalid artifact kind")

	// ErrNameRequired is returned when a create command omits the name.
	ErrNameRequired = errors.New("artifact name is required")
)

// MapHTTPStatus maps artifact domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrMappingNotFound),
		errors.Is(err, assessments.ErrNotFound),
		errors.Is(err, frameworks.ErrRequirementNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidKind), errors.Is(err, ErrNameRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
