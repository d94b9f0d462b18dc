package crosswalks

import (
	"errors"
	"net/http"

	"github.com/concordsec/concord/internal/frameworks"
)

var (
	// ErrNotFound is returned when a crosswalk cannot be located.
	ErrNotFound = errors.New("crosswalk not found")

	// ErrDuplicate is returned when a crosswalk for the same ordered
	// requirement pair already exists.
	ErrDuplicate = errors.New("crosswalk already exists for this requirement pair")

	// ErrInvalidMappingType is returned when a command carries an unknown
	// mapping type.
	ErrInvalidMappingType = errors.New("invalid mapping type")

	// ErrSelfMapping is returned when a manual crosswalk maps a requirement
	// to itself.
	ErrSelfMapping = errors.New("requirement cannot map to itself")
)

// MapHTTPStatus maps crosswalk domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, frameworks.ErrRequirementNotFound),
		errors.Is(err, frameworks.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidMappingType), errors.Is(err, ErrSelfMapping):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
