package clusters

import (
	"errors"
	"net/http"

	"github.com/concordsec/concord/internal/frameworks"
)

var (
	// ErrNotFound is returned when a cluster cannot be located.
	ErrNotFound = errors.New("cluster not found")

	// ErrNotClustered is returned when a requirement belongs to no cluster.
	ErrNotClustered = errors.New("requirement is not in a cluster")

	// ErrDuplicate is returned when a cluster member would be duplicated.
	ErrDuplicate = errors.New("requirement is already a cluster member")

	// ErrInvalidType is returned for an unknown cluster type.
	ErrInvalidType = errors.New("invalid cluster type")
)

// MapHTTPStatus maps cluster domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrNotClustered),
		errors.Is(err, frameworks.ErrRequirementNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
