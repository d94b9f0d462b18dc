package frameworks

import (
	"errors"
	"net/http"
)

// Domain errors for framework and requirement operations.
var (
	ErrNotFound          = errors.New("framework not found")
	ErrRequirementNotFound = errors.New("requirement not found")
	ErrDuplicate         = errors.New("framework already exists")
	ErrBuiltin           = errors.New("builtin frameworks cannot be deleted")
	ErrInvalidDefinition = errors.New("invalid framework definition")
)

// MapHTTPStatus maps framework domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrRequirementNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrBuiltin) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidDefinition) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
