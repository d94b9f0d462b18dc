package assessments

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when an assessment cannot be located.
	ErrNotFound = errors.New("assessment not found")

	// ErrDuplicate is returned when an assessment name collides within
	// an organization.
	ErrDuplicate = errors.New("assessment already exists")

	// ErrInvalidStatus is returned for an unknown status value.
	ErrInvalidStatus = errors.New("invalid assessment status")

	// ErrNameRequired is returned when a create command omits the name.
	ErrNameRequired = errors.New("assessment name is required")

	// ErrOrganizationRequired is returned when a create command omits the
	// organization name.
	ErrOrganizationRequired = errors.New("organization name is required")
)

// MapHTTPStatus maps assessment domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrOrganizationRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
