package interviews

import (
	"errors"
	"net/http"

	"github.com/concordsec/concord/internal/assessments"
	"github.com/concordsec/concord/internal/clusters"
	"github.com/concordsec/concord/internal/frameworks"
)

var (
	// ErrQuestionNotFound is returned when a question cannot be located.
	ErrQuestionNotFound = errors.New("interview question not found")

	// ErrSessionNotFound is returned when a session cannot be located.
	ErrSessionNotFound = errors.New("interview session not found")

	// ErrDuplicate is returned on unique constraint collisions.
	ErrDuplicate = errors.New("interview record already exists")

	// ErrInvalidQuestionType is returned for an unknown question type.
	ErrInvalidQuestionType = errors.New("invalid question type")

	// ErrInvalidSessionStatus is returned for an unknown session status.
	ErrInvalidSessionStatus = errors.New("invalid session status")

	// ErrQuestionTarget is returned when a question targets neither or
	// both of a requirement and a cluster.
	ErrQuestionTarget = errors.New("question must target exactly one requirement or cluster")

	// ErrTextRequired is returned when a question has no text.
	ErrTextRequired = errors.New("question text is required")
)

// MapHTTPStatus maps interview domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, assessments.ErrNotFound),
		errors.Is(err, clusters.ErrNotFound),
		errors.Is(err, frameworks.ErrRequirementNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidQuestionType),
		errors.Is(err, ErrInvalidSessionStatus),
		errors.Is(err, ErrQuestionTarget),
		errors.Is(err, ErrTextRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
