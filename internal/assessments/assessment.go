package assessments

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Assessment status constants.
const (
	StatusDraft      = "draft"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusCompleted  = "completed"
	StatusArchived   = "archived"
)

// Statuses lists every valid assessment status.
var Statuses = []string{
	StatusDraft,
	StatusInProgress,
	StatusReview,
	StatusCompleted,
	StatusArchived,
}

// ValidStatus reports whether s is a known assessment status.
func ValidStatus(s string) bool {
	return slices.Contains(Statuses, s)
}

// Assessment is one maturity evaluation of an organization against a set
// of frameworks. Scores, deviations, artifacts, and interview sessions all
// hang off an assessment.
type Assessment struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	Description      *string     `json:"description,omitempty"`
	OrganizationName string      `json:"organization_name"`
	Status           string      `json:"status"`
	FrameworkIDs     []uuid.UUID `json:"framework_ids"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// CreateCommand holds the fields for creating an assessment.
type CreateCommand struct {
	Name             string      `json:"name"`
	Description      *string     `json:"description,omitempty"`
	OrganizationName string      `json:"organization_name"`
	FrameworkIDs     []uuid.UUID `json:"framework_ids"`
}

// UpdateCommand holds the mutable fields of an assessment. Nil fields are
// left unchanged.
type UpdateCommand struct {
	Name             *string      `json:"name,omitempty"`
	Description      *string      `json:"description,omitempty"`
	OrganizationName *string      `json:"organization_name,omitempty"`
	FrameworkIDs     *[]uuid.UUID `json:"framework_ids,omitempty"`
}
