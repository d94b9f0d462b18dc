package crosswalks

import (
	"context"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/pkg/pagination"
)

// System defines the public contract for crosswalk management.
type System interface {
	Handler() *Handler

	// Generate runs the candidate/classify/fuse/approve pipeline for a
	// framework pair and persists the surviving mappings.
	Generate(ctx context.Context, cmd GenerateCommand) ([]Crosswalk, error)

	// CreateManual creates an approved crosswalk with full confidence,
	// bypassing the generation pipeline.
	CreateManual(ctx context.Context, cmd ManualCommand) (*Crosswalk, error)

	// List returns a page of crosswalks matching the filters.
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Crosswalk], error)

	// Find returns a crosswalk by id.
	Find(ctx context.Context, id uuid.UUID) (*Crosswalk, error)

	// ForRequirement returns crosswalks touching a requirement as source,
	// target, or both.
	ForRequirement(ctx context.Context, requirementID uuid.UUID, asSource, asTarget bool, isApproved *bool) ([]Crosswalk, error)

	// Approve marks a pending crosswalk approved. Approving an already
	// approved crosswalk is a no-op that restamps the approver.
	Approve(ctx context.Context, id, approverID uuid.UUID) (*Crosswalk, error)

	// Reject deletes a crosswalk. Rejection is removal, not a state.
	Reject(ctx context.Context, id uuid.UUID) error

	// ApproveBulk approves a list of crosswalks, reporting per-item
	// outcomes without aborting on individual failures.
	ApproveBulk(ctx context.Context, ids []uuid.UUID, approverID uuid.UUID) []BulkResult

	// RejectBulk rejects a list of crosswalks, reporting per-item outcomes.
	RejectBulk(ctx context.Context, ids []uuid.UUID) []BulkResult

	// Equivalents returns the requirements connected to the source by
	// approved equivalent edges; transitive mode walks the full connected
	// component.
	Equivalents(ctx context.Context, requirementID uuid.UUID, transitive bool) ([]frameworks.Requirement, error)

	// Statistics summarizes the crosswalk corpus.
	Statistics(ctx context.Context) (*Statistics, error)
}
