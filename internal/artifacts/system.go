package artifacts

import (
	"context"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/pagination"
)

// System defines the public contract for artifact evidence management.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Artifact], error)
	Find(ctx context.Context, id uuid.UUID) (*Artifact, error)
	Create(ctx context.Context, cmd CreateCommand) (*Artifact, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Map links an artifact to a requirement it evidences. Mappings start
	// unapproved and only count as evidence once approved.
	Map(ctx context.Context, cmd MapCommand) (*Mapping, error)

	// Mappings returns the mappings of one artifact.
	Mappings(ctx context.Context, artifactID uuid.UUID) ([]Mapping, error)

	// ApproveMapping marks a mapping approved.
	ApproveMapping(ctx context.Context, id, approverID uuid.UUID) (*Mapping, error)

	// RejectMapping deletes a mapping.
	RejectMapping(ctx context.Context, id uuid.UUID) error

	// ApproveMappingsBulk approves a list of mappings with per-item outcomes.
	ApproveMappingsBulk(ctx context.Context, ids []uuid.UUID, approverID uuid.UUID) []BulkResult

	// RejectMappingsBulk rejects a list of mappings with per-item outcomes.
	RejectMappingsBulk(ctx context.Context, ids []uuid.UUID) []BulkResult

	// ApprovedForRequirement returns the approved mappings evidencing a
	// requirement within an assessment, joined with artifact kind and name.
	// This is the evidence feed for scoring and deviation detection.
	ApprovedForRequirement(ctx context.Context, assessmentID, requirementID uuid.UUID) ([]MappingDetail, error)
}
