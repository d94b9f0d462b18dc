package frameworks

import (
	"context"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/pagination"
)

// System defines the public contract for the requirement store.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Framework], error)

	Find(ctx context.Context, id uuid.UUID) (*Framework, error)
	FindByCode(ctx context.Context, code string) (*Framework, error)
	Load(ctx context.Context, def *Definition) (*Framework, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*Framework, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListRequirements(
		ctx context.Context,
		page pagination.PageRequest,
		filters RequirementFilters,
	) (*pagination.PageResult[Requirement], error)

	FindRequirement(ctx context.Context, id uuid.UUID) (*Requirement, error)

	// RequirementsByIDs returns the requirements for a set of ids; missing
	// ids are simply absent from the result.
	RequirementsByIDs(ctx context.Context, ids []uuid.UUID) ([]Requirement, error)

	Children(ctx context.Context, parentID uuid.UUID) ([]Requirement, error)
	Roots(ctx context.Context, frameworkID uuid.UUID) ([]Requirement, error)
	AtLevel(ctx context.Context, frameworkID uuid.UUID, level int) ([]Requirement, error)

	// Assessable returns assessable requirements, optionally scoped to the
	// given frameworks. Used by the similarity, scoring, and deviation engines.
	Assessable(ctx context.Context, frameworkIDs []uuid.UUID) ([]Requirement, error)

	// WithEmbeddings returns requirements carrying an embedding vector,
	// optionally scoped to frameworks and assessable nodes.
	WithEmbeddings(ctx context.Context, frameworkIDs []uuid.UUID, onlyAssessable bool) ([]Requirement, error)

	UpdateEmbedding(ctx context.Context, requirementID uuid.UUID, embedding []float64) error

	// MissingEmbeddings returns requirements without an embedding,
	// optionally scoped to one framework.
	MissingEmbeddings(ctx context.Context, frameworkID *uuid.UUID) ([]Requirement, error)
}
