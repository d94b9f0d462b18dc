package deviations

import (
	"context"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/pagination"
)

// System defines the public contract for the deviation engine.
type System interface {
	Handler() *Handler

	// DetectAll evaluates every assessable requirement in the assessment's
	// scope against the deviation rules. Detection is idempotent: an open
	// deviation of the same type for the same requirement is updated in
	// place rather than duplicated.
	DetectAll(ctx context.Context, assessmentID uuid.UUID) ([]Deviation, error)

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Deviation], error)
	Find(ctx context.Context, id uuid.UUID) (*Deviation, error)

	// SetStatus transitions a deviation's lifecycle state, stamping
	// resolved_at when it enters a terminal state.
	SetStatus(ctx context.Context, id uuid.UUID, status string, notes *string) (*Deviation, error)

	// RiskSummary aggregates severity counts, mean risk, the five highest
	// risk deviations, and mean risk per root function.
	RiskSummary(ctx context.Context, assessmentID uuid.UUID) (*RiskSummary, error)
}
