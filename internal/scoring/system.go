package scoring

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for the scoring engine.
type System interface {
	Handler() *Handler

	// CalculateAll recomputes every assessable leaf score for the
	// assessment, then rolls intermediate levels and roots up bottom-up.
	// All score writes for one run commit in a single transaction.
	CalculateAll(ctx context.Context, assessmentID uuid.UUID) (*CalculationResult, error)

	// Summary returns the latest computed root-level scores. An assessment
	// that has never been scored yields zeros and an empty list.
	Summary(ctx context.Context, assessmentID uuid.UUID) (*Summary, error)

	// ScoresFor returns every persisted score row for the assessment,
	// ordered by level then requirement code.
	ScoresFor(ctx context.Context, assessmentID uuid.UUID) ([]Score, error)

	// GatherEvidence collects and interprets the evidence for one
	// requirement without persisting anything. The deviation engine reads
	// the same evidence the rubric scores.
	GatherEvidence(ctx context.Context, assessmentID, requirementID uuid.UUID) (*GatheredEvidence, error)
}
