package similarity

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for similarity searches over
// requirement embeddings.
type System interface {
	Handler() *Handler

	// FindSimilar ranks requirements similar to the given one. A source
	// without an embedding produces an empty result, not an error.
	FindSimilar(ctx context.Context, requirementID uuid.UUID, opts Options) ([]Match, error)

	// FindSimilarToText embeds free text and ranks requirements against it.
	FindSimilarToText(ctx context.Context, text string, opts Options) ([]Match, error)

	// BuildMatrix computes the pairwise similarity matrix for the
	// assessable, embedded requirements of the given frameworks.
	BuildMatrix(ctx context.Context, frameworkIDs []uuid.UUID, onlyAssessable bool, threshold float64) (*Matrix, error)

	// CrossFrameworkCandidates ranks target-framework requirements against
	// each source-framework requirement, keeping the top matches at or
	// above threshold.
	CrossFrameworkCandidates(ctx context.Context, sourceFrameworkID, targetFrameworkID uuid.UUID, threshold float64, topK int) ([]Candidate, error)
}
