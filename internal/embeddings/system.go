package embeddings

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for embedding operations.
type System interface {
	Handler() *Handler

	// EmbedRequirement generates and stores the embedding for one
	// requirement. Existing embeddings are kept unless force is set.
	EmbedRequirement(ctx context.Context, requirementID uuid.UUID, force bool) ([]float64, error)

	// EmbedAll generates embeddings for every requirement missing one
	// (or all of them when force is set), optionally scoped to a framework.
	// Work is chunked; a failed chunk is counted and skipped, not fatal.
	EmbedAll(ctx context.Context, frameworkID *uuid.UUID, force bool) (*BatchStats, error)
}
