// Package embeddings provides access to a text-embedding provider and the
// batch operations that populate requirement embedding vectors.
package embeddings

import (
	"context"
	"fmt"
	"strings"

	"github.com/concordsec/concord/internal/frameworks"
)

// Provider generates embedding vectors for text. EmbedBatch preserves input
// order regardless of the order the provider returns results in.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// PrepareRequirementText combines a requirement's code, name, description,
// and guidance into a single text optimized for semantic matching.
func PrepareRequirementText(r *frameworks.Requirement) string {
	parts := []string{r.Code}

	if r.Name != "" && r.Name != r.Code {
		parts = append(parts, r.Name)
	}
	if r.Description != nil && *r.Description != "" {
		parts = append(parts, *r.Description)
	}
	if r.Guidance != nil && *r.Guidance != "" {
		parts = append(parts, fmt.Sprintf("Implementation guidance: %s", *r.Guidance))
	}

	return strings.Join(parts, " | ")
}

// Truncate deterministically bounds text to maxChars before an embedding call.
func Truncate(text string, maxChars int) string {
	if maxChars > 0 && len(text) > maxChars {
		return text[:maxChars]
	}
	return text
}

// BatchStats reports the outcome of a bulk embedding run. Failed batches are
// isolated; a provider outage on one chunk does not abort the rest.
type BatchStats struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}
