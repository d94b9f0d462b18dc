package similarity

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/concordsec/concord/internal/embeddings"
	"github.com/concordsec/concord/internal/frameworks"
)

const maxConcurrentRankings = 4

type service struct {
	store    frameworks.System
	provider embeddings.Provider
	logger   *slog.Logger
}

// New creates a similarity system over the requirement store and an
// embedding provider for free-text queries.
func New(store frameworks.System, provider embeddings.Provider, logger *slog.Logger) System {
	return &service{
		store:    store,
		provider: provider,
		logger:   logger.With("system", "similarity"),
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) FindSimilar(ctx context.Context, requirementID uuid.UUID, opts Options) ([]Match, error) {
	opts = opts.normalize()

	source, err := s.store.FindRequirement(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	if len(source.Embedding) == 0 {
		return []Match{}, nil
	}

	candidates, err := s.store.WithEmbeddings(ctx, opts.FrameworkIDs, opts.OnlyAssessable)
	if err != nil {
		return nil, err
	}

	matches := rank(source.Embedding, candidates, opts, func(c *frameworks.Requirement) bool {
		if c.ID == source.ID {
			return false
		}
		if opts.ExcludeSameFramework && c.FrameworkID == source.FrameworkID {
			return false
		}
		return true
	})
	return matches, nil
}

func (s *service) FindSimilarToText(ctx context.Context, text string, opts Options) ([]Match, error) {
	opts = opts.normalize()

	query, err := s.provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.WithEmbeddings(ctx, opts.FrameworkIDs, opts.OnlyAssessable)
	if err != nil {
		return nil, err
	}

	return rank(query, candidates, opts, nil), nil
}

func (s *service) BuildMatrix(ctx context.Context, frameworkIDs []uuid.UUID, onlyAssessable bool, threshold float64) (*Matrix, error) {
	reqs, err := s.store.WithEmbeddings(ctx, frameworkIDs, onlyAssessable)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float64, len(reqs))
	for i := range reqs {
		vectors[i] = reqs[i].Embedding
	}

	return &Matrix{
		Requirements: reqs,
		Values:       BuildMatrix(vectors, threshold),
	}, nil
}

func (s *service) CrossFrameworkCandidates(ctx context.Context, sourceFrameworkID, targetFrameworkID uuid.UUID, threshold float64, topK int) ([]Candidate, error) {
	opts := Options{Threshold: threshold, TopK: topK}.normalize()

	sources, err := s.store.WithEmbeddings(ctx, []uuid.UUID{sourceFrameworkID}, true)
	if err != nil {
		return nil, err
	}
	targets, err := s.store.WithEmbeddings(ctx, []uuid.UUID{targetFrameworkID}, true)
	if err != nil {
		return nil, err
	}

	// Each source is ranked independently, so the comparisons parallelize
	// cleanly across sources.
	ranked := make([][]Match, len(sources))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRankings)

	for i := range sources {
		g.Go(func() error {
			ranked[i] = rank(sources[i].Embedding, targets, opts, nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var candidates []Candidate
	for i := range sources {
		for _, m := range ranked[i] {
			candidates = append(candidates, Candidate{
				Source:     sources[i],
				Target:     m.Requirement,
				Similarity: m.Score,
			})
		}
	}

	s.logger.Info("cross-framework candidates generated",
		"source_framework", sourceFrameworkID,
		"target_framework", targetFrameworkID,
		"candidates", len(candidates),
	)
	return candidates, nil
}

// rank scores candidates against a query vector, keeping those at or above
// the threshold, sorted descending and truncated to topK. A nil keep
// function admits every candidate.
func rank(query []float64, candidates []frameworks.Requirement, opts Options, keep func(*frameworks.Requirement) bool) []Match {
	matches := []Match{}
	for i := range candidates {
		if keep != nil && !keep(&candidates[i]) {
			continue
		}
		score := Cosine(query, candidates[i].Embedding)
		if score >= opts.Threshold {
			matches = append(matches, Match{Requirement: candidates[i], Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > opts.TopK {
		matches = matches[:opts.TopK]
	}
	return matches
}
