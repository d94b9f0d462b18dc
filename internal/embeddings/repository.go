package embeddings

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/concordsec/concord/internal/frameworks"
)

const maxConcurrentBatches = 2

type repo struct {
	store     frameworks.System
	provider  Provider
	logger    *slog.Logger
	batchSize int
}

// New creates an embedding system over the requirement store and a provider.
func New(store frameworks.System, provider Provider, batchSize int, logger *slog.Logger) System {
	if batchSize < 1 {
		batchSize = 100
	}
	return &repo{
		store:     store,
		provider:  provider,
		logger:    logger.With("system", "embeddings"),
		batchSize: batchSize,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) EmbedRequirement(ctx context.Context, requirementID uuid.UUID, force bool) ([]float64, error) {
	req, err := r.store.FindRequirement(ctx, requirementID)
	if err != nil {
		return nil, err
	}

	if len(req.Embedding) > 0 && !force {
		return req.Embedding, nil
	}

	vector, err := r.provider.Embed(ctx, PrepareRequirementText(req))
	if err != nil {
		return nil, err
	}

	if err := r.store.UpdateEmbedding(ctx, requirementID, vector); err != nil {
		return nil, err
	}

	r.logger.Info("requirement embedded", "id", requirementID, "dimensions", len(vector))
	return vector, nil
}

func (r *repo) EmbedAll(ctx context.Context, frameworkID *uuid.UUID, force bool) (*BatchStats, error) {
	var reqs []frameworks.Requirement
	var err error

	if force {
		var ids []uuid.UUID
		if frameworkID != nil {
			ids = []uuid.UUID{*frameworkID}
		}
		reqs, err = r.store.WithEmbeddings(ctx, ids, false)
		if err != nil {
			return nil, err
		}
		missing, err := r.store.MissingEmbeddings(ctx, frameworkID)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, missing...)
	} else {
		reqs, err = r.store.MissingEmbeddings(ctx, frameworkID)
		if err != nil {
			return nil, err
		}
	}

	stats := &BatchStats{}
	if len(reqs) == 0 {
		return stats, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBatches)

	for start := 0; start < len(reqs); start += r.batchSize {
		end := min(start+r.batchSize, len(reqs))
		batch := reqs[start:end]

		g.Go(func() error {
			texts := make([]string, len(batch))
			for i := range batch {
				texts[i] = PrepareRequirementText(&batch[i])
			}

			vectors, err := r.provider.EmbedBatch(gctx, texts)
			if err != nil {
				r.logger.Error("embedding batch failed", "size", len(batch), "error", err)
				mu.Lock()
				stats.Failed += len(batch)
				mu.Unlock()
				return nil
			}

			for i := range batch {
				if err := r.store.UpdateEmbedding(gctx, batch[i].ID, vectors[i]); err != nil {
					r.logger.Error("store embedding failed", "id", batch[i].ID, "error", err)
					mu.Lock()
					stats.Failed++
					mu.Unlock()
					continue
				}
				mu.Lock()
				stats.Processed++
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Info("bulk embedding complete",
		"processed", stats.Processed,
		"failed", stats.Failed,
	)
	return stats, nil
}
