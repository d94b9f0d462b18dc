package crosswalks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/internal/similarity"
	"github.com/concordsec/concord/pkg/pagination"
	"github.com/concordsec/concord/pkg/query"
	"github.com/concordsec/concord/pkg/repository"
)

const returningColumns = `id, source_requirement_id, target_requirement_id, mapping_type,
		confidence_score, mapping_source, reasoning, is_approved,
		approved_by_id, approved_at, created_at, updated_at`

type repo struct {
	db         *sql.DB
	store      frameworks.System
	sim        similarity.System
	oracle     Oracle
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a crosswalk repository implementing the System interface.
// A nil oracle disables classification regardless of command settings.
func New(
	db *sql.DB,
	store frameworks.System,
	sim similarity.System,
	oracle Oracle,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		store:      store,
		sim:        sim,
		oracle:     oracle,
		logger:     logger.With("system", "crosswalks"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Generate(ctx context.Context, cmd GenerateCommand) ([]Crosswalk, error) {
	cmd.normalize()

	candidates, err := r.sim.CrossFrameworkCandidates(
		ctx,
		cmd.SourceFrameworkID,
		cmd.TargetFrameworkID,
		cmd.SimilarityThreshold,
		cmd.TopKPerRequirement,
	)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []Crosswalk{}, nil
	}

	classify := cmd.validateEnabled() && r.oracle != nil
	created := make([]Crosswalk, 0, len(candidates))

	for i := range candidates {
		candidate := &candidates[i]

		exists, err := r.pairExists(ctx, candidate.Source.ID, candidate.Target.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		mappingType := MappingRelated
		confidence := candidate.Similarity
		var reasoning *string

		if classify {
			verdict, err := r.oracle.Classify(ctx, &candidate.Source, &candidate.Target)
			switch {
			case err != nil:
				// A failed classification falls back to similarity alone;
				// one bad call must not abort the pass.
				r.logger.Warn("classification failed",
					"source", candidate.Source.Code,
					"target", candidate.Target.Code,
					"error", err,
				)
			case verdict.MappingType == verdictNone:
				continue
			default:
				mappingType = verdict.MappingType
				confidence = (candidate.Similarity + verdict.Confidence) / 2
				reasoning = verdict.Reasoning
			}
		}

		cw, err := r.insert(ctx, &Crosswalk{
			SourceRequirementID: candidate.Source.ID,
			TargetRequirementID: candidate.Target.ID,
			MappingType:         mappingType,
			ConfidenceScore:     confidence,
			MappingSource:       SourceAIGenerated,
			Reasoning:           reasoning,
			IsApproved:          confidence >= cmd.AutoApproveThreshold,
		}, nil)
		if err != nil {
			if errors.Is(err, ErrDuplicate) {
				continue
			}
			return nil, err
		}
		created = append(created, *cw)
	}

	r.logger.Info("crosswalks generated",
		"source_framework", cmd.SourceFrameworkID,
		"target_framework", cmd.TargetFrameworkID,
		"candidates", len(candidates),
		"created", len(created),
	)
	return created, nil
}

func (r *repo) pairExists(ctx context.Context, sourceID, targetID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM requirement_crosswalks
			WHERE source_requirement_id = $1 AND target_requirement_id = $2
		)`,
		sourceID, targetID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existing crosswalk: %w", err)
	}
	return exists, nil
}

func (r *repo) insert(ctx context.Context, cw *Crosswalk, approverID *uuid.UUID) (*Crosswalk, error) {
	insertQ := fmt.Sprintf(`
		INSERT INTO requirement_crosswalks(
			source_requirement_id, target_requirement_id, mapping_type,
			confidence_score, mapping_source, reasoning, is_approved,
			approved_by_id, approved_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
				CASE WHEN $7 THEN NOW() ELSE NULL END)
		RETURNING %s`, returningColumns)

	created, err := repository.QueryOne(ctx, r.db, insertQ, []any{
		cw.SourceRequirementID,
		cw.TargetRequirementID,
		cw.MappingType,
		cw.ConfidenceScore,
		cw.MappingSource,
		cw.Reasoning,
		cw.IsApproved,
		approverID,
	}, scanCrosswalk)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &created, nil
}

func (r *repo) CreateManual(ctx context.Context, cmd ManualCommand) (*Crosswalk, error) {
	if !slices.Contains(MappingTypes, cmd.MappingType) {
		return nil, ErrInvalidMappingType
	}
	if cmd.SourceRequirementID == cmd.TargetRequirementID {
		return nil, ErrSelfMapping
	}

	if _, err := r.store.FindRequirement(ctx, cmd.SourceRequirementID); err != nil {
		return nil, err
	}
	if _, err := r.store.FindRequirement(ctx, cmd.TargetRequirementID); err != nil {
		return nil, err
	}

	cw, err := r.insert(ctx, &Crosswalk{
		SourceRequirementID: cmd.SourceRequirementID,
		TargetRequirementID: cmd.TargetRequirementID,
		MappingType:         cmd.MappingType,
		ConfidenceScore:     1.0,
		MappingSource:       SourceManual,
		Reasoning:           cmd.Reasoning,
		IsApproved:          true,
	}, cmd.CreatedByID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("manual crosswalk created",
		"id", cw.ID,
		"source", cw.SourceRequirementID,
		"target", cw.TargetRequirementID,
		"mapping_type", cw.MappingType,
	)
	return cw, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Crosswalk], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count crosswalks: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanCrosswalk)
	if err != nil {
		return nil, fmt.Errorf("query crosswalks: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Crosswalk, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	cw, err := repository.QueryOne(ctx, r.db, q, args, scanCrosswalk)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &cw, nil
}

func (r *repo) ForRequirement(
	ctx context.Context,
	requirementID uuid.UUID,
	asSource, asTarget bool,
	isApproved *bool,
) ([]Crosswalk, error) {
	if !asSource && !asTarget {
		return []Crosswalk{}, nil
	}

	qb := query.NewBuilder(projection, defaultSort)

	switch {
	case asSource && asTarget:
		qb.WhereClause(
			"(cw.source_requirement_id = $%d OR cw.target_requirement_id = $%d)",
			requirementID, requirementID,
		)
	case asSource:
		qb.WhereEquals("SourceRequirementID", requirementID)
	default:
		qb.WhereEquals("TargetRequirementID", requirementID)
	}

	qb.WhereEquals("IsApproved", isApproved)

	q, args := qb.Build()
	return repository.QueryMany(ctx, r.db, q, args, scanCrosswalk)
}

func (r *repo) Approve(ctx context.Context, id, approverID uuid.UUID) (*Crosswalk, error) {
	updateQ := fmt.Sprintf(`
		UPDATE requirement_crosswalks
		SET is_approved = TRUE, approved_by_id = $1, approved_at = NOW(), updated_at = NOW()
		WHERE id = $2
		RETURNING %s`, returningColumns)

	cw, err := repository.QueryOne(ctx, r.db, updateQ, []any{approverID, id}, scanCrosswalk)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("crosswalk approved", "id", cw.ID, "approved_by", approverID)
	return &cw, nil
}

func (r *repo) Reject(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM requirement_crosswalks WHERE id = $1",
		id,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("crosswalk rejected", "id", id)
	return nil
}

func (r *repo) ApproveBulk(ctx context.Context, ids []uuid.UUID, approverID uuid.UUID) []BulkResult {
	results := make([]BulkResult, len(ids))
	for i, id := range ids {
		results[i] = BulkResult{ID: id, OK: true}
		if _, err := r.Approve(ctx, id, approverID); err != nil {
			results[i].OK = false
			results[i].Error = err.Error()
		}
	}
	return results
}

func (r *repo) RejectBulk(ctx context.Context, ids []uuid.UUID) []BulkResult {
	results := make([]BulkResult, len(ids))
	for i, id := range ids {
		results[i] = BulkResult{ID: id, OK: true}
		if err := r.Reject(ctx, id); err != nil {
			results[i].OK = false
			results[i].Error = err.Error()
		}
	}
	return results
}

func (r *repo) Equivalents(ctx context.Context, requirementID uuid.UUID, transitive bool) ([]frameworks.Requirement, error) {
	approved := true

	neighbors := func(id uuid.UUID) ([]uuid.UUID, error) {
		edges, err := r.ForRequirement(ctx, id, true, true, &approved)
		if err != nil {
			return nil, err
		}

		var others []uuid.UUID
		for _, cw := range edges {
			if cw.MappingType != MappingEquivalent {
				continue
			}
			if cw.SourceRequirementID == id {
				others = append(others, cw.TargetRequirementID)
			} else {
				others = append(others, cw.SourceRequirementID)
			}
		}
		return others, nil
	}

	ids, err := walkEquivalents(requirementID, transitive, neighbors)
	if err != nil {
		return nil, err
	}

	return r.store.RequirementsByIDs(ctx, ids)
}

// walkEquivalents collects the requirements reachable from the source over
// approved equivalent edges. Direct mode stops at one hop; transitive mode
// runs a breadth-first traversal with a visited set so cycles terminate.
// The source itself is never part of the result.
func walkEquivalents(
	sourceID uuid.UUID,
	transitive bool,
	neighbors func(uuid.UUID) ([]uuid.UUID, error),
) ([]uuid.UUID, error) {
	direct, err := neighbors(sourceID)
	if err != nil {
		return nil, err
	}

	equivalent := make(map[uuid.UUID]struct{}, len(direct))
	for _, id := range direct {
		if id != sourceID {
			equivalent[id] = struct{}{}
		}
	}

	if transitive {
		visited := map[uuid.UUID]struct{}{sourceID: {}}
		for id := range equivalent {
			visited[id] = struct{}{}
		}

		queue := direct
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			next, err := neighbors(current)
			if err != nil {
				return nil, err
			}
			for _, id := range next {
				if _, seen := visited[id]; seen {
					continue
				}
				visited[id] = struct{}{}
				equivalent[id] = struct{}{}
				queue = append(queue, id)
			}
		}
	}

	ids := make([]uuid.UUID, 0, len(equivalent))
	for id := range equivalent {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *repo) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{
		ByType:   make(map[string]int),
		BySource: make(map[string]int),
	}
	for _, t := range MappingTypes {
		stats.ByType[t] = 0
	}
	for _, s := range MappingSources {
		stats.BySource[s] = 0
	}

	var avg float64
	summaryQ := `
		SELECT COUNT(*),
			   COUNT(*) FILTER (WHERE is_approved),
			   COALESCE(AVG(confidence_score), 0)
		FROM requirement_crosswalks`
	if err := r.db.QueryRowContext(ctx, summaryQ).Scan(
		&stats.TotalCrosswalks, &stats.Approved, &avg,
	); err != nil {
		return nil, fmt.Errorf("crosswalk summary: %w", err)
	}

	stats.PendingReview = stats.TotalCrosswalks - stats.Approved
	stats.AverageConfidence = math.Round(avg*1000) / 1000

	tally := func(column string, into map[string]int) error {
		rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
			"SELECT %s, COUNT(*) FROM requirement_crosswalks GROUP BY %s",
			column, column,
		))
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var key string
			var count int
			if err := rows.Scan(&key, &count); err != nil {
				return err
			}
			into[key] = count
		}
		return rows.Err()
	}

	if err := tally("mapping_type", stats.ByType); err != nil {
		return nil, fmt.Errorf("crosswalks by type: %w", err)
	}
	if err := tally("mapping_source", stats.BySource); err != nil {
		return nil, fmt.Errorf("crosswalks by source: %w", err)
	}

	return stats, nil
}
