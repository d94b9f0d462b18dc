package artifacts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/pagination"
	"github.com/concordsec/concord/pkg/query"
	"github.com/concordsec/concord/pkg/repository"
)

const mappingColumns = `id, artifact_id, requirement_id, confidence_score,
		is_approved, approved_by_id, approved_at, created_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an artifact repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "artifacts"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Artifact], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count artifacts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanArtifact)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Artifact, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanArtifact)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Artifact, error) {
	if !slices.Contains(Kinds, cmd.Kind) {
		return nil, ErrInvalidKind
	}
	if cmd.Name == "" {
		return nil, ErrNameRequired
	}

	insertQ := `
		INSERT INTO artifacts(assessment_id, kind, name, description, version, owner, content_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, assessment_id, kind, name, description, version, owner,
				  content_text, created_at, updated_at`

	a, err := repository.QueryOne(ctx, r.db, insertQ, []any{
		cmd.AssessmentID,
		cmd.Kind,
		cmd.Name,
		cmd.Description,
		cmd.Version,
		cmd.Owner,
		cmd.ContentText,
	}, scanArtifact)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("artifact created", "id", a.ID, "kind", a.Kind, "name", a.Name)
	return &a, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM artifacts WHERE id = $1",
		id,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("artifact deleted", "id", id)
	return nil
}

func (r *repo) Map(ctx context.Context, cmd MapCommand) (*Mapping, error) {
	if _, err := r.Find(ctx, cmd.ArtifactID); err != nil {
		return nil, err
	}

	insertQ := fmt.Sprintf(`
		INSERT INTO artifact_mappings(artifact_id, requirement_id, confidence_score)
		VALUES ($1, $2, $3)
		RETURNING %s`, mappingColumns)

	m, err := repository.QueryOne(ctx, r.db, insertQ, []any{
		cmd.ArtifactID,
		cmd.RequirementID,
		cmd.ConfidenceScore,
	}, scanMapping)
	if err != nil {
		return nil, repository.MapError(err, ErrMappingNotFound, ErrDuplicate)
	}

	r.logger.Info("artifact mapped",
		"mapping_id", m.ID,
		"artifact_id", m.ArtifactID,
		"requirement_id", m.RequirementID,
	)
	return &m, nil
}

func (r *repo) Mappings(ctx context.Context, artifactID uuid.UUID) ([]Mapping, error) {
	listQ := fmt.Sprintf(`
		SELECT %s FROM artifact_mappings
		WHERE artifact_id = $1
		ORDER BY created_at ASC`, mappingColumns)

	return repository.QueryMany(ctx, r.db, listQ, []any{artifactID}, scanMapping)
}

func (r *repo) ApproveMapping(ctx context.Context, id, approverID uuid.UUID) (*Mapping, error) {
	updateQ := fmt.Sprintf(`
		UPDATE artifact_mappings
		SET is_approved = TRUE, approved_by_id = $1, approved_at = NOW()
		WHERE id = $2
		RETURNING %s`, mappingColumns)

	m, err := repository.QueryOne(ctx, r.db, updateQ, []any{approverID, id}, scanMapping)
	if err != nil {
		return nil, repository.MapError(err, ErrMappingNotFound, ErrDuplicate)
	}

	r.logger.Info("artifact mapping approved", "id", m.ID, "approved_by", approverID)
	return &m, nil
}

func (r *repo) RejectMapping(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM artifact_mappings WHERE id = $1",
		id,
	)
	if err != nil {
		return repository.MapError(err, ErrMappingNotFound, ErrDuplicate)
	}

	r.logger.Info("artifact mapping rejected", "id", id)
	return nil
}

func (r *repo) ApproveMappingsBulk(ctx context.Context, ids []uuid.UUID, approverID uuid.UUID) []BulkResult {
	results := make([]BulkResult, len(ids))
	for i, id := range ids {
		results[i] = BulkResult{ID: id, OK: true}
		if _, err := r.ApproveMapping(ctx, id, approverID); err != nil {
			results[i].OK = false
			results[i].Error = err.Error()
		}
	}
	return results
}

func (r *repo) RejectMappingsBulk(ctx context.Context, ids []uuid.UUID) []BulkResult {
	results := make([]BulkResult, len(ids))
	for i, id := range ids {
		results[i] = BulkResult{ID: id, OK: true}
		if err := r.RejectMapping(ctx, id); err != nil {
			results[i].OK = false
			results[i].Error = err.Error()
		}
	}
	return results
}

func (r *repo) ApprovedForRequirement(
	ctx context.Context,
	assessmentID, requirementID uuid.UUID,
) ([]MappingDetail, error) {
	detailQ := `
		SELECT m.id, m.artifact_id, m.requirement_id, m.confidence_score,
			   m.is_approved, m.approved_by_id, m.approved_at, m.created_at,
			   a.kind, a.name
		FROM artifact_mappings m
		JOIN artifacts a ON a.id = m.artifact_id
		WHERE a.assessment_id = $1
		  AND m.requirement_id = $2
		  AND m.is_approved = TRUE
		ORDER BY a.kind ASC, a.name ASC`

	return repository.QueryMany(ctx, r.db, detailQ, []any{assessmentID, requirementID}, scanMappingDetail)
}
