package assessments

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/pagination"
	"github.com/concordsec/concord/pkg/query"
	"github.com/concordsec/concord/pkg/repository"
)

const returningColumns = `id, name, description, organization_name, status,
		framework_ids, created_at, updated_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an assessment repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "assessments"),
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
) (*pagination.PageResult[Assessment], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "OrganizationName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count assessments: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAssessment)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAssessment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Assessment, error) {
	if cmd.Name == "" {
		return nil, ErrNameRequired
	}
	if cmd.OrganizationName == "" {
		return nil, ErrOrganizationRequired
	}

	frameworksJSON, err := json.Marshal(cmd.FrameworkIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal framework_ids: %w", err)
	}

	insertQ := fmt.Sprintf(`
		INSERT INTO assessments(name, description, organization_name, status, framework_ids)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, returningColumns)

	a, err := repository.QueryOne(ctx, r.db, insertQ, []any{
		cmd.Name,
		cmd.Description,
		cmd.OrganizationName,
		StatusDraft,
		frameworksJSON,
	}, scanAssessment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("assessment created",
		"id", a.ID,
		"name", a.Name,
		"organization", a.OrganizationName,
	)
	return &a, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Assessment, error) {
	existing, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		existing.Name = *cmd.Name
	}
	if cmd.Description != nil {
		existing.Description = cmd.Description
	}
	if cmd.OrganizationName != nil {
		existing.OrganizationName = *cmd.OrganizationName
	}
	if cmd.FrameworkIDs != nil {
		existing.FrameworkIDs = *cmd.FrameworkIDs
	}

	frameworksJSON, err := json.Marshal(existing.FrameworkIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal framework_ids: %w", err)
	}

	updateQ := fmt.Sprintf(`
		UPDATE assessments
		SET name = $1, description = $2, organization_name = $3,
			framework_ids = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING %s`, returningColumns)

	a, err := repository.QueryOne(ctx, r.db, updateQ, []any{
		existing.Name,
		existing.Description,
		existing.OrganizationName,
		frameworksJSON,
		id,
	}, scanAssessment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("assessment updated", "id", a.ID)
	return &a, nil
}

func (r *repo) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Assessment, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	updateQ := fmt.Sprintf(`
		UPDATE assessments
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING %s`, returningColumns)

	a, err := repository.QueryOne(ctx, r.db, updateQ, []any{status, id}, scanAssessment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("assessment status changed", "id", a.ID, "status", a.Status)
	return &a, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM assessments WHERE id = $1",
		id,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("assessment deleted", "id", id)
	return nil
}
