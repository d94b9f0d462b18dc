package frameworks

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

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a framework repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "frameworks"),
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
) (*pagination.PageResult[Framework], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Code", "Name")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count frameworks: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanFramework)
	if err != nil {
		return nil, fmt.Errorf("query frameworks: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Framework, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	f, err := repository.QueryOne(ctx, r.db, q, args, scanFramework)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

func (r *repo) FindByCode(ctx context.Context, code string) (*Framework, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Code", code)

	f, err := repository.QueryOne(ctx, r.db, q, args, scanFramework)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

func (r *repo) Load(ctx context.Context, def *Definition) (*Framework, error) {
	nodes, hierarchyLevels, err := resolveDefinition(def)
	if err != nil {
		return nil, err
	}

	frameworkType := def.FrameworkType
	if frameworkType == "" {
		frameworkType = TypeCustom
	}

	labelsJSON, err := json.Marshal(def.HierarchyLabels)
	if err != nil {
		return nil, fmt.Errorf("marshal hierarchy_labels: %w", err)
	}

	insertFrameworkQ := `
		INSERT INTO frameworks(
			code, name, version, description, framework_type,
			hierarchy_levels, hierarchy_labels, is_active, is_builtin
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)
		RETURNING id, code, name, version, description, framework_type,
				  hierarchy_levels, hierarchy_labels, is_active, is_builtin,
				  created_at, updated_at`

	insertRequirementQ := `
		INSERT INTO framework_requirements(
			framework_id, parent_id, code, name, description, guidance,
			level, is_assessable, display_order
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Framework, error) {
		fw, err := repository.QueryOne(ctx, tx, insertFrameworkQ, []any{
			def.Code,
			def.Name,
			def.Version,
			def.Description,
			frameworkType,
			hierarchyLevels,
			labelsJSON,
			def.IsBuiltin,
		}, scanFramework)
		if err != nil {
			return Framework{}, fmt.Errorf("insert framework: %w", err)
		}

		// Nodes arrive parents-first, so parent ids resolve in one pass.
		idsByCode := make(map[string]uuid.UUID, len(nodes))
		for _, node := range nodes {
			var parentID *uuid.UUID
			if node.ParentCode != "" {
				pid := idsByCode[node.ParentCode]
				parentID = &pid
			}

			var id uuid.UUID
			err := tx.QueryRowContext(ctx, insertRequirementQ,
				fw.ID,
				parentID,
				node.Code,
				node.Name,
				node.Description,
				node.Guidance,
				node.Level,
				node.IsAssessable,
				node.DisplayOrder,
			).Scan(&id)
			if err != nil {
				return Framework{}, fmt.Errorf("insert requirement %s: %w", node.Code, err)
			}
			idsByCode[node.Code] = id
		}

		return fw, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("framework loaded",
		"id", f.ID,
		"code", f.Code,
		"requirements", len(nodes),
	)
	return &f, nil
}

func (r *repo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Framework, error) {
	updateQ := `
		UPDATE frameworks
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, code, name, version, description, framework_type,
				  hierarchy_levels, hierarchy_labels, is_active, is_builtin,
				  created_at, updated_at`

	f, err := repository.QueryOne(ctx, r.db, updateQ, []any{active, id}, scanFramework)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("framework activation changed", "id", f.ID, "is_active", f.IsActive)
	return &f, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		var builtin bool
		err := tx.QueryRowContext(ctx,
			"SELECT is_builtin FROM frameworks WHERE id = $1", id,
		).Scan(&builtin)
		if err != nil {
			return struct{}{}, err
		}
		if builtin {
			return struct{}{}, ErrBuiltin
		}

		// Requirements cascade via FK; the explicit delete keeps the
		// row count check on the framework itself.
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM frameworks WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("framework deleted", "id", id)
	return nil
}

func (r *repo) ListRequirements(
	ctx context.Context,
	page pagination.PageRequest,
	filters RequirementFilters,
) (*pagination.PageResult[Requirement], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(requirementProjection, requirementDefaultSort...).
		WhereSearch(page.Search, "Code", "Name", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count requirements: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRequirement)
	if err != nil {
		return nil, fmt.Errorf("query requirements: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) FindRequirement(ctx context.Context, id uuid.UUID) (*Requirement, error) {
	q, args := query.NewBuilder(requirementProjection).BuildSingle("ID", id)

	req, err := repository.QueryOne(ctx, r.db, q, args, scanRequirement)
	if err != nil {
		return nil, repository.MapError(err, ErrRequirementNotFound, ErrDuplicate)
	}
	return &req, nil
}

func (r *repo) RequirementsByIDs(ctx context.Context, ids []uuid.UUID) ([]Requirement, error) {
	if len(ids) == 0 {
		return []Requirement{}, nil
	}

	q, args := query.
		NewBuilder(requirementProjection, requirementDefaultSort...).
		WhereIn("ID", uuidArgs(ids)).
		Build()

	return repository.QueryMany(ctx, r.db, q, args, scanRequirement)
}

func (r *repo) Children(ctx context.Context, parentID uuid.UUID) ([]Requirement, error) {
	q, args := query.
		NewBuilder(requirementProjection, requirementDefaultSort...).
		WhereEquals("ParentID", parentID).
		Build()

	return repository.QueryMany(ctx, r.db, q, args, scanRequirement)
}

func (r *repo) Roots(ctx context.Context, frameworkID uuid.UUID) ([]Requirement, error) {
	q, args := query.
		NewBuilder(requirementProjection, requirementDefaultSort...).
		WhereEquals("FrameworkID", frameworkID).
		WhereNullable("ParentID", nil).
		Build()

	return repository.QueryMany(ctx, r.db, q, args, scanRequirement)
}

func (r *repo) AtLevel(ctx context.Context, frameworkID uuid.UUID, level int) ([]Requirement, error) {
	q, args := query.
		NewBuilder(requirementProjection, requirementDefaultSort...).
		WhereEquals("FrameworkID", frameworkID).
		WhereEquals("Level", level).
		Build()

	return repository.QueryMany(ctx, r.db, q, args, scanRequirement)
}

func (r *repo) Assessable(ctx context.Context, frameworkIDs []uuid.UUID) ([]Requirement, error) {
	assessable := true
	qb := query.
		NewBuilder(requirementProjection, requirementDefaultSort...).
		WhereEquals("IsAssessable", &assessable)

	if len(frameworkIDs) > 0 {
		qb.WhereIn("FrameworkID", uuidArgs(frameworkIDs))
	}

	q, args := qb.Build()
	return repository.QueryMany(ctx, r.db, q, args, scanRequirement)
}

func (r *repo) WithEmbeddings(
	ctx context.Context,
	frameworkIDs []uuid.UUID,
	onlyAssessable bool,
) ([]Requirement, error) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE r.embedding IS NOT NULL",
		requirementProjection.Columns(),
		requirementProjection.From(),
	)
	args := []any{}

	if onlyAssessable {
		sql += " AND r.is_assessable = TRUE"
	}

	if len(frameworkIDs) > 0 {
		placeholders := ""
		for i, id := range frameworkIDs {
			if i > 0 {
				placeholders += ", "
			}
			args = append(args, id)
			placeholders += fmt.Sprintf("$%d", len(args))
		}
		sql += fmt.Sprintf(" AND r.framework_id IN (%s)", placeholders)
	}

	sql += " ORDER BY r.level ASC, r.display_order ASC, r.code ASC"

	return repository.QueryMany(ctx, r.db, sql, args, scanRequirement)
}

func (r *repo) UpdateEmbedding(ctx context.Context, requirementID uuid.UUID, embedding []float64) error {
	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}

	err = repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE framework_requirements SET embedding = $1, updated_at = NOW() WHERE id = $2",
		embeddingJSON, requirementID,
	)
	if err != nil {
		return repository.MapError(err, ErrRequirementNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) MissingEmbeddings(ctx context.Context, frameworkID *uuid.UUID) ([]Requirement, error) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE r.embedding IS NULL",
		requirementProjection.Columns(),
		requirementProjection.From(),
	)
	args := []any{}

	if frameworkID != nil {
		args = append(args, *frameworkID)
		sql += " AND r.framework_id = $1"
	}

	sql += " ORDER BY r.level ASC, r.display_order ASC, r.code ASC"

	return repository.QueryMany(ctx, r.db, sql, args, scanRequirement)
}

func uuidArgs(ids []uuid.UUID) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
