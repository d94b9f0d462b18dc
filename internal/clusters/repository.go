package clusters

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/internal/similarity"
	"github.com/concordsec/concord/pkg/pagination"
	"github.com/concordsec/concord/pkg/query"
	"github.com/concordsec/concord/pkg/repository"
)

type repo struct {
	db         *sql.DB
	store      frameworks.System
	sim        similarity.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a clustering repository implementing the System interface.
func New(
	db *sql.DB,
	store frameworks.System,
	sim similarity.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		store:      store,
		sim:        sim,
		logger:     logger.With("system", "clusters"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Generate(ctx context.Context, cmd GenerateCommand) ([]Cluster, error) {
	cmd.normalize()
	if !ValidType(cmd.ClusterType) {
		return nil, ErrInvalidType
	}

	matrix, err := r.sim.BuildMatrix(ctx, cmd.FrameworkIDs, true, cmd.Threshold)
	if err != nil {
		return nil, err
	}

	var groups [][]int
	if len(matrix.Requirements) > 0 {
		groups = agglomerate(matrix.Values, cmd.Threshold, cmd.MinClusterSize)
	}

	frameworkCodes, err := r.frameworkCodes(ctx, matrix.Requirements, groups)
	if err != nil {
		return nil, err
	}

	created, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]Cluster, error) {
		// Full rebuild: clusters of the targeted type are replaced wholesale,
		// members cascade with them.
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM requirement_clusters WHERE cluster_type = $1",
			cmd.ClusterType,
		); err != nil {
			return nil, fmt.Errorf("clear %s clusters: %w", cmd.ClusterType, err)
		}

		clusters := make([]Cluster, 0, len(groups))
		for _, group := range groups {
			members := make([]frameworks.Requirement, len(group))
			for i, idx := range group {
				members[i] = matrix.Requirements[idx]
			}

			cluster, err := r.createCluster(ctx, tx, members, cmd.ClusterType, frameworkCodes)
			if err != nil {
				return nil, err
			}
			clusters = append(clusters, *cluster)
		}
		return clusters, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("clusters generated",
		"cluster_type", cmd.ClusterType,
		"threshold", cmd.Threshold,
		"requirements", len(matrix.Requirements),
		"clusters", len(created),
	)
	return created, nil
}

func (r *repo) createCluster(
	ctx context.Context,
	tx *sql.Tx,
	members []frameworks.Requirement,
	clusterType string,
	frameworkCodes map[uuid.UUID]string,
) (*Cluster, error) {
	codes := make([]string, len(members))
	frameworkSet := make(map[uuid.UUID]struct{})
	for i := range members {
		codes[i] = members[i].Code
		frameworkSet[members[i].FrameworkID] = struct{}{}
	}

	frameworkIDs := make([]uuid.UUID, 0, len(frameworkSet))
	for id := range frameworkSet {
		frameworkIDs = append(frameworkIDs, id)
	}

	center := centroid(members)
	description := clusterDescription(members, frameworkCodes)

	var centroidJSON []byte
	if center != nil {
		var err error
		centroidJSON, err = json.Marshal(center)
		if err != nil {
			return nil, fmt.Errorf("marshal centroid: %w", err)
		}
	}

	metadataJSON, err := json.Marshal(Metadata{
		RequirementCount: len(members),
		FrameworkCount:   len(frameworkSet),
		FrameworkIDs:     frameworkIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	insertClusterQ := `
		INSERT INTO requirement_clusters(
			name, description, cluster_type, embedding_centroid, is_active, metadata
		)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		RETURNING id, name, description, cluster_type, embedding_centroid,
				  interview_question, is_active, metadata, created_at, updated_at`

	cluster, err := repository.QueryOne(ctx, tx, insertClusterQ, []any{
		clusterName(codes),
		description,
		clusterType,
		centroidJSON,
		metadataJSON,
	}, scanCluster)
	if err != nil {
		return nil, fmt.Errorf("insert cluster: %w", err)
	}

	insertMemberQ := `
		INSERT INTO requirement_cluster_members(cluster_id, requirement_id, similarity_score)
		VALUES ($1, $2, $3)`

	for i := range members {
		score := memberSimilarity(&members[i], center)
		if _, err := tx.ExecContext(ctx, insertMemberQ, cluster.ID, members[i].ID, score); err != nil {
			return nil, fmt.Errorf("insert cluster member %s: %w", members[i].Code, err)
		}
	}

	return &cluster, nil
}

// frameworkCodes resolves the framework code for every requirement that
// ended up in a retained group.
func (r *repo) frameworkCodes(
	ctx context.Context,
	reqs []frameworks.Requirement,
	groups [][]int,
) (map[uuid.UUID]string, error) {
	codes := make(map[uuid.UUID]string)
	for _, group := range groups {
		for _, idx := range group {
			id := reqs[idx].FrameworkID
			if _, ok := codes[id]; ok {
				continue
			}
			f, err := r.store.Find(ctx, id)
			if err != nil {
				return nil, err
			}
			codes[id] = f.Code
		}
	}
	return codes, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Cluster], error) {
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
		return nil, fmt.Errorf("count clusters: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanCluster)
	if err != nil {
		return nil, fmt.Errorf("query clusters: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Cluster, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCluster)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Members(ctx context.Context, clusterID uuid.UUID) ([]Member, error) {
	if _, err := r.Find(ctx, clusterID); err != nil {
		return nil, err
	}

	memberQ := `
		SELECT r.id, r.framework_id, r.parent_id, r.code, r.name, r.description,
			   r.guidance, r.level, r.is_assessable, r.display_order, r.embedding,
			   r.created_at, r.updated_at, m.similarity_score
		FROM requirement_cluster_members m
		JOIN framework_requirements r ON r.id = m.requirement_id
		WHERE m.cluster_id = $1
		ORDER BY m.similarity_score DESC, r.code ASC`

	return repository.QueryMany(ctx, r.db, memberQ, []any{clusterID}, scanMember)
}

func scanMember(s repository.Scanner) (Member, error) {
	var m Member
	var embeddingRaw []byte

	err := s.Scan(
		&m.Requirement.ID,
		&m.Requirement.FrameworkID,
		&m.Requirement.ParentID,
		&m.Requirement.Code,
		&m.Requirement.Name,
		&m.Requirement.Description,
		&m.Requirement.Guidance,
		&m.Requirement.Level,
		&m.Requirement.IsAssessable,
		&m.Requirement.DisplayOrder,
		&embeddingRaw,
		&m.Requirement.CreatedAt,
		&m.Requirement.UpdatedAt,
		&m.Similarity,
	)

	if err != nil {
		return m, err
	}

	if len(embeddingRaw) > 0 {
		if err := json.Unmarshal(embeddingRaw, &m.Requirement.Embedding); err != nil {
			return m, fmt.Errorf("unmarshal embedding: %w", err)
		}
	}

	return m, nil
}

func (r *repo) ClusterFor(ctx context.Context, requirementID uuid.UUID, clusterType string) (*Cluster, error) {
	if clusterType != "" && !ValidType(clusterType) {
		return nil, ErrInvalidType
	}

	memberQ := `
		SELECT c.id, c.name, c.description, c.cluster_type, c.embedding_centroid,
			   c.interview_question, c.is_active, c.metadata, c.created_at, c.updated_at
		FROM requirement_clusters c
		JOIN requirement_cluster_members m ON m.cluster_id = c.id
		WHERE m.requirement_id = $1`
	args := []any{requirementID}

	if clusterType != "" {
		args = append(args, clusterType)
		memberQ += " AND c.cluster_type = $2"
	}
	memberQ += " LIMIT 1"

	c, err := repository.QueryOne(ctx, r.db, memberQ, args, scanCluster)
	if err != nil {
		return nil, repository.MapError(err, ErrNotClustered, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, clusterType string) (int, error) {
	if clusterType != "" && !ValidType(clusterType) {
		return 0, ErrInvalidType
	}

	deleteQ := "DELETE FROM requirement_clusters"
	args := []any{}

	if clusterType != "" {
		args = append(args, clusterType)
		deleteQ += " WHERE cluster_type = $1"
	}

	result, err := r.db.ExecContext(ctx, deleteQ, args...)
	if err != nil {
		return 0, fmt.Errorf("delete clusters: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete clusters: %w", err)
	}

	r.logger.Info("clusters deleted", "cluster_type", clusterType, "count", deleted)
	return int(deleted), nil
}

func (r *repo) EstimateReduction(ctx context.Context, frameworkIDs []uuid.UUID) (*ReductionEstimate, error) {
	args := make([]any, len(frameworkIDs))
	placeholders := make([]string, len(frameworkIDs))
	for i, id := range frameworkIDs {
		args[i] = id
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	scope := ""
	if len(frameworkIDs) > 0 {
		scope = fmt.Sprintf(" IN (%s)", strings.Join(placeholders, ", "))
	}

	totalQ := "SELECT COUNT(*) FROM framework_requirements WHERE is_assessable = TRUE"
	if scope != "" {
		totalQ += " AND framework_id" + scope
	}

	var total int
	if err := r.db.QueryRowContext(ctx, totalQ, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count assessable requirements: %w", err)
	}

	// Cluster counts follow the same framework scope as the requirement
	// count, so a scoped estimate never reports more questions than
	// requirements.
	memberScope := ""
	if scope != "" {
		memberScope = " AND r.framework_id" + scope
	}

	var clusterCount int
	clusterQ := `
		SELECT COUNT(DISTINCT c.id)
		FROM requirement_clusters c
		JOIN requirement_cluster_members m ON m.cluster_id = c.id
		JOIN framework_requirements r ON r.id = m.requirement_id
		WHERE c.is_active = TRUE` + memberScope
	if err := r.db.QueryRowContext(ctx, clusterQ, args...).Scan(&clusterCount); err != nil {
		return nil, fmt.Errorf("count clusters: %w", err)
	}

	var clustered int
	clusteredQ := `
		SELECT COUNT(DISTINCT m.requirement_id)
		FROM requirement_cluster_members m
		JOIN requirement_clusters c ON c.id = m.cluster_id
		JOIN framework_requirements r ON r.id = m.requirement_id
		WHERE c.is_active = TRUE` + memberScope
	if err := r.db.QueryRowContext(ctx, clusteredQ, args...).Scan(&clustered); err != nil {
		return nil, fmt.Errorf("count clustered requirements: %w", err)
	}

	unclustered := total - clustered
	withClustering := clusterCount + unclustered

	var reduction float64
	if total > 0 {
		reduction = math.Round(float64(total-withClustering)/float64(total)*1000) / 10
	}

	return &ReductionEstimate{
		TotalRequirements:          total,
		ClusteredRequirements:      clustered,
		UnclusteredRequirements:    unclustered,
		TotalClusters:              clusterCount,
		QuestionsWithoutClustering: total,
		QuestionsWithClustering:    withClustering,
		ReductionPercentage:        reduction,
	}, nil
}
