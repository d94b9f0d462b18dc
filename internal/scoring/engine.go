package scoring

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/artifacts"
	"github.com/concordsec/concord/internal/assessments"
	"github.com/concordsec/concord/internal/crosswalks"
	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/internal/interviews"
	"github.com/concordsec/concord/pkg/pagination"
	"github.com/concordsec/concord/pkg/repository"
)

const calculatedBy = "scoring_engine"

// GatheredEvidence is the interpreted rubric evidence for one requirement
// plus the raw items that produced it.
type GatheredEvidence struct {
	Evidence
	Policy  []artifacts.MappingDetail
	Control []artifacts.MappingDetail
	Answers []interviews.AnsweredQuestion
}

type engine struct {
	db          *sql.DB
	store       frameworks.System
	assessments assessments.System
	artifacts   artifacts.System
	interviews  interviews.System
	crosswalks  crosswalks.System
	logger      *slog.Logger
	pagination  pagination.Config
}

// New creates a scoring engine implementing the System interface.
func New(
	db *sql.DB,
	store frameworks.System,
	assessmentStore assessments.System,
	artifactStore artifacts.System,
	interviewStore interviews.System,
	crosswalkStore crosswalks.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &engine{
		db:          db,
		store:       store,
		assessments: assessmentStore,
		artifacts:   artifactStore,
		interviews:  interviewStore,
		crosswalks:  crosswalkStore,
		logger:      logger.With("system", "scoring"),
		pagination:  pagination,
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.logger, e.pagination)
}

func (e *engine) GatherEvidence(ctx context.Context, assessmentID, requirementID uuid.UUID) (*GatheredEvidence, error) {
	answers, err := e.interviews.LatestResponses(ctx, assessmentID, requirementID)
	if err != nil {
		return nil, fmt.Errorf("interview evidence: %w", err)
	}

	gathered := &GatheredEvidence{
		Evidence: InterpretResponses(answers),
		Answers:  answers,
	}

	// Approved mappings credit the requirement directly and through approved
	// equivalent crosswalks, so evidence collected under one framework counts
	// for its equivalents in another.
	creditedIDs := []uuid.UUID{requirementID}
	equivalents, err := e.crosswalks.Equivalents(ctx, requirementID, true)
	if err != nil {
		return nil, fmt.Errorf("equivalent requirements: %w", err)
	}
	for _, eq := range equivalents {
		creditedIDs = append(creditedIDs, eq.ID)
	}

	for _, id := range creditedIDs {
		details, err := e.artifacts.ApprovedForRequirement(ctx, assessmentID, id)
		if err != nil {
			return nil, fmt.Errorf("artifact evidence: %w", err)
		}
		for _, d := range details {
			switch d.ArtifactKind {
			case artifacts.KindPolicy:
				gathered.Policy = append(gathered.Policy, d)
			case artifacts.KindControl:
				gathered.Control = append(gathered.Control, d)
			}
		}
	}

	// Mappings are authoritative; interviews only fill gaps.
	if len(gathered.Policy) > 0 {
		gathered.HasPolicy = true
	}
	if len(gathered.Control) > 0 {
		gathered.HasControl = true
	}

	return gathered, nil
}

type pendingScore struct {
	RequirementID uuid.UUID
	Level         int
	Score         float64
	Explanation   Explanation
}

func (e *engine) CalculateAll(ctx context.Context, assessmentID uuid.UUID) (*CalculationResult, error) {
	assessment, err := e.assessments.Find(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	result := &CalculationResult{
		AssessmentID:   assessmentID,
		FunctionScores: []NodeScore{},
		CategoryScores: []NodeScore{},
		CalculatedAt:   time.Now().UTC(),
	}

	if len(assessment.FrameworkIDs) == 0 {
		return result, nil
	}

	computed := map[uuid.UUID]NodeScore{}
	var pending []pendingScore

	// Assessable leaves first: rubric tier per requirement.
	leaves, err := e.store.Assessable(ctx, assessment.FrameworkIDs)
	if err != nil {
		return nil, err
	}

	for _, leaf := range leaves {
		gathered, err := e.GatherEvidence(ctx, assessmentID, leaf.ID)
		if err != nil {
			return nil, err
		}

		tier, breakdown := CalculateTier(gathered.Evidence)
		explanation := buildLeafExplanation(
			tier, breakdown,
			gathered.Policy, gathered.Control, gathered.Answers,
		)

		node := NodeScore{
			RequirementID: leaf.ID,
			Code:          leaf.Code,
			Name:          leaf.Name,
			Level:         leaf.Level,
			Score:         float64(tier),
			TierName:      breakdown.TierName,
		}
		computed[leaf.ID] = node
		pending = append(pending, pendingScore{
			RequirementID: leaf.ID,
			Level:         leaf.Level,
			Score:         float64(tier),
			Explanation:   explanation,
		})
	}

	// Then aggregate levels bottom-up, one level at a time, so each rollup
	// only reads scores finalized at the level below.
	for _, frameworkID := range assessment.FrameworkIDs {
		framework, err := e.store.Find(ctx, frameworkID)
		if err != nil {
			return nil, err
		}

		for level := framework.HierarchyLevels - 2; level >= 0; level-- {
			nodes, err := e.store.AtLevel(ctx, frameworkID, level)
			if err != nil {
				return nil, err
			}

			for _, node := range nodes {
				if node.IsAssessable {
					continue
				}

				children, err := e.store.Children(ctx, node.ID)
				if err != nil {
					return nil, err
				}

				var scored []NodeScore
				for _, child := range children {
					if cs, ok := computed[child.ID]; ok {
						scored = append(scored, cs)
					}
				}

				score := 0.0
				if len(scored) > 0 {
					var sum float64
					for _, cs := range scored {
						sum += cs.Score
					}
					score = round2(sum / float64(len(scored)))
				}

				computed[node.ID] = NodeScore{
					RequirementID: node.ID,
					Code:          node.Code,
					Name:          node.Name,
					Level:         node.Level,
					Score:         score,
				}
				pending = append(pending, pendingScore{
					RequirementID: node.ID,
					Level:         node.Level,
					Score:         score,
					Explanation:   buildRollupExplanation(scored, len(children)),
				})
			}
		}
	}

	// One transaction per run: readers never observe a half-written rollup.
	if _, err := repository.WithTx(ctx, e.db, func(tx *sql.Tx) (struct{}, error) {
		for _, p := range pending {
			if err := e.upsert(ctx, tx, assessmentID, p); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	}); err != nil {
		return nil, err
	}

	var rootSum float64
	var rootCount int
	for _, frameworkID := range assessment.FrameworkIDs {
		roots, err := e.store.Roots(ctx, frameworkID)
		if err != nil {
			return nil, err
		}
		for _, root := range roots {
			if node, ok := computed[root.ID]; ok {
				result.FunctionScores = append(result.FunctionScores, node)
				rootSum += node.Score
				rootCount++
			}
		}
	}

	for _, node := range computed {
		if node.Level == 1 {
			result.CategoryScores = append(result.CategoryScores, node)
		}
	}
	sort.Slice(result.CategoryScores, func(i, j int) bool {
		return result.CategoryScores[i].Code < result.CategoryScores[j].Code
	})

	if rootCount > 0 {
		result.OverallMaturity = round2(rootSum / float64(rootCount))
	}

	e.logger.Info("assessment scored",
		"assessment_id", assessmentID,
		"leaf_count", len(leaves),
		"score_count", len(pending),
		"overall_maturity", result.OverallMaturity,
	)

	return result, nil
}

func (e *engine) upsert(ctx context.Context, tx *sql.Tx, assessmentID uuid.UUID, p pendingScore) error {
	payload, err := json.Marshal(p.Explanation)
	if err != nil {
		return fmt.Errorf("marshal explanation: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scores (assessment_id, requirement_id, level, score, explanation, calculated_at, calculated_by, version)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6, 1)
		ON CONFLICT (assessment_id, requirement_id)
		DO UPDATE SET
			score = EXCLUDED.score,
			explanation = EXCLUDED.explanation,
			calculated_at = NOW(),
			calculated_by = EXCLUDED.calculated_by,
			version = scores.version + 1`,
		assessmentID, p.RequirementID, p.Level, p.Score, payload, calculatedBy,
	)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

func (e *engine) Summary(ctx context.Context, assessmentID uuid.UUID) (*Summary, error) {
	rows, err := repository.QueryMany(ctx, e.db, `
		SELECT s.requirement_id, r.code, r.name, s.level, s.score, s.calculated_at, s.version
		FROM scores s
		JOIN framework_requirements r ON r.id = s.requirement_id
		WHERE s.assessment_id = $1 AND s.level = 0
		ORDER BY r.code`,
		[]any{assessmentID}, scanSummaryRow)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		AssessmentID:   assessmentID,
		FunctionScores: []NodeScore{},
	}

	if len(rows) == 0 {
		return summary, nil
	}

	var sum float64
	var latest time.Time
	for _, row := range rows {
		summary.FunctionScores = append(summary.FunctionScores, row.NodeScore)
		sum += row.Score
		if row.CalculatedAt.After(latest) {
			latest = row.CalculatedAt
		}
	}

	summary.OverallMaturity = round2(sum / float64(len(rows)))
	summary.CalculatedAt = &latest
	return summary, nil
}

func (e *engine) ScoresFor(ctx context.Context, assessmentID uuid.UUID) ([]Score, error) {
	return repository.QueryMany(ctx, e.db, `
		SELECT s.id, s.assessment_id, s.requirement_id, s.level, s.score,
			   s.explanation, s.calculated_at, s.calculated_by, s.version
		FROM scores s
		JOIN framework_requirements r ON r.id = s.requirement_id
		WHERE s.assessment_id = $1
		ORDER BY s.level, r.code`,
		[]any{assessmentID}, scanScore)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
