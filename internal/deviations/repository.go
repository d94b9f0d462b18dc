package deviations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/assessments"
	"github.com/concordsec/concord/internal/config"
	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/internal/scoring"
	"github.com/concordsec/concord/pkg/pagination"
	"github.com/concordsec/concord/pkg/query"
	"github.com/concordsec/concord/pkg/repository"
)

const returningColumns = `id, assessment_id, requirement_id, deviation_type, severity, status,
	title, description, evidence, impact_score, likelihood_score, risk_score,
	recommended_remediation, remediation_notes, resolved_at, detected_at, updated_at`

type repo struct {
	db          *sql.DB
	store       frameworks.System
	assessments assessments.System
	scoring     scoring.System
	risk        config.RiskConfig
	logger      *slog.Logger
	pagination  pagination.Config
}

// New creates a deviation engine implementing the System interface. The risk
// configuration is a construction parameter so different deployments can
// weight function criticality differently.
func New(
	db *sql.DB,
	store frameworks.System,
	assessmentStore assessments.System,
	scoringEngine scoring.System,
	risk config.RiskConfig,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:          db,
		store:       store,
		assessments: assessmentStore,
		scoring:     scoringEngine,
		risk:        risk,
		logger:      logger.With("system", "deviations"),
		pagination:  pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

type detected struct {
	requirement frameworks.Requirement
	finding     Finding
}

func (r *repo) DetectAll(ctx context.Context, assessmentID uuid.UUID) ([]Deviation, error) {
	assessment, err := r.assessments.Find(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	if len(assessment.FrameworkIDs) == 0 {
		return []Deviation{}, nil
	}

	leaves, err := r.store.Assessable(ctx, assessment.FrameworkIDs)
	if err != nil {
		return nil, err
	}

	scores, err := r.scoring.ScoresFor(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	scoreByRequirement := make(map[uuid.UUID]float64, len(scores))
	for _, s := range scores {
		scoreByRequirement[s.RequirementID] = s.Score
	}

	var hits []detected
	for _, leaf := range leaves {
		gathered, err := r.scoring.GatherEvidence(ctx, assessmentID, leaf.ID)
		if err != nil {
			return nil, err
		}

		findings := evaluateRules(
			leaf,
			gathered.HasPolicy, gathered.HasControl,
			len(gathered.Policy), len(gathered.Control),
			scoreByRequirement[leaf.ID],
		)
		for _, f := range findings {
			hits = append(hits, detected{requirement: leaf, finding: f})
		}
	}

	result, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]Deviation, error) {
		persisted := make([]Deviation, 0, len(hits))
		for _, hit := range hits {
			d, err := r.upsert(ctx, tx, assessmentID, hit)
			if err != nil {
				return nil, err
			}
			persisted = append(persisted, *d)
		}
		return persisted, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("deviation detection complete",
		"assessment_id", assessmentID,
		"requirement_count", len(leaves),
		"deviation_count", len(result),
	)

	return result, nil
}

// upsert updates the existing non-remediated deviation for the same
// (assessment, requirement, type) if one exists; otherwise inserts a new
// open one. A remediated deviation that regresses gets a fresh open row.
func (r *repo) upsert(ctx context.Context, tx *sql.Tx, assessmentID uuid.UUID, hit detected) (*Deviation, error) {
	impact := Impact(r.risk, hit.requirement.RootCode(), hit.finding.BaseImpact)
	risk, severity := RiskScore(impact, hit.finding.Likelihood)

	evidence, err := json.Marshal(hit.finding.Evidence)
	if err != nil {
		return nil, fmt.Errorf("marshal evidence: %w", err)
	}

	updateQ := fmt.Sprintf(`
		UPDATE deviations
		SET severity = $4,
			impact_score = $5,
			likelihood_score = $6,
			risk_score = $7,
			evidence = $8,
			updated_at = NOW()
		WHERE assessment_id = $1
		  AND requirement_id = $2
		  AND deviation_type = $3
		  AND status <> '%s'
		RETURNING %s`, StatusRemediated, returningColumns)

	d, err := repository.QueryOne(ctx, tx, updateQ, []any{
		assessmentID,
		hit.requirement.ID,
		hit.finding.DeviationType,
		severity,
		impact,
		hit.finding.Likelihood,
		risk,
		evidence,
	}, scanDeviation)
	if err == nil {
		return &d, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	insertQ := fmt.Sprintf(`
		INSERT INTO deviations(assessment_id, requirement_id, deviation_type, severity, status,
			title, description, evidence, impact_score, likelihood_score, risk_score,
			recommended_remediation, detected_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING %s`, returningColumns)

	d, err = repository.QueryOne(ctx, tx, insertQ, []any{
		assessmentID,
		hit.requirement.ID,
		hit.finding.DeviationType,
		severity,
		StatusOpen,
		hit.finding.Title,
		hit.finding.Description,
		evidence,
		impact,
		hit.finding.Likelihood,
		risk,
		hit.finding.Remediation,
	}, scanDeviation)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Deviation], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count deviations: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDeviation)
	if err != nil {
		return nil, fmt.Errorf("query deviations: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Deviation, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDeviation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &d, nil
}

func (r *repo) SetStatus(ctx context.Context, id uuid.UUID, status string, notes *string) (*Deviation, error) {
	if !slices.Contains(Statuses, status) {
		return nil, ErrInvalidStatus
	}

	current, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ValidTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	updateQ := fmt.Sprintf(`
		UPDATE deviations
		SET status = $1,
			remediation_notes = COALESCE($2, remediation_notes),
			resolved_at = CASE WHEN $1 IN ('%s', '%s', '%s') THEN NOW() ELSE resolved_at END,
			updated_at = NOW()
		WHERE id = $3
		RETURNING %s`,
		StatusRemediated, StatusAccepted, StatusFalsePositive, returningColumns)

	d, err := repository.QueryOne(ctx, r.db, updateQ, []any{status, notes, id}, scanDeviation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}

	r.logger.Info("deviation status changed", "id", d.ID, "status", d.Status)
	return &d, nil
}

func (r *repo) RiskSummary(ctx context.Context, assessmentID uuid.UUID) (*RiskSummary, error) {
	listQ := fmt.Sprintf(`
		SELECT %s FROM deviations
		WHERE assessment_id = $1
		ORDER BY risk_score DESC, detected_at`, returningColumns)

	devs, err := repository.QueryMany(ctx, r.db, listQ, []any{assessmentID}, scanDeviation)
	if err != nil {
		return nil, err
	}

	summary := &RiskSummary{
		AssessmentID:     assessmentID,
		HighestRiskAreas: []RiskArea{},
		RiskByFunction:   map[string]float64{},
	}

	if len(devs) == 0 {
		return summary, nil
	}

	ids := make([]uuid.UUID, 0, len(devs))
	seen := map[uuid.UUID]bool{}
	for _, d := range devs {
		if !seen[d.RequirementID] {
			seen[d.RequirementID] = true
			ids = append(ids, d.RequirementID)
		}
	}

	reqs, err := r.store.RequirementsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]frameworks.Requirement, len(reqs))
	for _, req := range reqs {
		byID[req.ID] = req
	}

	type functionRisk struct {
		total int
		count int
	}
	byFunction := map[string]*functionRisk{}

	totalRisk := 0
	for _, d := range devs {
		summary.TotalDeviations++
		totalRisk += d.RiskScore

		switch d.Severity {
		case SeverityCritical:
			summary.CriticalCount++
		case SeverityHigh:
			summary.HighCount++
		case SeverityMedium:
			summary.MediumCount++
		case SeverityLow:
			summary.LowCount++
		}

		if req, ok := byID[d.RequirementID]; ok {
			fn := req.RootCode()
			if byFunction[fn] == nil {
				byFunction[fn] = &functionRisk{}
			}
			byFunction[fn].total += d.RiskScore
			byFunction[fn].count++
		}
	}

	summary.AverageRiskScore = round2(float64(totalRisk) / float64(len(devs)))

	for fn, fr := range byFunction {
		summary.RiskByFunction[fn] = round2(float64(fr.total) / float64(fr.count))
	}

	for _, d := range devs[:min(5, len(devs))] {
		area := RiskArea{
			Title:     d.Title,
			RiskScore: d.RiskScore,
			Severity:  d.Severity,
		}
		if req, ok := byID[d.RequirementID]; ok {
			area.RequirementCode = req.Code
		}
		summary.HighestRiskAreas = append(summary.HighestRiskAreas, area)
	}

	return summary, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
