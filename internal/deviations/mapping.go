package deviations

import (
	"encoding/json"
	"net/url"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/query"
	"github.com/concordsec/concord/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "deviations", "d").
	Project("id", "ID").
	Project("assessment_id", "AssessmentID").
	Project("requirement_id", "RequirementID").
	Project("deviation_type", "DeviationType").
	Project("severity", "Severity").
	Project("status", "Status").
	Project("title", "Title").
	Project("description", "Description").
	Project("evidence", "Evidence").
	Project("impact_score", "ImpactScore").
	Project("likelihood_score", "LikelihoodScore").
	Project("risk_score", "RiskScore").
	Project("recommended_remediation", "RecommendedRemediation").
	Project("remediation_notes", "RemediationNotes").
	Project("resolved_at", "ResolvedAt").
	Project("detected_at", "DetectedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "RiskScore",
	Descending: true,
}

// Filters contains optional filtering criteria for deviation queries.
type Filters struct {
	AssessmentID  *uuid.UUID `json:"assessment_id,omitempty"`
	Severity      *string    `json:"severity,omitempty"`
	Status        *string    `json:"status,omitempty"`
	DeviationType *string    `json:"deviation_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("AssessmentID", f.AssessmentID).
		WhereEquals("Severity", f.Severity).
		WhereEquals("Status", f.Status).
		WhereEquals("DeviationType", f.DeviationType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if id := values.Get("assessment_id"); id != "" {
		if parsed, err := uuid.Parse(id); err == nil {
			f.AssessmentID = &parsed
		}
	}
	if s := values.Get("severity"); s != "" {
		f.Severity = &s
	}
	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if t := values.Get("deviation_type"); t != "" {
		f.DeviationType = &t
	}

	return f
}

func scanDeviation(s repository.Scanner) (Deviation, error) {
	var (
		d        Deviation
		evidence []byte
	)

	err := s.Scan(
		&d.ID,
		&d.AssessmentID,
		&d.RequirementID,
		&d.DeviationType,
		&d.Severity,
		&d.Status,
		&d.Title,
		&d.Description,
		&evidence,
		&d.ImpactScore,
		&d.LikelihoodScore,
		&d.RiskScore,
		&d.RecommendedRemediation,
		&d.RemediationNotes,
		&d.ResolvedAt,
		&d.DetectedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}

	if len(evidence) > 0 {
		if err := json.Unmarshal(evidence, &d.Evidence); err != nil {
			return d, err
		}
	}

	return d, nil
}
