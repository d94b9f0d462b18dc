package crosswalks

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/query"
	"github.com/concordsec/concord/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "requirement_crosswalks", "cw").
	Project("id", "ID").
	Project("source_requirement_id", "SourceRequirementID").
	Project("target_requirement_id", "TargetRequirementID").
	Project("mapping_type", "MappingType").
	Project("confidence_score", "ConfidenceScore").
	Project("mapping_source", "MappingSource").
	Project("reasoning", "Reasoning").
	Project("is_approved", "IsApproved").
	Project("approved_by_id", "ApprovedByID").
	Project("approved_at", "ApprovedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "ConfidenceScore",
	Descending: true,
}

// Filters contains optional filtering criteria for crosswalk queries.
type Filters struct {
	SourceFrameworkID *uuid.UUID `json:"source_framework_id,omitempty"`
	TargetFrameworkID *uuid.UUID `json:"target_framework_id,omitempty"`
	IsApproved        *bool      `json:"is_approved,omitempty"`
	MappingType       *string    `json:"mapping_type,omitempty"`
	MinConfidence     *float64   `json:"min_confidence,omitempty"`
}

// Apply adds filter conditions to a query builder. Framework filters reach
// through the requirement table, so they use subquery clauses.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.
		WhereEquals("IsApproved", f.IsApproved).
		WhereEquals("MappingType", f.MappingType).
		WhereGTE("ConfidenceScore", f.MinConfidence)

	if f.SourceFrameworkID != nil {
		b.WhereClause(
			"cw.source_requirement_id IN (SELECT id FROM framework_requirements WHERE framework_id = $%d)",
			*f.SourceFrameworkID,
		)
	}
	if f.TargetFrameworkID != nil {
		b.WhereClause(
			"cw.target_requirement_id IN (SELECT id FROM framework_requirements WHERE framework_id = $%d)",
			*f.TargetFrameworkID,
		)
	}

	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if id := values.Get("source_framework_id"); id != "" {
		if parsed, err := uuid.Parse(id); err == nil {
			f.SourceFrameworkID = &parsed
		}
	}
	if id := values.Get("target_framework_id"); id != "" {
		if parsed, err := uuid.Parse(id); err == nil {
			f.TargetFrameworkID = &parsed
		}
	}
	if a := values.Get("is_approved"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.IsApproved = &v
		}
	}
	if t := values.Get("mapping_type"); t != "" {
		f.MappingType = &t
	}
	if c := values.Get("min_confidence"); c != "" {
		if v, err := strconv.ParseFloat(c, 64); err == nil {
			f.MinConfidence = &v
		}
	}

	return f
}

func scanCrosswalk(s repository.Scanner) (Crosswalk, error) {
	var cw Crosswalk

	err := s.Scan(
		&cw.ID,
		&cw.SourceRequirementID,
		&cw.TargetRequirementID,
		&cw.MappingType,
		&cw.ConfidenceScore,
		&cw.MappingSource,
		&cw.Reasoning,
		&cw.IsApproved,
		&cw.ApprovedByID,
		&cw.ApprovedAt,
		&cw.CreatedAt,
		&cw.UpdatedAt,
	)

	return cw, err
}
