package artifacts

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/query"
	"github.com/concordsec/concord/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "artifacts", "a").
	Project("id", "ID").
	Project("assessment_id", "AssessmentID").
	Project("kind", "Kind").
	Project("name", "Name").
	Project("description", "Description").
	Project("version", "Version").
	Project("owner", "Owner").
	Project("content_text", "ContentText").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "Name",
	Descending: false,
}

// Filters contains optional filtering criteria for artifact queries.
type Filters struct {
	AssessmentID *uuid.UUID `json:"assessment_id,omitempty"`
	Kind         *string    `json:"kind,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("AssessmentID", f.AssessmentID).
		WhereEquals("Kind", f.Kind)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if id := values.Get("assessment_id"); id != "" {
		if parsed, err := uuid.Parse(id); err == nil {
			f.AssessmentID = &parsed
		}
	}
	if k := values.Get("kind"); k != "" {
		f.Kind = &k
	}

	return f
}

func scanArtifact(s repository.Scanner) (Artifact, error) {
	var a Artifact

	err := s.Scan(
		&a.ID,
		&a.AssessmentID,
		&a.Kind,
		&a.Name,
		&a.Description,
		&a.Version,
		&a.Owner,
		&a.ContentText,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

func scanMapping(s repository.Scanner) (Mapping, error) {
	var m Mapping

	err := s.Scan(
		&m.ID,
		&m.ArtifactID,
		&m.RequirementID,
		&m.ConfidenceScore,
		&m.IsApproved,
		&m.ApprovedByID,
		&m.ApprovedAt,
		&m.CreatedAt,
	)

	return m, err
}

func scanMappingDetail(s repository.Scanner) (MappingDetail, error) {
	var d MappingDetail

	err := s.Scan(
		&d.ID,
		&d.ArtifactID,
		&d.RequirementID,
		&d.ConfidenceScore,
		&d.IsApproved,
		&d.ApprovedByID,
		&d.ApprovedAt,
		&d.CreatedAt,
		&d.ArtifactKind,
		&d.ArtifactName,
	)

	return d, err
}
