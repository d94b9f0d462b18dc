package assessments

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/query"
	"github.com/concordsec/concord/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "assessments", "a").
	Project("id", "ID").
	Project("name", "Name").
	Project("description", "Description").
	Project("organization_name", "OrganizationName").
	Project("status", "Status").
	Project("framework_ids", "FrameworkIDs").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for assessment queries.
type Filters struct {
	Status           *string `json:"status,omitempty"`
	OrganizationName *string `json:"organization_name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("OrganizationName", f.OrganizationName)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if o := values.Get("organization_name"); o != "" {
		f.OrganizationName = &o
	}

	return f
}

func scanAssessment(s repository.Scanner) (Assessment, error) {
	var a Assessment
	var frameworksRaw []byte

	err := s.Scan(
		&a.ID,
		&a.Name,
		&a.Description,
		&a.OrganizationName,
		&a.Status,
		&frameworksRaw,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err != nil {
		return a, err
	}

	if len(frameworksRaw) > 0 {
		if err := json.Unmarshal(frameworksRaw, &a.FrameworkIDs); err != nil {
			return a, fmt.Errorf("unmarshal framework_ids: %w", err)
		}
	}
	if a.FrameworkIDs == nil {
		a.FrameworkIDs = []uuid.UUID{}
	}

	return a, nil
}
