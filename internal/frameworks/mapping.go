package frameworks

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/query"
	"github.com/concordsec/concord/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "frameworks", "f").
	Project("id", "ID").
	Project("code", "Code").
	Project("name", "Name").
	Project("version", "Version").
	Project("description", "Description").
	Project("framework_type", "FrameworkType").
	Project("hierarchy_levels", "HierarchyLevels").
	Project("hierarchy_labels", "HierarchyLabels").
	Project("is_active", "IsActive").
	Project("is_builtin", "IsBuiltin").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "Code",
	Descending: false,
}

var requirementProjection = query.
	NewProjectionMap("public", "framework_requirements", "r").
	Project("id", "ID").
	Project("framework_id", "FrameworkID").
	Project("parent_id", "ParentID").
	Project("code", "Code").
	Project("name", "Name").
	Project("description", "Description").
	Project("guidance", "Guidance").
	Project("level", "Level").
	Project("is_assessable", "IsAssessable").
	Project("display_order", "DisplayOrder").
	Project("embedding", "Embedding").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var requirementDefaultSort = []query.SortField{
	{Field: "Level"},
	{Field: "DisplayOrder"},
	{Field: "Code"},
}

// Filters contains optional filtering criteria for framework queries.
type Filters struct {
	FrameworkType *string `json:"framework_type,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
	IsBuiltin     *bool   `json:"is_builtin,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("FrameworkType", f.FrameworkType).
		WhereEquals("IsActive", f.IsActive).
		WhereEquals("IsBuiltin", f.IsBuiltin)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if t := values.Get("framework_type"); t != "" {
		f.FrameworkType = &t
	}
	if a := values.Get("is_active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.IsActive = &v
		}
	}
	if b := values.Get("is_builtin"); b != "" {
		if v, err := strconv.ParseBool(b); err == nil {
			f.IsBuiltin = &v
		}
	}

	return f
}

// RequirementFilters contains optional filtering criteria for requirement queries.
type RequirementFilters struct {
	FrameworkID  *uuid.UUID `json:"framework_id,omitempty"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`
	Level        *int       `json:"level,omitempty"`
	IsAssessable *bool      `json:"is_assessable,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f RequirementFilters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("FrameworkID", f.FrameworkID).
		WhereEquals("ParentID", f.ParentID).
		WhereEquals("Level", f.Level).
		WhereEquals("IsAssessable", f.IsAssessable)
}

// RequirementFiltersFromQuery extracts filter values from URL query parameters.
func RequirementFiltersFromQuery(values url.Values) RequirementFilters {
	var f RequirementFilters

	if id := values.Get("framework_id"); id != "" {
		if parsed, err := uuid.Parse(id); err == nil {
			f.FrameworkID = &parsed
		}
	}
	if id := values.Get("parent_id"); id != "" {
		if parsed, err := uuid.Parse(id); err == nil {
			f.ParentID = &parsed
		}
	}
	if l := values.Get("level"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			f.Level = &v
		}
	}
	if a := values.Get("is_assessable"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.IsAssessable = &v
		}
	}

	return f
}

func scanFramework(s repository.Scanner) (Framework, error) {
	var f Framework
	var labelsRaw []byte

	err := s.Scan(
		&f.ID,
		&f.Code,
		&f.Name,
		&f.Version,
		&f.Description,
		&f.FrameworkType,
		&f.HierarchyLevels,
		&labelsRaw,
		&f.IsActive,
		&f.IsBuiltin,
		&f.CreatedAt,
		&f.UpdatedAt,
	)

	if err != nil {
		return f, err
	}

	if len(labelsRaw) > 0 {
		if err := json.Unmarshal(labelsRaw, &f.HierarchyLabels); err != nil {
			return f, fmt.Errorf("unmarshal hierarchy_labels: %w", err)
		}
	}
	if f.HierarchyLabels == nil {
		f.HierarchyLabels = []string{}
	}

	return f, nil
}

func scanRequirement(s repository.Scanner) (Requirement, error) {
	var r Requirement
	var embeddingRaw []byte

	err := s.Scan(
		&r.ID,
		&r.FrameworkID,
		&r.ParentID,
		&r.Code,
		&r.Name,
		&r.Description,
		&r.Guidance,
		&r.Level,
		&r.IsAssessable,
		&r.DisplayOrder,
		&embeddingRaw,
		&r.CreatedAt,
		&r.UpdatedAt,
	)

	if err != nil {
		return r, err
	}

	if len(embeddingRaw) > 0 {
		if err := json.Unmarshal(embeddingRaw, &r.Embedding); err != nil {
			return r, fmt.Errorf("unmarshal embedding: %w", err)
		}
	}

	return r, nil
}
