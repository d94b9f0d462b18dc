package clusters

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/concordsec/concord/pkg/query"
	"github.com/concordsec/concord/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "requirement_clusters", "c").
	Project("id", "ID").
	Project("name", "Name").
	Project("description", "Description").
	Project("cluster_type", "ClusterType").
	Project("embedding_centroid", "Centroid").
	Project("interview_question", "InterviewQuestion").
	Project("is_active", "IsActive").
	Project("metadata", "Metadata").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "Name",
	Descending: false,
}

// Filters contains optional filtering criteria for cluster queries.
type Filters struct {
	ClusterType *string `json:"cluster_type,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("ClusterType", f.ClusterType).
		WhereEquals("IsActive", f.IsActive)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if t := values.Get("cluster_type"); t != "" {
		f.ClusterType = &t
	}
	if a := values.Get("is_active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.IsActive = &v
		}
	}

	return f
}

func scanCluster(s repository.Scanner) (Cluster, error) {
	var c Cluster
	var centroidRaw, metadataRaw []byte

	err := s.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.ClusterType,
		&centroidRaw,
		&c.InterviewQuestion,
		&c.IsActive,
		&metadataRaw,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		return c, err
	}

	if len(centroidRaw) > 0 {
		if err := json.Unmarshal(centroidRaw, &c.Centroid); err != nil {
			return c, fmt.Errorf("unmarshal embedding_centroid: %w", err)
		}
	}
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &c.Metadata); err != nil {
			return c, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}

	return c, nil
}
