package clusters

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
)

// Cluster type constants.
const (
	TypeSemantic  = "semantic"
	TypeTopic     = "topic"
	TypeInterview = "interview"
)

// Types lists every valid cluster type.
var Types = []string{TypeSemantic, TypeTopic, TypeInterview}

// ValidType reports whether t is a known cluster type.
func ValidType(t string) bool {
	return slices.Contains(Types, t)
}

// Cluster groups semantically similar requirements across frameworks so a
// single interview question can cover all of them.
type Cluster struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Description       *string    `json:"description,omitempty"`
	ClusterType       string     `json:"cluster_type"`
	Centroid          []float64  `json:"centroid,omitempty"`
	InterviewQuestion *string    `json:"interview_question,omitempty"`
	IsActive          bool       `json:"is_active"`
	Metadata          Metadata   `json:"metadata"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Metadata captures generation parameters alongside the cluster.
type Metadata struct {
	RequirementCount int         `json:"requirement_count"`
	FrameworkCount   int         `json:"framework_count"`
	FrameworkIDs     []uuid.UUID `json:"framework_ids"`
}

// Member records a requirement's place in a cluster with its similarity
// to the cluster centroid.
type Member struct {
	Requirement frameworks.Requirement `json:"requirement"`
	Similarity  float64                `json:"similarity"`
}

// GenerateCommand holds the parameters for a clustering pass.
type GenerateCommand struct {
	FrameworkIDs   []uuid.UUID `json:"framework_ids,omitempty"`
	Threshold      float64     `json:"threshold"`
	MinClusterSize int         `json:"min_cluster_size"`
	ClusterType    string      `json:"cluster_type"`
}

func (c *GenerateCommand) normalize() {
	if c.Threshold <= 0 {
		c.Threshold = 0.85
	}
	if c.MinClusterSize < 1 {
		c.MinClusterSize = 2
	}
	if c.ClusterType == "" {
		c.ClusterType = TypeSemantic
	}
}

// ReductionEstimate reports the interview question savings clustering buys.
type ReductionEstimate struct {
	TotalRequirements          int     `json:"total_requirements"`
	ClusteredRequirements      int     `json:"clustered_requirements"`
	UnclusteredRequirements    int     `json:"unclustered_requirements"`
	TotalClusters              int     `json:"total_clusters"`
	QuestionsWithoutClustering int     `json:"questions_without_clustering"`
	QuestionsWithClustering    int     `json:"questions_with_clustering"`
	ReductionPercentage        float64 `json:"reduction_percentage"`
}
