package crosswalks

import (
	"time"

	"github.com/google/uuid"
)

// Mapping type constants describing the relationship between two requirements.
const (
	MappingEquivalent = "equivalent"
	MappingPartial    = "partial"
	MappingRelated    = "related"
)

// Mapping source constants describing how a crosswalk was produced.
const (
	SourceAIGenerated = "ai_generated"
	SourceManual      = "manual"
	SourceOfficial    = "official"
)

// MappingTypes lists every valid mapping type.
var MappingTypes = []string{MappingEquivalent, MappingPartial, MappingRelated}

// MappingSources lists every valid mapping source.
var MappingSources = []string{SourceAIGenerated, SourceManual, SourceOfficial}

// Crosswalk is a directed mapping between requirements in different
// frameworks, carrying a confidence score and approval state.
type Crosswalk struct {
	ID                  uuid.UUID  `json:"id"`
	SourceRequirementID uuid.UUID  `json:"source_requirement_id"`
	TargetRequirementID uuid.UUID  `json:"target_requirement_id"`
	MappingType         string     `json:"mapping_type"`
	ConfidenceScore     float64    `json:"confidence_score"`
	MappingSource       string     `json:"mapping_source"`
	Reasoning           *string    `json:"reasoning,omitempty"`
	IsApproved          bool       `json:"is_approved"`
	ApprovedByID        *uuid.UUID `json:"approved_by_id,omitempty"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// GenerateCommand holds the parameters for a crosswalk generation pass.
// Classification defaults to enabled; set Validate to false explicitly to
// persist on embedding similarity alone.
type GenerateCommand struct {
	SourceFrameworkID    uuid.UUID `json:"source_framework_id"`
	TargetFrameworkID    uuid.UUID `json:"target_framework_id"`
	SimilarityThreshold  float64   `json:"similarity_threshold"`
	TopKPerRequirement   int       `json:"top_k_per_requirement"`
	Validate             *bool     `json:"validate,omitempty"`
	AutoApproveThreshold float64   `json:"auto_approve_threshold"`
}

func (c *GenerateCommand) normalize() {
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = 0.75
	}
	if c.TopKPerRequirement < 1 {
		c.TopKPerRequirement = 5
	}
	if c.AutoApproveThreshold <= 0 {
		c.AutoApproveThreshold = 0.9
	}
}

func (c *GenerateCommand) validateEnabled() bool {
	return c.Validate == nil || *c.Validate
}

// ManualCommand creates a crosswalk outside the generation pipeline.
// Manual mappings carry full confidence and are approved immediately.
type ManualCommand struct {
	SourceRequirementID uuid.UUID  `json:"source_requirement_id"`
	TargetRequirementID uuid.UUID  `json:"target_requirement_id"`
	MappingType         string     `json:"mapping_type"`
	Reasoning           *string    `json:"reasoning,omitempty"`
	CreatedByID         *uuid.UUID `json:"created_by_id,omitempty"`
}

// BulkResult reports the outcome of one item in a bulk approval or
// rejection request.
type BulkResult struct {
	ID    uuid.UUID `json:"id"`
	OK    bool      `json:"ok"`
	Error string    `json:"error,omitempty"`
}

// Statistics summarizes the crosswalk corpus.
type Statistics struct {
	TotalCrosswalks   int            `json:"total_crosswalks"`
	Approved          int            `json:"approved"`
	PendingReview     int            `json:"pending_review"`
	ByType            map[string]int `json:"by_type"`
	BySource          map[string]int `json:"by_source"`
	AverageConfidence float64        `json:"average_confidence"`
}
