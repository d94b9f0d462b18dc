package artifacts

import (
	"time"

	"github.com/google/uuid"
)

// Artifact kind constants. Policies document intent; controls implement it.
const (
	KindPolicy  = "policy"
	KindControl = "control"
)

// Kinds lists every valid artifact kind.
var Kinds = []string{KindPolicy, KindControl}

// Artifact is a piece of organizational evidence (a policy document or an
// implemented control) attached to an assessment.
type Artifact struct {
	ID           uuid.UUID `json:"id"`
	AssessmentID uuid.UUID `json:"assessment_id"`
	Kind         string    `json:"kind"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Version      *string   `json:"version,omitempty"`
	Owner        *string   `json:"owner,omitempty"`
	ContentText  *string   `json:"content_text,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Mapping links an artifact to a requirement it evidences. Only approved
// mappings count as evidence for scoring and deviation detection.
type Mapping struct {
	ID              uuid.UUID  `json:"id"`
	ArtifactID      uuid.UUID  `json:"artifact_id"`
	RequirementID   uuid.UUID  `json:"requirement_id"`
	ConfidenceScore *float64   `json:"confidence_score,omitempty"`
	IsApproved      bool       `json:"is_approved"`
	ApprovedByID    *uuid.UUID `json:"approved_by_id,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// MappingDetail is a mapping joined with the identifying fields of its
// artifact, the shape evidence consumers need.
type MappingDetail struct {
	Mapping
	ArtifactKind string `json:"artifact_kind"`
	ArtifactName string `json:"artifact_name"`
}

// CreateCommand holds the fields for creating an artifact.
type CreateCommand struct {
	AssessmentID uuid.UUID `json:"assessment_id"`
	Kind         string    `json:"kind"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Version      *string   `json:"version,omitempty"`
	Owner        *string   `json:"owner,omitempty"`
	ContentText  *string   `json:"content_text,omitempty"`
}

// MapCommand links an artifact to a requirement.
type MapCommand struct {
	ArtifactID      uuid.UUID `json:"artifact_id"`
	RequirementID   uuid.UUID `json:"requirement_id"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
}

// BulkResult reports the outcome of one item in a bulk approval or
// rejection request.
type BulkResult struct {
	ID    uuid.UUID `json:"id"`
	OK    bool      `json:"ok"`
	Error string    `json:"error,omitempty"`
}
