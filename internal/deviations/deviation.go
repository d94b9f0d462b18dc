// Package deviations implements gap detection and risk ranking over scored
// assessments. Each assessable requirement is evaluated against five fixed
// rules; detected gaps carry an impact x likelihood risk score and a severity
// bucket, and re-detection updates open rows instead of duplicating them.
package deviations

import (
	"time"

	"github.com/google/uuid"
)

// Deviation types.
const (
	TypeMissingPolicy     = "missing_policy"
	TypeMissingControl    = "missing_control"
	TypeInadequatePolicy  = "inadequate_policy"
	TypeInadequateControl = "inadequate_control"
	TypeDocumentationGap  = "documentation_gap"
)

// Types lists all valid deviation types.
var Types = []string{
	TypeMissingPolicy,
	TypeMissingControl,
	TypeInadequatePolicy,
	TypeInadequateControl,
	TypeDocumentationGap,
}

// Severity buckets derived from the risk score.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Deviation lifecycle states.
const (
	StatusOpen          = "open"
	StatusInProgress    = "in_progress"
	StatusRemediated    = "remediated"
	StatusAccepted      = "accepted"
	StatusFalsePositive = "false_positive"
)

// Statuses lists all valid deviation statuses.
var Statuses = []string{
	StatusOpen,
	StatusInProgress,
	StatusRemediated,
	StatusAccepted,
	StatusFalsePositive,
}

// transitions defines the allowed status moves. Remediated, accepted, and
// false_positive are terminal.
var transitions = map[string][]string{
	StatusOpen:       {StatusInProgress, StatusAccepted, StatusFalsePositive},
	StatusInProgress: {StatusOpen, StatusRemediated, StatusAccepted, StatusFalsePositive},
}

// ValidTransition reports whether a deviation may move from one status to
// another.
func ValidTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// EvidenceSnapshot captures the evidence state that triggered a deviation.
type EvidenceSnapshot struct {
	HasPolicy    bool     `json:"has_policy"`
	HasControl   bool     `json:"has_control"`
	PolicyCount  int      `json:"policy_count,omitempty"`
	ControlCount int      `json:"control_count,omitempty"`
	Score        *float64 `json:"score,omitempty"`
}

// Deviation is one detected gap for a requirement within an assessment.
type Deviation struct {
	ID                     uuid.UUID        `json:"id"`
	AssessmentID           uuid.UUID        `json:"assessment_id"`
	RequirementID          uuid.UUID        `json:"requirement_id"`
	DeviationType          string           `json:"deviation_type"`
	Severity               string           `json:"severity"`
	Status                 string           `json:"status"`
	Title                  string           `json:"title"`
	Description            string           `json:"description"`
	Evidence               EvidenceSnapshot `json:"evidence"`
	ImpactScore            int              `json:"impact_score"`
	LikelihoodScore        int              `json:"likelihood_score"`
	RiskScore              int              `json:"risk_score"`
	RecommendedRemediation *string          `json:"recommended_remediation"`
	RemediationNotes       *string          `json:"remediation_notes"`
	ResolvedAt             *time.Time       `json:"resolved_at"`
	DetectedAt             time.Time        `json:"detected_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// RiskArea is one entry in the highest-risk list of a summary.
type RiskArea struct {
	RequirementCode string `json:"requirement_code"`
	Title           string `json:"title"`
	RiskScore       int    `json:"risk_score"`
	Severity        string `json:"severity"`
}

// RiskSummary aggregates the risk posture of an assessment.
type RiskSummary struct {
	AssessmentID     uuid.UUID          `json:"assessment_id"`
	TotalDeviations  int                `json:"total_deviations"`
	CriticalCount    int                `json:"critical_count"`
	HighCount        int                `json:"high_count"`
	MediumCount      int                `json:"medium_count"`
	LowCount         int                `json:"low_count"`
	AverageRiskScore float64            `json:"average_risk_score"`
	HighestRiskAreas []RiskArea         `json:"highest_risk_areas"`
	RiskByFunction   map[string]float64 `json:"risk_by_function"`
}
