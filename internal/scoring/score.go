// Package scoring implements the evidence aggregator and maturity scoring
// engine. It turns approved artifact mappings and interview responses into a
// 0-4 maturity tier per assessable requirement, then rolls scores up the
// requirement hierarchy level by level.
package scoring

import (
	"time"

	"github.com/google/uuid"
)

// Presence is three-valued evidence strength for documentation and
// operation: absent, partially present, or fully present.
type Presence string

const (
	PresenceNone    = Presence("none")
	PresencePartial = Presence("partial")
	PresenceFull    = Presence("full")
)

// Evidence holds the rubric inputs for one assessable requirement.
type Evidence struct {
	HasPolicy      bool     `json:"has_policy"`
	HasControl     bool     `json:"has_control"`
	Documentation  Presence `json:"has_documentation"`
	Operation      Presence `json:"has_operation"`
	HasMetrics     bool     `json:"has_metrics"`
	HasImprovement bool     `json:"has_improvement"`
}

// Score is one persisted score row. Assessable leaves carry integer-valued
// tiers; aggregate levels carry the mean of their children.
type Score struct {
	ID            uuid.UUID   `json:"id"`
	AssessmentID  uuid.UUID   `json:"assessment_id"`
	RequirementID uuid.UUID   `json:"requirement_id"`
	Level         int         `json:"level"`
	Score         float64     `json:"score"`
	Explanation   Explanation `json:"explanation"`
	CalculatedAt  time.Time   `json:"calculated_at"`
	CalculatedBy  string      `json:"calculated_by"`
	Version       int         `json:"version"`
}

// NodeScore is one scored requirement in a calculation result or summary.
type NodeScore struct {
	RequirementID uuid.UUID `json:"requirement_id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Level         int       `json:"level"`
	Score         float64   `json:"score"`
	TierName      string    `json:"tier_name,omitempty"`
	Version       int       `json:"version,omitempty"`
}

// CalculationResult summarizes one full scoring run over an assessment.
type CalculationResult struct {
	AssessmentID    uuid.UUID   `json:"assessment_id"`
	OverallMaturity float64     `json:"overall_maturity"`
	FunctionScores  []NodeScore `json:"function_scores"`
	CategoryScores  []NodeScore `json:"category_scores"`
	CalculatedAt    time.Time   `json:"calculated_at"`
}

// Summary is the read-only snapshot of the latest computed root scores.
// A never-scored assessment yields zeros and an empty list, not an error.
type Summary struct {
	AssessmentID    uuid.UUID   `json:"assessment_id"`
	OverallMaturity float64     `json:"overall_maturity"`
	FunctionScores  []NodeScore `json:"function_scores"`
	CalculatedAt    *time.Time  `json:"calculated_at"`
}
