package interviews

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Question type constants, aligned with how evidence is evaluated.
const (
	QuestionExistence     = "existence"
	QuestionDocumentation = "documentation"
	QuestionOperation     = "operation"
	QuestionMetrics       = "metrics"
	QuestionImprovement   = "improvement"
	QuestionDesign        = "design"
)

// QuestionTypes lists every valid question type.
var QuestionTypes = []string{
	QuestionExistence,
	QuestionDocumentation,
	QuestionOperation,
	QuestionMetrics,
	QuestionImprovement,
	QuestionDesign,
}

// ValidQuestionType reports whether t is a known question type.
func ValidQuestionType(t string) bool {
	return slices.Contains(QuestionTypes, t)
}

// Session status constants.
const (
	SessionNotStarted = "not_started"
	SessionInProgress = "in_progress"
	SessionPaused     = "paused"
	SessionCompleted  = "completed"
	SessionCancelled  = "cancelled"
)

// SessionStatuses lists every valid session status.
var SessionStatuses = []string{
	SessionNotStarted,
	SessionInProgress,
	SessionPaused,
	SessionCompleted,
	SessionCancelled,
}

// ValidSessionStatus reports whether s is a known session status.
func ValidSessionStatus(s string) bool {
	return slices.Contains(SessionStatuses, s)
}

// Question is an interview question targeting either a single requirement
// or a whole requirement cluster. Exactly one of RequirementID and
// ClusterID is set.
type Question struct {
	ID            uuid.UUID  `json:"id"`
	RequirementID *uuid.UUID `json:"requirement_id,omitempty"`
	ClusterID     *uuid.UUID `json:"cluster_id,omitempty"`
	QuestionText  string     `json:"question_text"`
	QuestionType  string     `json:"question_type"`
	DisplayOrder  int        `json:"display_order"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Session is one interview conversation within an assessment.
type Session struct {
	ID              uuid.UUID  `json:"id"`
	AssessmentID    uuid.UUID  `json:"assessment_id"`
	IntervieweeName *string    `json:"interviewee_name,omitempty"`
	IntervieweeRole *string    `json:"interviewee_role,omitempty"`
	Status          string     `json:"status"`
	Notes           *string    `json:"notes,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Response is one answer recorded in a session. Responses append; readers
// take the latest answer per question.
type Response struct {
	ID              uuid.UUID `json:"id"`
	SessionID       uuid.UUID `json:"session_id"`
	QuestionID      uuid.UUID `json:"question_id"`
	ResponseText    *string   `json:"response_text,omitempty"`
	ResponseValue   *string   `json:"response_value,omitempty"`
	ConfidenceLevel *string   `json:"confidence_level,omitempty"`
	RespondedAt     time.Time `json:"responded_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// AnsweredQuestion pairs a question with the latest response to it.
type AnsweredQuestion struct {
	Question Question `json:"question"`
	Response Response `json:"response"`
}

// QuestionCommand holds the fields for creating a question.
type QuestionCommand struct {
	RequirementID *uuid.UUID `json:"requirement_id,omitempty"`
	ClusterID     *uuid.UUID `json:"cluster_id,omitempty"`
	QuestionText  string     `json:"question_text"`
	QuestionType  string     `json:"question_type"`
	DisplayOrder  int        `json:"display_order"`
}

// SessionCommand holds the fields for creating a session.
type SessionCommand struct {
	AssessmentID    uuid.UUID `json:"assessment_id"`
	IntervieweeName *string   `json:"interviewee_name,omitempty"`
	IntervieweeRole *string   `json:"interviewee_role,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
}

// ResponseCommand records an answer within a session.
type ResponseCommand struct {
	SessionID       uuid.UUID `json:"session_id"`
	QuestionID      uuid.UUID `json:"question_id"`
	ResponseText    *string   `json:"response_text,omitempty"`
	ResponseValue   *string   `json:"response_value,omitempty"`
	ConfidenceLevel *string   `json:"confidence_level,omitempty"`
}
