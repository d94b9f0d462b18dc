package interviews

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/query"
	"github.com/concordsec/concord/pkg/repository"
)

var questionProjection = query.
	NewProjectionMap("public", "interview_questions", "q").
	Project("id", "ID").
	Project("requirement_id", "RequirementID").
	Project("cluster_id", "ClusterID").
	Project("question_text", "QuestionText").
	Project("question_type", "QuestionType").
	Project("display_order", "DisplayOrder").
	Project("is_active", "IsActive").
	Project("created_at", "CreatedAt")

var questionDefaultSort = []query.SortField{
	{Field: "DisplayOrder"},
	{Field: "CreatedAt"},
}

var sessionProjection = query.
	NewProjectionMap("public", "interview_sessions", "s").
	Project("id", "ID").
	Project("assessment_id", "AssessmentID").
	Project("interviewee_name", "IntervieweeName").
	Project("interviewee_role", "IntervieweeRole").
	Project("status", "Status").
	Project("notes", "Notes").
	Project("started_at", "StartedAt").
	Project("completed_at", "CompletedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var sessionDefaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// QuestionFilters contains optional filtering criteria for question queries.
type QuestionFilters struct {
	RequirementID *uuid.UUID `json:"requirement_id,omitempty"`
	ClusterID     *uuid.UUID `json:"cluster_id,omitempty"`
	QuestionType  *string    `json:"question_type,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f QuestionFilters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("RequirementID", f.RequirementID).
		WhereEquals("ClusterID", f.ClusterID).
		WhereEquals("QuestionType", f.QuestionType).
		WhereEquals("IsActive", f.IsActive)
}

// QuestionFiltersFromQuery extracts filter values from URL query parameters.
func QuestionFiltersFromQuery(values url.Values) QuestionFilters {
	var f QuestionFilters

	if id := values.Get("requirement_id"); id != "" {
		if parsed, err := uuid.Parse(id); err == nil {
			f.RequirementID = &parsed
		}
	}
	if id := values.Get("cluster_id"); id != "" {
		if parsed, err := uuid.Parse(id); err == nil {
			f.ClusterID = &parsed
		}
	}
	if t := values.Get("question_type"); t != "" {
		f.QuestionType = &t
	}
	if a := values.Get("is_active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.IsActive = &v
		}
	}

	return f
}

func scanQuestion(s repository.Scanner) (Question, error) {
	var q Question

	err := s.Scan(
		&q.ID,
		&q.RequirementID,
		&q.ClusterID,
		&q.QuestionText,
		&q.QuestionType,
		&q.DisplayOrder,
		&q.IsActive,
		&q.CreatedAt,
	)

	return q, err
}

func scanSession(s repository.Scanner) (Session, error) {
	var sess Session

	err := s.Scan(
		&sess.ID,
		&sess.AssessmentID,
		&sess.IntervieweeName,
		&sess.IntervieweeRole,
		&sess.Status,
		&sess.Notes,
		&sess.StartedAt,
		&sess.CompletedAt,
		&sess.CreatedAt,
		&sess.UpdatedAt,
	)

	return sess, err
}

func scanResponse(s repository.Scanner) (Response, error) {
	var r Response

	err := s.Scan(
		&r.ID,
		&r.SessionID,
		&r.QuestionID,
		&r.ResponseText,
		&r.ResponseValue,
		&r.ConfidenceLevel,
		&r.RespondedAt,
		&r.CreatedAt,
	)

	return r, err
}

func scanAnswered(s repository.Scanner) (AnsweredQuestion, error) {
	var a AnsweredQuestion

	err := s.Scan(
		&a.Question.ID,
		&a.Question.RequirementID,
		&a.Question.ClusterID,
		&a.Question.QuestionText,
		&a.Question.QuestionType,
		&a.Question.DisplayOrder,
		&a.Question.IsActive,
		&a.Question.CreatedAt,
		&a.Response.ID,
		&a.Response.SessionID,
		&a.Response.QuestionID,
		&a.Response.ResponseText,
		&a.Response.ResponseValue,
		&a.Response.ConfidenceLevel,
		&a.Response.RespondedAt,
		&a.Response.CreatedAt,
	)

	return a, err
}
