package interviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/clusters"
	"github.com/concordsec/concord/pkg/pagination"
	"github.com/concordsec/concord/pkg/query"
	"github.com/concordsec/concord/pkg/repository"
)

const (
	questionColumns = `id, requirement_id, cluster_id, question_text, question_type,
		display_order, is_active, created_at`
	sessionColumns = `id, assessment_id, interviewee_name, interviewee_role, status,
		notes, started_at, completed_at, created_at, updated_at`
	responseColumns = `id, session_id, question_id, response_text, response_value,
		confidence_level, responded_at, created_at`
)

type repo struct {
	db         *sql.DB
	clusters   clusters.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an interview repository implementing the System interface.
func New(
	db *sql.DB,
	clusterStore clusters.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		clusters:   clusterStore,
		logger:     logger.With("system", "interviews"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) CreateQuestion(ctx context.Context, cmd QuestionCommand) (*Question, error) {
	if (cmd.RequirementID == nil) == (cmd.ClusterID == nil) {
		return nil, ErrQuestionTarget
	}
	if cmd.QuestionText == "" {
		return nil, ErrTextRequired
	}
	if !ValidQuestionType(cmd.QuestionType) {
		return nil, ErrInvalidQuestionType
	}

	insertQ := fmt.Sprintf(`
		INSERT INTO interview_questions(requirement_id, cluster_id, question_text, question_type, display_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, questionColumns)

	q, err := repository.QueryOne(ctx, r.db, insertQ, []any{
		cmd.RequirementID,
		cmd.ClusterID,
		cmd.QuestionText,
		cmd.QuestionType,
		cmd.DisplayOrder,
	}, scanQuestion)
	if err != nil {
		return nil, repository.MapError(err, ErrQuestionNotFound, ErrDuplicate)
	}

	r.logger.Info("interview question created", "id", q.ID, "question_type", q.QuestionType)
	return &q, nil
}

func (r *repo) EnsureClusterQuestion(ctx context.Context, clusterID uuid.UUID) (*Question, error) {
	cluster, err := r.clusters.Find(ctx, clusterID)
	if err != nil {
		return nil, err
	}

	existingQ := fmt.Sprintf(`
		SELECT %s FROM interview_questions
		WHERE cluster_id = $1 AND is_active = TRUE
		ORDER BY created_at ASC
		LIMIT 1`, questionColumns)

	existing, err := repository.QueryOne(ctx, r.db, existingQ, []any{clusterID}, scanQuestion)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	text := fmt.Sprintf(
		"Does your organization have policies or controls addressing: %s?",
		cluster.Name,
	)
	if cluster.InterviewQuestion != nil && *cluster.InterviewQuestion != "" {
		text = *cluster.InterviewQuestion
	}

	return r.CreateQuestion(ctx, QuestionCommand{
		ClusterID:    &clusterID,
		QuestionText: text,
		QuestionType: QuestionExistence,
	})
}

func (r *repo) ListQuestions(
	ctx context.Context,
	page pagination.PageRequest,
	filters QuestionFilters,
) (*pagination.PageResult[Question], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(questionProjection, questionDefaultSort...).
		WhereSearch(page.Search, "QuestionText")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanQuestion)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM interview_questions WHERE id = $1",
		id,
	)
	if err != nil {
		return repository.MapError(err, ErrQuestionNotFound, ErrDuplicate)
	}

	r.logger.Info("interview question deleted", "id", id)
	return nil
}

func (r *repo) CreateSession(ctx context.Context, cmd SessionCommand) (*Session, error) {
	insertQ := fmt.Sprintf(`
		INSERT INTO interview_sessions(assessment_id, interviewee_name, interviewee_role, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, sessionColumns)

	s, err := repository.QueryOne(ctx, r.db, insertQ, []any{
		cmd.AssessmentID,
		cmd.IntervieweeName,
		cmd.IntervieweeRole,
		SessionNotStarted,
		cmd.Notes,
	}, scanSession)
	if err != nil {
		return nil, repository.MapError(err, ErrSessionNotFound, ErrDuplicate)
	}

	r.logger.Info("interview session created", "id", s.ID, "assessment_id", s.AssessmentID)
	return &s, nil
}

func (r *repo) FindSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	q, args := query.NewBuilder(sessionProjection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSession)
	if err != nil {
		return nil, repository.MapError(err, ErrSessionNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) ListSessions(ctx context.Context, assessmentID uuid.UUID) ([]Session, error) {
	q, args := query.
		NewBuilder(sessionProjection, sessionDefaultSort).
		WhereEquals("AssessmentID", assessmentID).
		Build()

	return repository.QueryMany(ctx, r.db, q, args, scanSession)
}

func (r *repo) SetSessionStatus(ctx context.Context, id uuid.UUID, status string) (*Session, error) {
	if !ValidSessionStatus(status) {
		return nil, ErrInvalidSessionStatus
	}

	updateQ := fmt.Sprintf(`
		UPDATE interview_sessions
		SET status = $1,
			started_at = CASE WHEN $1 = '%s' AND started_at IS NULL THEN NOW() ELSE started_at END,
			completed_at = CASE WHEN $1 = '%s' THEN NOW() ELSE completed_at END,
			updated_at = NOW()
		WHERE id = $2
		RETURNING %s`, SessionInProgress, SessionCompleted, sessionColumns)

	s, err := repository.QueryOne(ctx, r.db, updateQ, []any{status, id}, scanSession)
	if err != nil {
		return nil, repository.MapError(err, ErrSessionNotFound, ErrDuplicate)
	}

	r.logger.Info("interview session status changed", "id", s.ID, "status", s.Status)
	return &s, nil
}

func (r *repo) Record(ctx context.Context, cmd ResponseCommand) (*Response, error) {
	if _, err := r.FindSession(ctx, cmd.SessionID); err != nil {
		return nil, err
	}

	insertQ := fmt.Sprintf(`
		INSERT INTO interview_responses(session_id, question_id, response_text, response_value, confidence_level, responded_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING %s`, responseColumns)

	resp, err := repository.QueryOne(ctx, r.db, insertQ, []any{
		cmd.SessionID,
		cmd.QuestionID,
		cmd.ResponseText,
		cmd.ResponseValue,
		cmd.ConfidenceLevel,
	}, scanResponse)
	if err != nil {
		return nil, repository.MapError(err, ErrQuestionNotFound, ErrDuplicate)
	}

	r.logger.Info("interview response recorded",
		"id", resp.ID,
		"session_id", resp.SessionID,
		"question_id", resp.QuestionID,
	)
	return &resp, nil
}

func (r *repo) SessionResponses(ctx context.Context, sessionID uuid.UUID) ([]Response, error) {
	listQ := fmt.Sprintf(`
		SELECT %s FROM interview_responses
		WHERE session_id = $1
		ORDER BY responded_at ASC`, responseColumns)

	return repository.QueryMany(ctx, r.db, listQ, []any{sessionID}, scanResponse)
}

func (r *repo) LatestResponses(ctx context.Context, assessmentID, requirementID uuid.UUID) ([]AnsweredQuestion, error) {
	// DISTINCT ON keeps the newest response per question across every
	// session of the assessment; a re-asked question supersedes silently.
	latestQ := `
		SELECT DISTINCT ON (q.id)
			   q.id, q.requirement_id, q.cluster_id, q.question_text, q.question_type,
			   q.display_order, q.is_active, q.created_at,
			   resp.id, resp.session_id, resp.question_id, resp.response_text,
			   resp.response_value, resp.confidence_level, resp.responded_at, resp.created_at
		FROM interview_responses resp
		JOIN interview_sessions s ON s.id = resp.session_id
		JOIN interview_questions q ON q.id = resp.question_id
		WHERE s.assessment_id = $1
		  AND q.is_active = TRUE
		  AND (
			q.requirement_id = $2
			OR q.cluster_id IN (
				SELECT cluster_id FROM requirement_cluster_members
				WHERE requirement_id = $2
			)
		  )
		ORDER BY q.id, resp.responded_at DESC`

	return repository.QueryMany(ctx, r.db, latestQ, []any{assessmentID, requirementID}, scanAnswered)
}
