package interviews

import (
	"context"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/pagination"
)

// System defines the public contract for interview management.
type System interface {
	Handler() *Handler

	// CreateQuestion creates a question targeting exactly one requirement
	// or cluster.
	CreateQuestion(ctx context.Context, cmd QuestionCommand) (*Question, error)

	// EnsureClusterQuestion creates the cluster's representative existence
	// question if it has none yet, and returns it either way.
	EnsureClusterQuestion(ctx context.Context, clusterID uuid.UUID) (*Question, error)

	ListQuestions(ctx context.Context, page pagination.PageRequest, filters QuestionFilters) (*pagination.PageResult[Question], error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) error

	CreateSession(ctx context.Context, cmd SessionCommand) (*Session, error)
	FindSession(ctx context.Context, id uuid.UUID) (*Session, error)
	ListSessions(ctx context.Context, assessmentID uuid.UUID) ([]Session, error)

	// SetSessionStatus transitions a session, stamping started_at and
	// completed_at as it enters in_progress and completed.
	SetSessionStatus(ctx context.Context, id uuid.UUID, status string) (*Session, error)

	// Record appends an answer. Readers resolve the latest answer per
	// question, so re-answering supersedes without deleting history.
	Record(ctx context.Context, cmd ResponseCommand) (*Response, error)

	// SessionResponses returns the responses recorded in a session.
	SessionResponses(ctx context.Context, sessionID uuid.UUID) ([]Response, error)

	// LatestResponses returns, for each question targeting the requirement
	// (directly or through a cluster it belongs to), the most recent answer
	// recorded in the assessment. This is the interview evidence feed for
	// scoring.
	LatestResponses(ctx context.Context, assessmentID, requirementID uuid.UUID) ([]AnsweredQuestion, error)
}
