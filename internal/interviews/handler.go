package interviews

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/assessments"
	"github.com/concordsec/concord/internal/clusters"
	"github.com/concordsec/concord/pkg/handlers"
	"github.com/concordsec/concord/pkg/pagination"
	"github.com/concordsec/concord/pkg/routes"
)

// Handler provides HTTP endpoints for interview operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "interviews"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for interview endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/interviews",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/questions", Handler: h.ListQuestions},
			{Method: "POST", Pattern: "/questions", Handler: h.CreateQuestion},
			{Method: "POST", Pattern: "/questions/clusters/{id}", Handler: h.EnsureClusterQuestion},
			{Method: "DELETE", Pattern: "/questions/{id}", Handler: h.DeleteQuestion},
			{Method: "GET", Pattern: "/sessions/{id}", Handler: h.FindSession},
			{Method: "GET", Pattern: "/sessions/{id}/responses", Handler: h.SessionResponses},
			{Method: "GET", Pattern: "/assessments/{id}/sessions", Handler: h.ListSessions},
			{Method: "POST", Pattern: "/sessions", Handler: h.CreateSession},
			{Method: "PUT", Pattern: "/sessions/{id}/status", Handler: h.SetSessionStatus},
			{Method: "POST", Pattern: "/responses", Handler: h.Record},
		},
	}
}

// CreateQuestion creates a question for a requirement or a cluster.
func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var cmd QuestionCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	q, err := h.sys.CreateQuestion(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, q)
}

// EnsureClusterQuestion returns the cluster's representative question,
// creating it on first use.
func (h *Handler) EnsureClusterQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, clusters.ErrNotFound)
		return
	}

	q, err := h.sys.EnsureClusterQuestion(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, q)
}

// ListQuestions returns a paginated list of questions with optional filters.
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := QuestionFiltersFromQuery(r.URL.Query())

	result, err := h.sys.ListQuestions(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// DeleteQuestion removes a question.
func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrQuestionNotFound)
		return
	}

	if err := h.sys.DeleteQuestion(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateSession creates an interview session within an assessment.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var cmd SessionCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, err := h.sys.CreateSession(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, s)
}

// FindSession returns a single session by its UUID path parameter.
func (h *Handler) FindSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrSessionNotFound)
		return
	}

	s, err := h.sys.FindSession(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// ListSessions returns the sessions of an assessment.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, assessments.ErrNotFound)
		return
	}

	sessions, err := h.sys.ListSessions(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sessions)
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetSessionStatus transitions a session's lifecycle state.
func (h *Handler) SetSessionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrSessionNotFound)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, err := h.sys.SetSessionStatus(r.Context(), id, req.Status)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Record appends an answer to a session.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var cmd ResponseCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	resp, err := h.sys.Record(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, resp)
}

// SessionResponses returns the responses recorded in a session.
func (h *Handler) SessionResponses(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrSessionNotFound)
		return
	}

	responses, err := h.sys.SessionResponses(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, responses)
}
