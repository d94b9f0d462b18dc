package scoring

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/assessments"
	"github.com/concordsec/concord/pkg/handlers"
	"github.com/concordsec/concord/pkg/pagination"
	"github.com/concordsec/concord/pkg/routes"
)

// Handler provides HTTP endpoints for scoring operations.
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
		logger:     logger.With("handler", "scoring"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for scoring endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/scores",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/assessments/{id}", Handler: h.ScoresFor},
			{Method: "GET", Pattern: "/assessments/{id}/summary", Handler: h.Summary},
			{Method: "POST", Pattern: "/assessments/{id}/calculation", Handler: h.CalculateAll},
		},
	}
}

// CalculateAll runs a full scoring pass for an assessment.
func (h *Handler) CalculateAll(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, assessments.ErrNotFound)
		return
	}

	result, err := h.sys.CalculateAll(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Summary returns the latest root-level score snapshot for an assessment.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, assessments.ErrNotFound)
		return
	}

	summary, err := h.sys.Summary(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, summary)
}

// ScoresFor returns every score row stored for an assessment.
func (h *Handler) ScoresFor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, assessments.ErrNotFound)
		return
	}

	scores, err := h.sys.ScoresFor(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, scores)
}
