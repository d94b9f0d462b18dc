package artifacts

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/handlers"
	"github.com/concordsec/concord/pkg/pagination"
	"github.com/concordsec/concord/pkg/routes"
)

// Handler provides HTTP endpoints for artifact operations.
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
		logger:     logger.With("handler", "artifacts"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for artifact endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/artifacts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/mappings", Handler: h.Mappings},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/mappings", Handler: h.Map},
			{Method: "POST", Pattern: "/mappings/{id}/approval", Handler: h.ApproveMapping},
			{Method: "POST", Pattern: "/mappings/approvals", Handler: h.ApproveMappingsBulk},
			{Method: "POST", Pattern: "/mappings/rejections", Handler: h.RejectMappingsBulk},
			{Method: "DELETE", Pattern: "/mappings/{id}", Handler: h.RejectMapping},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of artifacts with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single artifact by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	a, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// Create creates an artifact.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	a, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, a)
}

// Delete removes an artifact and its mappings.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Map links an artifact to a requirement.
func (h *Handler) Map(w http.ResponseWriter, r *http.Request) {
	var cmd MapCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	m, err := h.sys.Map(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, m)
}

// Mappings returns the mappings of one artifact.
func (h *Handler) Mappings(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	mappings, err := h.sys.Mappings(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mappings)
}

type approvalRequest struct {
	ApproverID uuid.UUID `json:"approver_id"`
}

// ApproveMapping marks a mapping approved.
func (h *Handler) ApproveMapping(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMappingNotFound)
		return
	}

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	m, err := h.sys.ApproveMapping(r.Context(), id, req.ApproverID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, m)
}

// RejectMapping deletes a mapping.
func (h *Handler) RejectMapping(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMappingNotFound)
		return
	}

	if err := h.sys.RejectMapping(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type bulkApprovalRequest struct {
	IDs        []uuid.UUID `json:"ids"`
	ApproverID uuid.UUID   `json:"approver_id"`
}

// ApproveMappingsBulk approves a list of mappings with per-item outcomes.
func (h *Handler) ApproveMappingsBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	results := h.sys.ApproveMappingsBulk(r.Context(), req.IDs, req.ApproverID)
	handlers.RespondJSON(w, http.StatusOK, results)
}

type bulkRejectionRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// RejectMappingsBulk rejects a list of mappings with per-item outcomes.
func (h *Handler) RejectMappingsBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRejectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	results := h.sys.RejectMappingsBulk(r.Context(), req.IDs)
	handlers.RespondJSON(w, http.StatusOK, results)
}
