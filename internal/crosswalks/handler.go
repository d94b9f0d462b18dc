package crosswalks

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/pkg/handlers"
	"github.com/concordsec/concord/pkg/pagination"
	"github.com/concordsec/concord/pkg/routes"
)

// Handler provides HTTP endpoints for crosswalk operations.
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
		logger:     logger.With("handler", "crosswalks"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for crosswalk endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/crosswalks",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/statistics", Handler: h.Statistics},
			{Method: "GET", Pattern: "/requirements/{id}", Handler: h.ForRequirement},
			{Method: "GET", Pattern: "/requirements/{id}/equivalents", Handler: h.Equivalents},
			{Method: "POST", Pattern: "/generate", Handler: h.Generate},
			{Method: "POST", Pattern: "", Handler: h.CreateManual},
			{Method: "POST", Pattern: "/{id}/approval", Handler: h.Approve},
			{Method: "POST", Pattern: "/approvals", Handler: h.ApproveBulk},
			{Method: "POST", Pattern: "/rejections", Handler: h.RejectBulk},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Reject},
		},
	}
}

// Generate runs the crosswalk generation pipeline for a framework pair.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var cmd GenerateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	created, err := h.sys.Generate(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, created)
}

// CreateManual creates an approved crosswalk outside the pipeline.
func (h *Handler) CreateManual(w http.ResponseWriter, r *http.Request) {
	var cmd ManualCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	cw, err := h.sys.CreateManual(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, cw)
}

// List returns a paginated list of crosswalks with optional query parameter filters.
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

// Find returns a single crosswalk by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	cw, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, cw)
}

// ForRequirement returns crosswalks touching a requirement. The as_source,
// as_target, and is_approved query parameters narrow the result.
func (h *Handler) ForRequirement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, frameworks.ErrRequirementNotFound)
		return
	}

	values := r.URL.Query()

	asSource, asTarget := true, true
	if v := values.Get("as_source"); v != "" {
		asSource, _ = strconv.ParseBool(v)
	}
	if v := values.Get("as_target"); v != "" {
		asTarget, _ = strconv.ParseBool(v)
	}

	var isApproved *bool
	if v := values.Get("is_approved"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			isApproved = &parsed
		}
	}

	crosswalks, err := h.sys.ForRequirement(r.Context(), id, asSource, asTarget, isApproved)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, crosswalks)
}

// Equivalents returns requirements joined to the given one by approved
// equivalent edges; the transitive query parameter walks the full component.
func (h *Handler) Equivalents(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, frameworks.ErrRequirementNotFound)
		return
	}

	transitive, _ := strconv.ParseBool(r.URL.Query().Get("transitive"))

	equivalents, err := h.sys.Equivalents(r.Context(), id, transitive)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, equivalents)
}

// Statistics returns aggregate counts and confidence over the crosswalk corpus.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sys.Statistics(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}

type approvalRequest struct {
	ApproverID uuid.UUID `json:"approver_id"`
}

// Approve marks a crosswalk approved.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	cw, err := h.sys.Approve(r.Context(), id, req.ApproverID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, cw)
}

// Reject deletes a crosswalk.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Reject(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type bulkApprovalRequest struct {
	IDs        []uuid.UUID `json:"ids"`
	ApproverID uuid.UUID   `json:"approver_id"`
}

// ApproveBulk approves a list of crosswalks with per-item outcomes.
func (h *Handler) ApproveBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	results := h.sys.ApproveBulk(r.Context(), req.IDs, req.ApproverID)
	handlers.RespondJSON(w, http.StatusOK, results)
}

type bulkRejectionRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// RejectBulk rejects a list of crosswalks with per-item outcomes.
func (h *Handler) RejectBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRejectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	results := h.sys.RejectBulk(r.Context(), req.IDs)
	handlers.RespondJSON(w, http.StatusOK, results)
}
