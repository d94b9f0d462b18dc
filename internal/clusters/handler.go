package clusters

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/pkg/handlers"
	"github.com/concordsec/concord/pkg/pagination"
	"github.com/concordsec/concord/pkg/routes"
)

// Handler provides HTTP endpoints for cluster operations.
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
		logger:     logger.With("handler", "clusters"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for cluster endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/clusters",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/members", Handler: h.Members},
			{Method: "GET", Pattern: "/requirements/{id}", Handler: h.ClusterFor},
			{Method: "GET", Pattern: "/reduction", Handler: h.EstimateReduction},
			{Method: "POST", Pattern: "", Handler: h.Generate},
			{Method: "DELETE", Pattern: "", Handler: h.Delete},
		},
	}
}

// Generate runs a clustering pass with the parameters in the request body.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var cmd GenerateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	clusters, err := h.sys.Generate(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, clusters)
}

// List returns a paginated list of clusters with optional query parameter filters.
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

// Find returns a single cluster by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	cluster, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, cluster)
}

// Members returns the requirements in a cluster with similarity scores.
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	members, err := h.sys.Members(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, members)
}

// ClusterFor returns the cluster containing the requirement in the path,
// optionally restricted by the cluster_type query parameter.
func (h *Handler) ClusterFor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, frameworks.ErrRequirementNotFound)
		return
	}

	cluster, err := h.sys.ClusterFor(r.Context(), id, r.URL.Query().Get("cluster_type"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, cluster)
}

// Delete removes clusters in bulk, optionally scoped by the cluster_type
// query parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.sys.Delete(r.Context(), r.URL.Query().Get("cluster_type"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

// EstimateReduction reports the interview question savings from clustering,
// optionally scoped by framework_id query parameters.
func (h *Handler) EstimateReduction(w http.ResponseWriter, r *http.Request) {
	var frameworkIDs []uuid.UUID
	for _, f := range r.URL.Query()["framework_id"] {
		id, err := uuid.Parse(f)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, frameworks.ErrNotFound)
			return
		}
		frameworkIDs = append(frameworkIDs, id)
	}

	estimate, err := h.sys.EstimateReduction(r.Context(), frameworkIDs)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, estimate)
}
