package embeddings

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/pkg/handlers"
	"github.com/concordsec/concord/pkg/routes"
)

// Handler provides HTTP endpoints for embedding operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "embeddings"),
	}
}

// Routes returns the route group definition for embedding endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/embeddings",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/requirements/{id}", Handler: h.EmbedRequirement},
			{Method: "POST", Pattern: "/requirements", Handler: h.EmbedAll},
		},
	}
}

// EmbedRequirement generates and stores the embedding for one requirement.
// The force query parameter regenerates an existing embedding.
func (h *Handler) EmbedRequirement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, frameworks.ErrRequirementNotFound)
		return
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	vector, err := h.sys.EmbedRequirement(r.Context(), id, force)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"requirement_id": id,
		"dimensions":     len(vector),
	})
}

// EmbedAll runs a bulk embedding pass, optionally scoped by the framework_id
// query parameter.
func (h *Handler) EmbedAll(w http.ResponseWriter, r *http.Request) {
	var frameworkID *uuid.UUID
	if f := r.URL.Query().Get("framework_id"); f != "" {
		id, err := uuid.Parse(f)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, frameworks.ErrNotFound)
			return
		}
		frameworkID = &id
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	stats, err := h.sys.EmbedAll(r.Context(), frameworkID, force)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}
