package similarity

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/pkg/handlers"
	"github.com/concordsec/concord/pkg/routes"
)

// Handler provides HTTP endpoints for similarity searches.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "similarity"),
	}
}

// Routes returns the route group definition for similarity endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/similarity",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/requirements/{id}", Handler: h.FindSimilar},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/matrix", Handler: h.Matrix},
			{Method: "GET", Pattern: "/candidates", Handler: h.Candidates},
		},
	}
}

func optionsFromQuery(values url.Values) (Options, error) {
	var opts Options

	if t := values.Get("threshold"); t != "" {
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return opts, err
		}
		opts.Threshold = parsed
	}
	if k := values.Get("top_k"); k != "" {
		parsed, err := strconv.Atoi(k)
		if err != nil {
			return opts, err
		}
		opts.TopK = parsed
	}
	for _, f := range values["framework_id"] {
		id, err := uuid.Parse(f)
		if err != nil {
			return opts, err
		}
		opts.FrameworkIDs = append(opts.FrameworkIDs, id)
	}
	opts.ExcludeSameFramework, _ = strconv.ParseBool(values.Get("exclude_same_framework"))
	opts.OnlyAssessable, _ = strconv.ParseBool(values.Get("only_assessable"))

	return opts, nil
}

// FindSimilar ranks requirements similar to the one identified in the path.
func (h *Handler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, frameworks.ErrRequirementNotFound)
		return
	}

	opts, err := optionsFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	matches, err := h.sys.FindSimilar(r.Context(), id, opts)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, matches)
}

// Search ranks requirements against free text supplied in the body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var cmd struct {
		Text           string      `json:"text"`
		Threshold      float64     `json:"threshold"`
		TopK           int         `json:"top_k"`
		FrameworkIDs   []uuid.UUID `json:"framework_ids"`
		OnlyAssessable bool        `json:"only_assessable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if cmd.Text == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyQuery)
		return
	}

	matches, err := h.sys.FindSimilarToText(r.Context(), cmd.Text, Options{
		Threshold:      cmd.Threshold,
		TopK:           cmd.TopK,
		FrameworkIDs:   cmd.FrameworkIDs,
		OnlyAssessable: cmd.OnlyAssessable,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, matches)
}

// Matrix computes the pairwise similarity matrix for a framework set.
func (h *Handler) Matrix(w http.ResponseWriter, r *http.Request) {
	var cmd struct {
		FrameworkIDs   []uuid.UUID `json:"framework_ids"`
		OnlyAssessable bool        `json:"only_assessable"`
		Threshold      float64     `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	matrix, err := h.sys.BuildMatrix(r.Context(), cmd.FrameworkIDs, cmd.OnlyAssessable, cmd.Threshold)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, matrix)
}

// Candidates ranks cross-framework requirement pairs for crosswalk review.
func (h *Handler) Candidates(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	sourceID, err := uuid.Parse(values.Get("source_framework_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, frameworks.ErrNotFound)
		return
	}
	targetID, err := uuid.Parse(values.Get("target_framework_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, frameworks.ErrNotFound)
		return
	}

	opts, err := optionsFromQuery(values)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	candidates, err := h.sys.CrossFrameworkCandidates(r.Context(), sourceID, targetID, opts.Threshold, opts.TopK)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, candidates)
}
