package records

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/docket/pkg/handlers"
	"github.com/JaimeStill/docket/pkg/pagination"
	"github.com/JaimeStill/docket/pkg/routes"
)

// Handler provides HTTP endpoints for reading document records.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "records"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for record endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/records",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Get},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
		},
	}
}

// List returns a paginated list of records with optional query parameter filters.
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

// Get returns a single record by document identity.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.sys.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching records.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[SearchRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
