package workflow

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/docket/pkg/handlers"
	"github.com/JaimeStill/docket/pkg/routes"
)

// Handler provides HTTP endpoints for manual pipeline intervention.
type Handler struct {
	rt     *Runtime
	logger *slog.Logger
}

// RetryRequest names the stage to re-trigger.
type RetryRequest struct {
	Stage StageName `json:"stage"`
}

// NewHandler creates a Handler over rt.
func NewHandler(rt *Runtime) *Handler {
	return &Handler{
		rt:     rt,
		logger: rt.Logger.With("handler", "workflow"),
	}
}

// Routes returns the route group definition for pipeline endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/records",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{id}/retry", Handler: h.Retry},
		},
	}
}

// Retry republishes the trigger of a stage for an existing record.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[RetryRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	id := r.PathValue("id")
	if _, err := StageFor(req.Stage); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if _, err := h.rt.Records.Get(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	trigger, err := Dispatch(r.Context(), h.rt, req.Stage, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.logger.InfoContext(r.Context(), "stage retry requested", "document_id", id, "stage", req.Stage)
	handlers.RespondJSON(w, http.StatusAccepted, trigger)
}
