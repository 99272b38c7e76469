package intake

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/docket/pkg/handlers"
	"github.com/JaimeStill/docket/pkg/routes"
)

// Handler provides HTTP endpoints for document intake.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// IngestRequest names a blob already present in the input container.
type IngestRequest struct {
	Name string `json:"name"`
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "intake"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for intake endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:     "/documents",
		Middleware: []func(http.Handler) http.Handler{routes.MaxBytes(h.maxUploadSize)},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/ingest", Handler: h.Ingest},
		},
	}
}

// Upload accepts a multipart form with a "file" part and starts the pipeline for it.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	rec, err := h.sys.Upload(r.Context(), header.Filename, data)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, rec)
}

// Ingest starts the pipeline for a blob already in the input container.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[IngestRequest](r)
	if err != nil || req.Name == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	rec, err := h.sys.Ingest(r.Context(), req.Name)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, rec)
}
