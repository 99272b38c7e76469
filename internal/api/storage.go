package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"slices"

	"github.com/JaimeStill/docket/pkg/handlers"
	"github.com/JaimeStill/docket/pkg/routes"
	"github.com/JaimeStill/docket/pkg/storage"
)

type storageHandler struct {
	store      storage.System
	containers storage.Containers
	logger     *slog.Logger
}

func newStorageHandler(
	store storage.System,
	containers storage.Containers,
	logger *slog.Logger,
) *storageHandler {
	return &storageHandler{
		store:      store,
		containers: containers,
		logger:     logger.With("handler", "storage"),
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/storage",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{container}", Handler: h.list},
			{Method: "GET", Pattern: "/{container}/{key...}", Handler: h.download},
		},
	}
}

func (h *storageHandler) container(r *http.Request) (string, error) {
	name := r.PathValue("container")
	if !slices.Contains(h.containers.All(), name) {
		return "", fmt.Errorf("%w: %s", storage.ErrUnknownContainer, name)
	}
	return name, nil
}

func (h *storageHandler) list(w http.ResponseWriter, r *http.Request) {
	container, err := h.container(r)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	keys, err := h.store.List(r.Context(), container)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"container": container,
		"keys":      keys,
	})
}

func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	container, err := h.container(r)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	key := r.PathValue("key")

	body, err := h.store.Download(r.Context(), container, key)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	defer body.Close()

	contentType := "application/octet-stream"
	switch path.Ext(key) {
	case ".pdf":
		contentType = "application/pdf"
	case ".json":
		contentType = "application/json"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}
