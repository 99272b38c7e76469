package api

import (
	"net/http"

	"github.com/JaimeStill/docket/internal/config"
	"github.com/JaimeStill/docket/internal/workflow"
	"github.com/JaimeStill/docket/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	storageHandler := newStorageHandler(
		runtime.Storage,
		cfg.Storage.Containers,
		runtime.Logger,
	)

	routes.Register(
		mux,
		domain.Records.Handler().Routes(),
		workflow.NewHandler(domain.Pipeline).Routes(),
		domain.Intake.Handler(runtime.MaxUploadSize).Routes(),
		storageHandler.routes(),
	)
}
