package api

import (
	"github.com/JaimeStill/docket/internal/config"
	"github.com/JaimeStill/docket/internal/infrastructure"
	"github.com/JaimeStill/docket/pkg/pagination"
)

// Runtime is the infrastructure as seen by the API module: the same
// subsystems with a module-scoped logger, plus API settings.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination    pagination.Config
	MaxUploadSize int64
}

// NewRuntime derives the API runtime from the shared infrastructure. The
// subsystems themselves are shared; only the logger is rescoped.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		MaxUploadSize:  cfg.API.MaxUploadSizeBytes(),
	}
}
