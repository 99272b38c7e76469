// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JaimeStill/docket/internal/config"
	"github.com/JaimeStill/docket/pkg/middleware"
	"github.com/JaimeStill/docket/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// When auth is enabled the issuer's OIDC discovery document is fetched here.
func NewModule(ctx context.Context, cfg *config.Config, runtime *Runtime, domain *Domain) (*module.Module, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	if cfg.API.Auth.Enabled {
		verifier, err := middleware.NewVerifier(ctx, &cfg.API.Auth)
		if err != nil {
			return nil, fmt.Errorf("auth: %w", err)
		}
		m.Use(middleware.Auth(verifier, runtime.Logger, cfg.API.Auth.SkipPaths...))
	}

	return m, nil
}
