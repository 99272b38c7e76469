package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/docket/internal/api"
	"github.com/JaimeStill/docket/internal/config"
	"github.com/JaimeStill/docket/internal/infrastructure"
	"github.com/JaimeStill/docket/pkg/module"
)

type Modules struct {
	API    *module.Module
	Domain *api.Domain
}

func NewModules(ctx context.Context, infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	runtime := api.NewRuntime(cfg, infra)

	domain, err := api.NewDomain(cfg, runtime)
	if err != nil {
		return nil, err
	}

	apiModule, err := api.NewModule(ctx, cfg, runtime, domain)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API:    apiModule,
		Domain: domain,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	return router
}
