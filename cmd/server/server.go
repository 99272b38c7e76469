package main

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/docket/internal/config"
	"github.com/JaimeStill/docket/internal/infrastructure"
	"github.com/JaimeStill/docket/pkg/lifecycle"
)

// Server owns the infrastructure, the mounted modules, the HTTP listener
// and the stage workers.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

// NewServer builds every subsystem without starting any of them. ctx bounds
// construction-time network calls such as OIDC discovery.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("infrastructure: %w", err)
	}

	modules, err := NewModules(ctx, infra, cfg)
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"stages", cfg.Pipeline.Stages,
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start registers infrastructure, workers and the listener with the
// lifecycle in that order. Stage queues are created during infrastructure
// startup, before any consumer polls them.
func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	starters := []struct {
		name  string
		start func(*lifecycle.Coordinator) error
	}{
		{"infrastructure", func(*lifecycle.Coordinator) error {
			return s.infra.Start(s.modules.Domain.Worker.Queues()...)
		}},
		{"worker", s.modules.Domain.Worker.Start},
		{"http", s.http.Start},
	}

	for _, st := range starters {
		if err := st.start(s.infra.Lifecycle); err != nil {
			return fmt.Errorf("start %s: %w", st.name, err)
		}
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
