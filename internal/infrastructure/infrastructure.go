// Package infrastructure provides core service initialization for application startup.
// It assembles the shared systems (logging, database, blob storage, queues,
// the document oracle and address enrichment) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/api/option"

	"github.com/JaimeStill/docket/internal/config"
	"github.com/JaimeStill/docket/pkg/database"
	"github.com/JaimeStill/docket/pkg/docai"
	"github.com/JaimeStill/docket/pkg/geocode"
	"github.com/JaimeStill/docket/pkg/lifecycle"
	"github.com/JaimeStill/docket/pkg/queue"
	"github.com/JaimeStill/docket/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil when records are kept in memory.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Queue     queue.System
	Oracle    docai.System
	Geocoder  geocode.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// oracleOpts are passed to the Document AI client.
func New(cfg *config.Config, oracleOpts ...option.ClientOption) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(cfg, os.Stderr)

	var db database.System
	if cfg.StateStore == config.StateStorePostgres {
		var err error
		db, err = database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	q, err := queue.New(&cfg.Queue, logger)
	if err != nil {
		return nil, fmt.Errorf("queue init failed: %w", err)
	}

	oracle, err := docai.New(context.Background(), &cfg.Oracle, logger, oracleOpts...)
	if err != nil {
		return nil, fmt.Errorf("oracle init failed: %w", err)
	}

	geocoder, err := geocode.New(&cfg.Enrichment, logger)
	if err != nil {
		return nil, fmt.Errorf("enrichment init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Queue:     q,
		Oracle:    oracle,
		Geocoder:  geocoder,
	}, nil
}

// NewLogger builds the service logger from the configured level and format.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// queues names the stage queues to create alongside their poison queues.
func (i *Infrastructure) Start(queues ...string) error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Queue.Start(i.Lifecycle, queues...); err != nil {
		return fmt.Errorf("queue start failed: %w", err)
	}
	if err := i.Oracle.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("oracle start failed: %w", err)
	}
	return nil
}
