// Package database provides PostgreSQL connection pooling with lifecycle coordination.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JaimeStill/docket/pkg/lifecycle"
)

// System manages the connection pool and lifecycle coordination.
type System interface {
	// Pool returns the underlying pgx connection pool.
	Pool() *pgxpool.Pool
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	pool        *pgxpool.Pool
	logger      *slog.Logger
	connTimeout time.Duration
}

// New parses the configuration into a pool. pgxpool connects lazily, so no
// connection is attempted until the first query or the Start ping.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetimeDuration()
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriodDuration()
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnTimeoutDuration()

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	return &database{
		pool:        pool,
		logger:      logger.With("system", "database"),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Pool() *pgxpool.Pool {
	return d.pool
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database pool")

	lc.OnStartup(func() {
		pingCtx, cancel := context.WithTimeout(lc.Context(), d.connTimeout)
		defer cancel()

		if err := d.pool.Ping(pingCtx); err != nil {
			d.logger.Error("database ping failed", "error", err)
			return
		}

		d.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.logger.Info("closing database pool")
		d.pool.Close()
		d.logger.Info("database pool closed")
	})

	return nil
}
