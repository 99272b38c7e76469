// Package config loads the docket service configuration from config.toml,
// an optional environment overlay, and DOCKET_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/docket/internal/worker"
	"github.com/JaimeStill/docket/pkg/database"
	"github.com/JaimeStill/docket/pkg/docai"
	"github.com/JaimeStill/docket/pkg/geocode"
	"github.com/JaimeStill/docket/pkg/queue"
	"github.com/JaimeStill/docket/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvDocketEnv             = "DOCKET_ENV"
	EnvDocketShutdownTimeout = "DOCKET_SHUTDOWN_TIMEOUT"
	EnvDocketVersion         = "DOCKET_VERSION"
	EnvDocketLogLevel        = "DOCKET_LOG_LEVEL"
	EnvDocketLogFormat       = "DOCKET_LOG_FORMAT"
	EnvDocketStateStore      = "DOCKET_STATE_STORE"
)

// Record state store backends.
const (
	StateStorePostgres = "postgres"
	StateStoreMemory   = "memory"
)

var databaseEnv = &database.Env{
	URL:               "DOCKET_DB_URL",
	Host:              "DOCKET_DB_HOST",
	Port:              "DOCKET_DB_PORT",
	Name:              "DOCKET_DB_NAME",
	User:              "DOCKET_DB_USER",
	Password:          "DOCKET_DB_PASSWORD",
	SSLMode:           "DOCKET_DB_SSL_MODE",
	MaxConns:          "DOCKET_DB_MAX_CONNS",
	MinConns:          "DOCKET_DB_MIN_CONNS",
	ConnMaxLifetime:   "DOCKET_DB_CONN_MAX_LIFETIME",
	HealthCheckPeriod: "DOCKET_DB_HEALTH_CHECK_PERIOD",
	ConnTimeout:       "DOCKET_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:            "DOCKET_STORAGE_PROVIDER",
	ConnectionString:    "DOCKET_STORAGE_CONNECTION_STRING",
	ServiceURL:          "DOCKET_STORAGE_SERVICE_URL",
	InputContainer:      "DOCKET_STORAGE_INPUT_CONTAINER",
	ProcessingContainer: "DOCKET_STORAGE_PROCESSING_CONTAINER",
	ArchiveContainer:    "DOCKET_STORAGE_ARCHIVE_CONTAINER",
	OutputContainer:     "DOCKET_STORAGE_OUTPUT_CONTAINER",
}

var queueEnv = &queue.Env{
	Provider:         "DOCKET_QUEUE_PROVIDER",
	ConnectionString: "DOCKET_QUEUE_CONNECTION_STRING",
	ServiceURL:       "DOCKET_QUEUE_SERVICE_URL",
	PoisonSuffix:     "DOCKET_QUEUE_POISON_SUFFIX",
	MaxDeliveries:    "DOCKET_QUEUE_MAX_DELIVERIES",
}

var oracleEnv = &docai.Env{
	Project:         "DOCKET_ORACLE_PROJECT",
	Location:        "DOCKET_ORACLE_LOCATION",
	Endpoint:        "DOCKET_ORACLE_ENDPOINT",
	ProcessorPrefix: "DOCKET_ORACLE_PROCESSOR",
}

var enrichmentEnv = &geocode.Env{
	Enabled:  "DOCKET_ENRICHMENT_ENABLED",
	APIKey:   "DOCKET_ENRICHMENT_API_KEY",
	Language: "DOCKET_ENRICHMENT_LANGUAGE",
	Region:   "DOCKET_ENRICHMENT_REGION",
	BaseURL:  "DOCKET_ENRICHMENT_BASE_URL",
	Timeout:  "DOCKET_ENRICHMENT_TIMEOUT",
}

var pipelineEnv = &worker.Env{
	Stages:            "DOCKET_PIPELINE_STAGES",
	Concurrency:       "DOCKET_PIPELINE_CONCURRENCY",
	BatchSize:         "DOCKET_PIPELINE_BATCH_SIZE",
	PollInterval:      "DOCKET_PIPELINE_POLL_INTERVAL",
	VisibilityTimeout: "DOCKET_PIPELINE_VISIBILITY_TIMEOUT",
	QueuePrefix:       "DOCKET_PIPELINE_QUEUE_PREFIX",
	IntakeInterval:    "DOCKET_PIPELINE_INTAKE_INTERVAL",
}

// Config is the root configuration for the docket service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Queue           queue.Config    `toml:"queue"`
	API             APIConfig       `toml:"api"`
	Oracle          docai.Config    `toml:"oracle"`
	Enrichment      geocode.Config  `toml:"enrichment"`
	Pipeline        worker.Config   `toml:"pipeline"`
	StateStore      string          `toml:"state_store"`
	LogLevel        string          `toml:"log_level"`
	LogFormat       string          `toml:"log_format"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the DOCKET_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvDocketEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// SlogLevel returns LogLevel as a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.StateStore != "" {
		c.StateStore = overlay.StateStore
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.LogFormat != "" {
		c.LogFormat = overlay.LogFormat
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Queue.Merge(&overlay.Queue)
	c.API.Merge(&overlay.API)
	c.Oracle.Merge(&overlay.Oracle)
	c.Enrichment.Merge(&overlay.Enrichment)
	c.Pipeline.Merge(&overlay.Pipeline)
}

// Finalize applies defaults, environment variable overrides, and validation
// to the root config and every sub-config. The database section is only
// finalized when records are kept in PostgreSQL.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if c.StateStore == StateStorePostgres {
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Queue.Finalize(queueEnv); err != nil {
		return fmt.Errorf("queue: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Oracle.Finalize(oracleEnv); err != nil {
		return fmt.Errorf("oracle: %w", err)
	}
	if err := c.Enrichment.Finalize(enrichmentEnv); err != nil {
		return fmt.Errorf("enrichment: %w", err)
	}
	if err := c.Pipeline.Finalize(pipelineEnv); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.StateStore == "" {
		c.StateStore = StateStorePostgres
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvDocketStateStore); v != "" {
		c.StateStore = v
	}
	if v := os.Getenv(EnvDocketLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvDocketLogFormat); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv(EnvDocketShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvDocketVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	switch c.StateStore {
	case StateStorePostgres, StateStoreMemory:
	default:
		return fmt.Errorf("unsupported state_store: %s", c.StateStore)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvDocketEnv); env != "" {
		overlayPath := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(overlayPath); err == nil {
			return overlayPath
		}
	}
	return ""
}
