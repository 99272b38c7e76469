package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/docket/internal/config"
)

const baseConfig = `
state_store = "postgres"
log_level = "debug"
shutdown_timeout = "20s"

[server]
port = 8080

[database]
name = "docket"
user = "docket"
password = "docket"

[storage]
provider = "memory"

[storage.containers]
input = "eingang"

[queue]
provider = "memory"
max_deliveries = 4

[api]
max_upload_size = "10MB"

[api.pagination]
default_page_size = 25
max_page_size = 50

[oracle]
project = "docket-dev"

[oracle.processors]
broad = "a1b2c3"
general_extractor = "d4e5f6"

[enrichment]
enabled = false

[pipeline]
concurrency = 2
stages = ["classify", "extract"]
`

const overlayConfig = `
[server]
port = 9090

[pipeline]
concurrency = 6
`

const minimalConfig = `
state_store = "memory"

[storage]
provider = "memory"

[queue]
provider = "memory"

[enrichment]
enabled = false
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.StateStore != config.StateStorePostgres {
		t.Errorf("state_store: got %s, want postgres", cfg.StateStore)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("log level: got %s, want DEBUG", cfg.SlogLevel())
	}
	if cfg.ShutdownTimeoutDuration() != 20*time.Second {
		t.Errorf("shutdown_timeout: got %s", cfg.ShutdownTimeout)
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Name != "docket" {
		t.Errorf("database: got host %s name %s", cfg.Database.Host, cfg.Database.Name)
	}
	if cfg.Storage.Containers.Input != "eingang" {
		t.Errorf("input container: got %s, want eingang", cfg.Storage.Containers.Input)
	}
	if cfg.Queue.MaxDeliveries != 4 {
		t.Errorf("max_deliveries: got %d, want 4", cfg.Queue.MaxDeliveries)
	}
	if cfg.API.MaxUploadSizeBytes() != 10*1024*1024 {
		t.Errorf("max_upload_size: got %d bytes", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.API.Pagination.DefaultPageSize != 25 || cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination: got %+v", cfg.API.Pagination)
	}
	if cfg.Oracle.Processors["broad"] != "a1b2c3" {
		t.Errorf("oracle processors: got %v", cfg.Oracle.Processors)
	}
	if cfg.Enrichment.IsEnabled() {
		t.Error("enrichment should be disabled")
	}
	if len(cfg.Pipeline.Stages) != 2 || cfg.Pipeline.Concurrency != 2 {
		t.Errorf("pipeline: got stages %v concurrency %d", cfg.Pipeline.Stages, cfg.Pipeline.Concurrency)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("DOCKET_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Pipeline.Concurrency != 6 {
		t.Errorf("concurrency: got %d, want 6", cfg.Pipeline.Concurrency)
	}
	if cfg.Database.Name != "docket" {
		t.Errorf("db name should be preserved from base, got %s", cfg.Database.Name)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("DOCKET_STATE_STORE", "memory")
	t.Setenv("DOCKET_STORAGE_PROVIDER", "memory")
	t.Setenv("DOCKET_QUEUE_PROVIDER", "memory")
	t.Setenv("DOCKET_ENRICHMENT_ENABLED", "false")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr: got %s", cfg.Server.Addr())
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base_path: got %s", cfg.API.BasePath)
	}
	if cfg.Pipeline.QueuePrefix != "docket-" {
		t.Errorf("queue_prefix: got %s", cfg.Pipeline.QueuePrefix)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	t.Setenv("DOCKET_SERVER_PORT", "7070")
	t.Setenv("DOCKET_LOG_FORMAT", "json")
	t.Setenv("DOCKET_PIPELINE_STAGES", "postprocess")
	t.Setenv("DOCKET_API_MAX_UPLOAD_SIZE", "1MB")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port: got %d, want 7070", cfg.Server.Port)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("log_format: got %s, want json", cfg.LogFormat)
	}
	if len(cfg.Pipeline.Stages) != 1 || cfg.Pipeline.Stages[0] != "postprocess" {
		t.Errorf("stages: got %v", cfg.Pipeline.Stages)
	}
	if cfg.API.MaxUploadSizeBytes() != 1024*1024 {
		t.Errorf("max_upload_size: got %d", cfg.API.MaxUploadSizeBytes())
	}
}

func TestMemoryStateStoreSkipsDatabase(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	if _, err := config.Load(); err != nil {
		t.Fatalf("memory state store should not require database settings: %v", err)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown state store", map[string]string{"DOCKET_STATE_STORE": "redis"}, "state_store"},
		{"bad log level", map[string]string{"DOCKET_LOG_LEVEL": "loud"}, "log_level"},
		{"bad log format", map[string]string{"DOCKET_LOG_FORMAT": "xml"}, "log_format"},
		{"bad shutdown timeout", map[string]string{"DOCKET_SHUTDOWN_TIMEOUT": "later"}, "shutdown_timeout"},
		{"bad server port", map[string]string{"DOCKET_SERVER_PORT": "70000"}, "server"},
		{"postgres without database", map[string]string{"DOCKET_STATE_STORE": "postgres"}, "database"},
		{"azure storage without credentials", map[string]string{"DOCKET_STORAGE_PROVIDER": "azure"}, "storage"},
		{"azure queue without credentials", map[string]string{"DOCKET_QUEUE_PROVIDER": "azure"}, "queue"},
		{"bad upload size", map[string]string{"DOCKET_API_MAX_UPLOAD_SIZE": "huge"}, "max_upload_size"},
		{"enrichment without key", map[string]string{"DOCKET_ENRICHMENT_ENABLED": "true"}, "enrichment"},
		{"unknown pipeline stage", map[string]string{"DOCKET_PIPELINE_STAGES": "export"}, "pipeline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", minimalConfig)
			chdir(t, dir)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
