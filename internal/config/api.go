package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/docket/pkg/formatting"
	"github.com/JaimeStill/docket/pkg/middleware"
	"github.com/JaimeStill/docket/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "DOCKET_CORS_ENABLED",
	Origins:          "DOCKET_CORS_ORIGINS",
	AllowedMethods:   "DOCKET_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "DOCKET_CORS_ALLOWED_HEADERS",
	AllowCredentials: "DOCKET_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "DOCKET_CORS_MAX_AGE",
}

var authEnv = &middleware.AuthEnv{
	Enabled:  "DOCKET_AUTH_ENABLED",
	Issuer:   "DOCKET_AUTH_ISSUER",
	Audience: "DOCKET_AUTH_AUDIENCE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "DOCKET_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "DOCKET_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, authentication, and pagination settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Auth          middleware.AuthConfig `toml:"auth"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 25 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS, auth, and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Auth.Merge(&overlay.Auth)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "25MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("DOCKET_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("DOCKET_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
}
