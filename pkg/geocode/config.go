package geocode

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds Places text search parameters.
type Config struct {
	Enabled  *bool  `toml:"enabled"`
	APIKey   string `toml:"api_key"`
	Language string `toml:"language"`
	Region   string `toml:"region"`
	BaseURL  string `toml:"base_url"`
	Timeout  string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled  string
	APIKey   string
	Language string
	Region   string
	BaseURL  string
	Timeout  string
}

// IsEnabled reports whether lookups are performed.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled != nil {
		c.Enabled = overlay.Enabled
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Language != "" {
		c.Language = overlay.Language
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.Language == "" {
		c.Language = "de"
	}
	if c.Region == "" {
		c.Region = "de"
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Enabled = &b
			}
		}
	}
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	set(env.APIKey, &c.APIKey)
	set(env.Language, &c.Language)
	set(env.Region, &c.Region)
	set(env.BaseURL, &c.BaseURL)
	set(env.Timeout, &c.Timeout)
}

func (c *Config) validate() error {
	if c.IsEnabled() && c.APIKey == "" {
		return fmt.Errorf("api_key required when enabled")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
