package pagination

import (
	"fmt"
	"os"
	"strconv"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Config bounds the page sizes a client may request.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ConfigEnv maps environment variable names for pagination configuration.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		setInt(env.DefaultPageSize, &c.DefaultPageSize)
		setInt(env.MaxPageSize, &c.MaxPageSize)
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultPageSize != 0 {
		c.DefaultPageSize = overlay.DefaultPageSize
	}
	if overlay.MaxPageSize != 0 {
		c.MaxPageSize = overlay.MaxPageSize
	}
}

func (c *Config) loadDefaults() {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = defaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = maxPageSize
	}
}

func setInt(name string, dst *int) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) validate() error {
	switch {
	case c.DefaultPageSize < 1:
		return fmt.Errorf("default_page_size must be positive: %d", c.DefaultPageSize)
	case c.MaxPageSize < 1:
		return fmt.Errorf("max_page_size must be positive: %d", c.MaxPageSize)
	case c.DefaultPageSize > c.MaxPageSize:
		return fmt.Errorf("default_page_size %d cannot exceed max_page_size %d", c.DefaultPageSize, c.MaxPageSize)
	}
	return nil
}
