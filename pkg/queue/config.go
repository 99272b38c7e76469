package queue

import (
	"fmt"
	"os"
	"strconv"
)

const (
	ProviderAzure  = "azure"
	ProviderMemory = "memory"
)

// Config holds message channel connection parameters.
// ConnectionString takes precedence; otherwise ServiceURL is used with
// the default Azure credential chain.
type Config struct {
	Provider         string `toml:"provider"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
	PoisonSuffix     string `toml:"poison_suffix"`
	MaxDeliveries    int64  `toml:"max_deliveries"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	ConnectionString string
	ServiceURL       string
	PoisonSuffix     string
	MaxDeliveries    string
}

// PoisonQueue returns the dead-letter queue name for the given queue.
func (c *Config) PoisonQueue(name string) string {
	return name + c.PoisonSuffix
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.ServiceURL != "" {
		c.ServiceURL = overlay.ServiceURL
	}
	if overlay.PoisonSuffix != "" {
		c.PoisonSuffix = overlay.PoisonSuffix
	}
	if overlay.MaxDeliveries != 0 {
		c.MaxDeliveries = overlay.MaxDeliveries
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.PoisonSuffix == "" {
		c.PoisonSuffix = "-poison"
	}
	if c.MaxDeliveries == 0 {
		c.MaxDeliveries = 5
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.ConnectionString, &c.ConnectionString)
	set(env.ServiceURL, &c.ServiceURL)
	set(env.PoisonSuffix, &c.PoisonSuffix)
	if env.MaxDeliveries != "" {
		if v := os.Getenv(env.MaxDeliveries); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				c.MaxDeliveries = n
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderAzure:
		if c.ConnectionString == "" && c.ServiceURL == "" {
			return fmt.Errorf("connection_string or service_url required")
		}
	case ProviderMemory:
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}
	if c.MaxDeliveries < 1 {
		return fmt.Errorf("max_deliveries must be positive")
	}
	return nil
}
