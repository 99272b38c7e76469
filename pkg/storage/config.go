package storage

import (
	"fmt"
	"os"
)

// Containers names the blob containers a document moves through.
type Containers struct {
	Input      string `toml:"input"`
	Processing string `toml:"processing"`
	Archive    string `toml:"archive"`
	Output     string `toml:"output"`
}

// All returns every configured container name in pipeline order.
func (c Containers) All() []string {
	return []string{c.Input, c.Processing, c.Archive, c.Output}
}

const (
	ProviderAzure  = "azure"
	ProviderMemory = "memory"
)

// Config holds blob storage connection parameters.
// For the azure provider ConnectionString takes precedence; otherwise
// ServiceURL is used with the default Azure credential chain.
type Config struct {
	Provider         string     `toml:"provider"`
	ConnectionString string     `toml:"connection_string"`
	ServiceURL       string     `toml:"service_url"`
	Containers       Containers `toml:"containers"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider            string
	ConnectionString    string
	ServiceURL          string
	InputContainer      string
	ProcessingContainer string
	ArchiveContainer    string
	OutputContainer     string
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
	if overlay.Containers.Input != "" {
		c.Containers.Input = overlay.Containers.Input
	}
	if overlay.Containers.Processing != "" {
		c.Containers.Processing = overlay.Containers.Processing
	}
	if overlay.Containers.Archive != "" {
		c.Containers.Archive = overlay.Containers.Archive
	}
	if overlay.Containers.Output != "" {
		c.Containers.Output = overlay.Containers.Output
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.Containers.Input == "" {
		c.Containers.Input = "input"
	}
	if c.Containers.Processing == "" {
		c.Containers.Processing = "processing"
	}
	if c.Containers.Archive == "" {
		c.Containers.Archive = "archive"
	}
	if c.Containers.Output == "" {
		c.Containers.Output = "output"
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
	set(env.InputContainer, &c.Containers.Input)
	set(env.ProcessingContainer, &c.Containers.Processing)
	set(env.ArchiveContainer, &c.Containers.Archive)
	set(env.OutputContainer, &c.Containers.Output)
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

	seen := make(map[string]bool, 4)
	for _, name := range c.Containers.All() {
		if seen[name] {
			return fmt.Errorf("duplicate container name: %s", name)
		}
		seen[name] = true
	}
	return nil
}
