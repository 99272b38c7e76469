package docai

import (
	"fmt"
	"os"
	"strings"
)

// Config holds Document AI connection parameters and the mapping from
// symbolic processor keys to deployed processors.
type Config struct {
	Project    string            `toml:"project"`
	Location   string            `toml:"location"`
	Endpoint   string            `toml:"endpoint"`
	Processors map[string]string `toml:"processors"`
}

// Env maps config fields to environment variable names for override injection.
// ProcessorPrefix names a prefix; PREFIX_<KEY> overrides processors[key].
type Env struct {
	Project         string
	Location        string
	Endpoint        string
	ProcessorPrefix string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	if c.Endpoint == "" {
		c.Endpoint = fmt.Sprintf("%s-documentai.googleapis.com:443", c.Location)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Processor entries are merged per key.
func (c *Config) Merge(overlay *Config) {
	if overlay.Project != "" {
		c.Project = overlay.Project
	}
	if overlay.Location != "" {
		c.Location = overlay.Location
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if len(overlay.Processors) > 0 && c.Processors == nil {
		c.Processors = make(map[string]string, len(overlay.Processors))
	}
	for k, v := range overlay.Processors {
		c.Processors[k] = v
	}
}

// ResourceName resolves a symbolic processor key to its full resource name.
// Values already of the form projects/... are returned unchanged.
func (c *Config) ResourceName(key string) (string, error) {
	id, ok := c.Processors[key]
	if !ok || id == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownProcessor, key)
	}
	if strings.HasPrefix(id, "projects/") {
		return id, nil
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.Project, c.Location, id), nil
}

func (c *Config) loadDefaults() {
	if c.Location == "" {
		c.Location = "eu"
	}
	if c.Processors == nil {
		c.Processors = make(map[string]string)
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Project != "" {
		if v := os.Getenv(env.Project); v != "" {
			c.Project = v
		}
	}
	if env.Location != "" {
		if v := os.Getenv(env.Location); v != "" {
			c.Location = v
		}
	}
	if env.Endpoint != "" {
		if v := os.Getenv(env.Endpoint); v != "" {
			c.Endpoint = v
		}
	}
	if env.ProcessorPrefix != "" {
		for key := range c.Processors {
			name := env.ProcessorPrefix + strings.ToUpper(key)
			if v := os.Getenv(name); v != "" {
				c.Processors[key] = v
			}
		}
	}
}

func (c *Config) validate() error {
	for key, id := range c.Processors {
		if id == "" {
			return fmt.Errorf("processor %s: id required", key)
		}
		if !strings.HasPrefix(id, "projects/") && c.Project == "" {
			return fmt.Errorf("processor %s: project required for short processor ids", key)
		}
	}
	return nil
}
