package worker

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/docket/internal/workflow"
)

// Config controls how stage queues are consumed.
type Config struct {
	Stages            []string `toml:"stages"`
	Concurrency       int      `toml:"concurrency"`
	BatchSize         int32    `toml:"batch_size"`
	PollInterval      string   `toml:"poll_interval"`
	VisibilityTimeout string   `toml:"visibility_timeout"`
	QueuePrefix       string   `toml:"queue_prefix"`
	IntakeInterval    string   `toml:"intake_interval"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Stages            string
	Concurrency       string
	BatchSize         string
	PollInterval      string
	VisibilityTimeout string
	QueuePrefix       string
	IntakeInterval    string
}

// StageNames returns the configured stages as workflow stage names.
func (c *Config) StageNames() []workflow.StageName {
	names := make([]workflow.StageName, len(c.Stages))
	for i, s := range c.Stages {
		names[i] = workflow.StageName(s)
	}
	return names
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *Config) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// VisibilityTimeoutDuration returns VisibilityTimeout as a time.Duration.
func (c *Config) VisibilityTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.VisibilityTimeout)
	return d
}

// IntakeIntervalDuration returns IntakeInterval as a time.Duration.
// Zero disables the input container sweep.
func (c *Config) IntakeIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.IntakeInterval)
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
	if len(overlay.Stages) > 0 {
		c.Stages = overlay.Stages
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.BatchSize != 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.VisibilityTimeout != "" {
		c.VisibilityTimeout = overlay.VisibilityTimeout
	}
	if overlay.QueuePrefix != "" {
		c.QueuePrefix = overlay.QueuePrefix
	}
	if overlay.IntakeInterval != "" {
		c.IntakeInterval = overlay.IntakeInterval
	}
}

func (c *Config) loadDefaults() {
	if len(c.Stages) == 0 {
		for _, s := range workflow.StageNames() {
			c.Stages = append(c.Stages, string(s))
		}
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
	if c.BatchSize == 0 {
		c.BatchSize = 16
	}
	if c.PollInterval == "" {
		c.PollInterval = "2s"
	}
	if c.VisibilityTimeout == "" {
		c.VisibilityTimeout = "5m"
	}
	if c.QueuePrefix == "" {
		c.QueuePrefix = "docket-"
	}
	if c.IntakeInterval == "" {
		c.IntakeInterval = "0s"
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

	if env.Stages != "" {
		if v := os.Getenv(env.Stages); v != "" {
			c.Stages = nil
			for s := range strings.SplitSeq(v, ",") {
				if s = strings.TrimSpace(s); s != "" {
					c.Stages = append(c.Stages, s)
				}
			}
		}
	}
	if env.Concurrency != "" {
		if v := os.Getenv(env.Concurrency); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Concurrency = n
			}
		}
	}
	if env.BatchSize != "" {
		if v := os.Getenv(env.BatchSize); v != "" {
			if n, err := strconv.ParseInt(v, 10, 32); err == nil {
				c.BatchSize = int32(n)
			}
		}
	}
	set(env.PollInterval, &c.PollInterval)
	set(env.VisibilityTimeout, &c.VisibilityTimeout)
	set(env.QueuePrefix, &c.QueuePrefix)
	set(env.IntakeInterval, &c.IntakeInterval)
}

func (c *Config) validate() error {
	for _, s := range c.Stages {
		if _, err := workflow.StageFor(workflow.StageName(s)); err != nil {
			return fmt.Errorf("invalid stages: %w", err)
		}
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive: %d", c.Concurrency)
	}
	// Azure Queue Storage caps a single receive at 32 messages.
	if c.BatchSize < 1 || c.BatchSize > 32 {
		return fmt.Errorf("batch_size must be between 1 and 32: %d", c.BatchSize)
	}
	if d, err := time.ParseDuration(c.PollInterval); err != nil || d <= 0 {
		return fmt.Errorf("invalid poll_interval: %s", c.PollInterval)
	}
	if d, err := time.ParseDuration(c.VisibilityTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid visibility_timeout: %s", c.VisibilityTimeout)
	}
	if d, err := time.ParseDuration(c.IntakeInterval); err != nil || d < 0 {
		return fmt.Errorf("invalid intake_interval: %s", c.IntakeInterval)
	}
	return nil
}
