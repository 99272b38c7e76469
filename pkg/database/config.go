package database

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds PostgreSQL connection and pool parameters.
// When URL is set it takes precedence over the discrete connection fields.
type Config struct {
	URL               string `toml:"url"`
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	Name              string `toml:"name"`
	User              string `toml:"user"`
	Password          string `toml:"password"`
	SSLMode           string `toml:"ssl_mode"`
	MaxConns          int32  `toml:"max_conns"`
	MinConns          int32  `toml:"min_conns"`
	ConnMaxLifetime   string `toml:"conn_max_lifetime"`
	HealthCheckPeriod string `toml:"health_check_period"`
	ConnTimeout       string `toml:"conn_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URL               string
	Host              string
	Port              string
	Name              string
	User              string
	Password          string
	SSLMode           string
	MaxConns          string
	MinConns          string
	ConnMaxLifetime   string
	HealthCheckPeriod string
	ConnTimeout       string
}

// ConnMaxLifetimeDuration returns ConnMaxLifetime as a time.Duration.
func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// HealthCheckPeriodDuration returns HealthCheckPeriod as a time.Duration.
func (c *Config) HealthCheckPeriodDuration() time.Duration {
	d, _ := time.ParseDuration(c.HealthCheckPeriod)
	return d
}

// ConnTimeoutDuration returns ConnTimeout as a time.Duration.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// ConnString returns a postgres:// connection URL.
func (c *Config) ConnString() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
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
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.User != "" {
		c.User = overlay.User
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.SSLMode != "" {
		c.SSLMode = overlay.SSLMode
	}
	if overlay.MaxConns != 0 {
		c.MaxConns = overlay.MaxConns
	}
	if overlay.MinConns != 0 {
		c.MinConns = overlay.MinConns
	}
	if overlay.ConnMaxLifetime != "" {
		c.ConnMaxLifetime = overlay.ConnMaxLifetime
	}
	if overlay.HealthCheckPeriod != "" {
		c.HealthCheckPeriod = overlay.HealthCheckPeriod
	}
	if overlay.ConnTimeout != "" {
		c.ConnTimeout = overlay.ConnTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxConns == 0 {
		c.MaxConns = 16
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "30m"
	}
	if c.HealthCheckPeriod == "" {
		c.HealthCheckPeriod = "1m"
	}
	if c.ConnTimeout == "" {
		c.ConnTimeout = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setInt32 := func(name string, dst *int32) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.ParseInt(v, 10, 32); err == nil {
				*dst = int32(n)
			}
		}
	}

	setString(env.URL, &c.URL)
	setString(env.Host, &c.Host)
	if env.Port != "" {
		if v := os.Getenv(env.Port); v != "" {
			if port, err := strconv.Atoi(v); err == nil {
				c.Port = port
			}
		}
	}
	setString(env.Name, &c.Name)
	setString(env.User, &c.User)
	setString(env.Password, &c.Password)
	setString(env.SSLMode, &c.SSLMode)
	setInt32(env.MaxConns, &c.MaxConns)
	setInt32(env.MinConns, &c.MinConns)
	setString(env.ConnMaxLifetime, &c.ConnMaxLifetime)
	setString(env.HealthCheckPeriod, &c.HealthCheckPeriod)
	setString(env.ConnTimeout, &c.ConnTimeout)
}

func (c *Config) validate() error {
	if c.URL == "" {
		if c.Name == "" {
			return fmt.Errorf("name required")
		}
		if c.User == "" {
			return fmt.Errorf("user required")
		}
	}
	if c.MinConns < 0 || c.MinConns > c.MaxConns {
		return fmt.Errorf("invalid min_conns: %d (max_conns %d)", c.MinConns, c.MaxConns)
	}
	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid conn_max_lifetime: %w", err)
	}
	if _, err := time.ParseDuration(c.HealthCheckPeriod); err != nil {
		return fmt.Errorf("invalid health_check_period: %w", err)
	}
	if _, err := time.ParseDuration(c.ConnTimeout); err != nil {
		return fmt.Errorf("invalid conn_timeout: %w", err)
	}
	return nil
}
