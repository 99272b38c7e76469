package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "DOCKET_SERVER_HOST"
	EnvServerPort              = "DOCKET_SERVER_PORT"
	EnvServerReadTimeout       = "DOCKET_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "DOCKET_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "DOCKET_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "DOCKET_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "DOCKET_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ReadTimeoutDuration returns ReadTimeout as a time.Duration.
func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return mustDuration(c.ReadTimeout)
}

// ReadHeaderTimeoutDuration returns ReadHeaderTimeout as a time.Duration.
func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return mustDuration(c.ReadHeaderTimeout)
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return mustDuration(c.WriteTimeout)
}

// IdleTimeoutDuration returns IdleTimeout as a time.Duration.
func (c *ServerConfig) IdleTimeoutDuration() time.Duration {
	return mustDuration(c.IdleTimeout)
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.ShutdownTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for dst, src := range c.durations(overlay) {
		if *src != "" {
			*dst = *src
		}
	}
}

// durations pairs each duration field of c with the same field of other.
func (c *ServerConfig) durations(other *ServerConfig) map[*string]*string {
	return map[*string]*string{
		&c.ReadTimeout:       &other.ReadTimeout,
		&c.ReadHeaderTimeout: &other.ReadHeaderTimeout,
		&c.WriteTimeout:      &other.WriteTimeout,
		&c.IdleTimeout:       &other.IdleTimeout,
		&c.ShutdownTimeout:   &other.ShutdownTimeout,
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "1m"
	}
	if c.ReadHeaderTimeout == "" {
		c.ReadHeaderTimeout = "10s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "2m"
	}
	if c.IdleTimeout == "" {
		c.IdleTimeout = "2m"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv(EnvServerReadTimeout); v != "" {
		c.ReadTimeout = v
	}
	if v := os.Getenv(EnvServerReadHeaderTimeout); v != "" {
		c.ReadHeaderTimeout = v
	}
	if v := os.Getenv(EnvServerWriteTimeout); v != "" {
		c.WriteTimeout = v
	}
	if v := os.Getenv(EnvServerIdleTimeout); v != "" {
		c.IdleTimeout = v
	}
	if v := os.Getenv(EnvServerShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	fields := []struct {
		name  string
		value string
	}{
		{"read_timeout", c.ReadTimeout},
		{"read_header_timeout", c.ReadHeaderTimeout},
		{"write_timeout", c.WriteTimeout},
		{"idle_timeout", c.IdleTimeout},
		{"shutdown_timeout", c.ShutdownTimeout},
	}
	for _, f := range fields {
		if _, err := time.ParseDuration(f.value); err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
	}
	return nil
}

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
