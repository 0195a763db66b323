// Package config holds the server's fixed, explicit configuration —
// the CLI surface described for relayproxy — resolved once at startup
// and threaded through the pipeline rather than read from global state.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the resolved configuration for one server run.
type Config struct {
	// ListenAddr and Port form the local listening address.
	ListenAddr string
	Port       uint16

	// ForwardTo is the upstream base URL every inbound request is
	// rewritten onto.
	ForwardTo string

	// Record is true for record mode, false for replay mode. Ignored
	// (the server runs passthrough) when Dir is empty.
	Record bool

	// Dir is the recording directory. Empty means passthrough.
	Dir string

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string

	// RateLimit is the sustained requests-per-second allowed through
	// the pipeline. Zero disables rate limiting.
	RateLimit float64

	// MaxConcurrent caps in-flight requests. Zero disables the limit.
	MaxConcurrent int

	// UpstreamTimeout bounds each upstream exchange performed by the
	// forwarder.
	UpstreamTimeout time.Duration
}

// Default returns a Config carrying the documented defaults, before
// flags are applied.
func Default() *Config {
	return &Config{
		ListenAddr:      "localhost",
		Port:            3333,
		LogLevel:        "info",
		UpstreamTimeout: 30 * time.Second,
	}
}

// Addr returns the local listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ListenAddr, c.Port)
}

// UpstreamURL parses ForwardTo into a *url.URL.
func (c *Config) UpstreamURL() (*url.URL, error) {
	u, err := url.Parse(c.ForwardTo)
	if err != nil {
		return nil, fmt.Errorf("parsing --forward-to: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("--forward-to must be an absolute URL, got %q", c.ForwardTo)
	}
	return u, nil
}

// RecordDir returns Dir with any trailing slashes stripped, the form
// the pipeline composes snapshot file paths from.
func (c *Config) RecordDir() string {
	return strings.TrimRight(c.Dir, "/")
}

// Validate checks the fields required for the server to start. It
// deliberately does NOT reject Record==true with an empty Dir: per the
// documented boundary behavior, that combination degrades to
// passthrough rather than failing, since Record only has an effect
// when a recording directory is configured.
func (c *Config) Validate() error {
	if c.ForwardTo == "" {
		return fmt.Errorf("--forward-to is required")
	}
	if _, err := c.UpstreamURL(); err != nil {
		return err
	}
	if c.Port == 0 {
		return fmt.Errorf("--port must be nonzero")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("--rate-limit must be non-negative, got %v", c.RateLimit)
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("--max-concurrent must be non-negative, got %d", c.MaxConcurrent)
	}
	return nil
}
