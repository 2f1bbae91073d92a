// Package api serves the DHCP command set over HTTP.
//
// The server exposes one RPC endpoint that accepts the same command envelope
// the web UI sends, a health check, a REST shortcut for range checks and the
// Prometheus metrics endpoint. Commands themselves are run by
// internal/dhcpsvc; this package owns transport concerns only: request
// logging, request IDs, CORS, rate limiting and metrics.
package api

import (
	"fmt"
	"time"

	"github.com/concave-dev/dhcpool/internal/config"
	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/validate"
)

// RateLimitConfig controls the per-client limit on /rpc.
type RateLimitConfig struct {
	Enabled bool    // Reject clients that exceed the limit
	RPS     float64 // Sustained requests per second per client
	Burst   int     // Requests allowed above the sustained rate
}

// Config holds everything the HTTP API server needs.
//
// Service is required; the server does not open storage on its own.
type Config struct {
	BindAddr       string           // HTTP server bind address (e.g., "127.0.0.1")
	BindPort       int              // HTTP server bind port
	ReadTimeout    time.Duration    // Maximum time to read a request
	WriteTimeout   time.Duration    // Maximum time to write a response
	IdleTimeout    time.Duration    // Keep-alive idle timeout
	RateLimit      RateLimitConfig  // Per-client rate limit on /rpc
	Service        *dhcpsvc.Service // Runs the DHCP commands
	Version        string           // Reported by /health
	TrustedProxies []string         // Proxies allowed to set X-Forwarded-For; nil trusts none
}

// DefaultConfig returns a Config for local use. Service must still be set.
func DefaultConfig() *Config {
	return &Config{
		BindAddr:     config.DefaultBindAddr,
		BindPort:     config.DefaultAPIPort,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     config.DefaultRateLimitRPS,
			Burst:   config.DefaultRateLimitBurst,
		},
		Version: "dev",
	}
}

// Validate checks that the server can start with c.
func (c *Config) Validate() error {
	if err := validate.ValidateRequiredString(c.BindAddr, "bind address"); err != nil {
		return err
	}
	if err := validate.ValidatePortRange(c.BindPort); err != nil {
		return fmt.Errorf("bind port validation failed: %w", err)
	}
	if err := validate.ValidatePositiveTimeout(c.ReadTimeout, "read timeout"); err != nil {
		return err
	}
	if err := validate.ValidatePositiveTimeout(c.WriteTimeout, "write timeout"); err != nil {
		return err
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 {
			return fmt.Errorf("rate limit rps must be positive, got %v", c.RateLimit.RPS)
		}
		if c.RateLimit.Burst < 1 {
			return fmt.Errorf("rate limit burst must be at least 1, got %d", c.RateLimit.Burst)
		}
	}
	if c.Service == nil {
		return fmt.Errorf("dhcp service cannot be nil")
	}

	return nil
}
