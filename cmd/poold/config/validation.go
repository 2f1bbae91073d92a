package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/concave-dev/dhcpool/internal/validate"
)

// ApplyEnvOverrides applies shortcuts that are not plain POOLD_ keys.
// DEBUG=true forces the DEBUG log level.
func (c *Config) ApplyEnvOverrides() {
	if os.Getenv("DEBUG") == "true" {
		c.Log.Level = "DEBUG"
		logging.Info("DEBUG environment variable detected, setting log level to DEBUG")
	}
}

// Validate checks every value the daemon needs before it binds or opens
// storage. The log level is normalised to upper case.
func (c *Config) Validate() error {
	if err := validate.ValidatePortRange(c.Server.Port); err != nil {
		logging.Error("Invalid API port %d: must be between 1 and 65535", c.Server.Port)
		return fmt.Errorf("invalid API port %d: %w", c.Server.Port, err)
	}
	// The API host must be an IP literal
	if _, err := validate.ParseBindAddress(c.Server.Address()); err != nil {
		logging.Error("Invalid API address '%s': %v", c.Server.Address(), err)
		return fmt.Errorf("invalid API address: %w", err)
	}

	if err := validate.ValidatePositiveTimeout(c.Server.ReadTimeout, "server.read_timeout"); err != nil {
		return err
	}
	if err := validate.ValidatePositiveTimeout(c.Server.WriteTimeout, "server.write_timeout"); err != nil {
		return err
	}
	if err := validate.ValidatePositiveTimeout(c.Server.ShutdownTimeout, "server.shutdown_timeout"); err != nil {
		return err
	}

	if err := validate.ValidateRequiredString(c.Database.DSN, "database.dsn"); err != nil {
		return err
	}

	c.Log.Level = strings.ToUpper(c.Log.Level)
	if err := logging.ValidateLogLevel(c.Log.Level); err != nil {
		return err
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 {
			return fmt.Errorf("ratelimit.rps must be positive, got %v", c.RateLimit.RPS)
		}
		if c.RateLimit.Burst < 1 {
			return fmt.Errorf("ratelimit.burst must be at least 1, got %d", c.RateLimit.Burst)
		}
	}
	return nil
}
