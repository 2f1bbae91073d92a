package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/concave-dev/dhcpool/internal/validate"
	"github.com/spf13/cobra"
)

// ValidateGlobalFlags validates all global flags before running any command
func ValidateGlobalFlags(cmd *cobra.Command, args []string) error {
	if err := ValidateAPIAddress(); err != nil {
		return err
	}

	if err := ValidateOutputFormat(); err != nil {
		return err
	}

	if err := ValidateLogLevel(); err != nil {
		return err
	}

	if Global.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", Global.Timeout)
	}

	return nil
}

// ValidateAPIAddress validates the --api flag
func ValidateAPIAddress() error {
	netAddr, err := validate.ParseBindAddress(Global.APIAddr)
	if err != nil {
		logging.Error("Invalid API address '%s': %v", Global.APIAddr, err)
		return fmt.Errorf("invalid API address - expected format: host:port (e.g., 127.0.0.1:8008)")
	}

	// Reject unroutable 0.0.0.0 target for client connections
	if netAddr.Host == "0.0.0.0" {
		logging.Error("Unroutable API address '0.0.0.0:%d' - cannot connect to 0.0.0.0", netAddr.Port)
		return fmt.Errorf("unroutable API address - use 127.0.0.1 or a specific IP address")
	}

	// Client must connect to specific port (not 0)
	if err := validate.ValidatePortRange(netAddr.Port); err != nil {
		logging.Error("Invalid API port %d: %v", netAddr.Port, err)
		return fmt.Errorf("API port must be between 1-65535")
	}

	return nil
}

// ValidateOutputFormat validates the --output flag
func ValidateOutputFormat() error {
	if !slices.Contains(OutputFormats, Global.Output) {
		valid := strings.Join(OutputFormats, ", ")
		logging.Error("Invalid output format '%s' - valid formats are: %s", Global.Output, valid)
		return fmt.Errorf("invalid output format - valid: %s", valid)
	}
	return nil
}

// ValidateLogLevel validates and normalises the --log-level flag
func ValidateLogLevel() error {
	Global.LogLevel = strings.ToUpper(Global.LogLevel)
	return logging.ValidateLogLevel(Global.LogLevel)
}

// ParsePermit converts an allow/deny flag value into a permit setting.
// An empty value means the flag was not given.
func ParsePermit(flag, value string) (*bool, error) {
	switch strings.ToLower(value) {
	case "":
		return nil, nil
	case "allow":
		allow := true
		return &allow, nil
	case "deny":
		deny := false
		return &deny, nil
	}
	return nil, fmt.Errorf("--%s must be allow or deny, got '%s'", flag, value)
}
