// Package commands provides the CLI command structure for the dhcpool daemon.
//
// poold is a single root command. Its PreRunE loads .env, builds the
// configuration from the config file, POOLD_ environment variables and
// flags, opens the log file when one is configured and validates everything
// before the daemon starts.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/concave-dev/dhcpool/cmd/poold/config"
	"github.com/concave-dev/dhcpool/cmd/poold/daemon"
	"github.com/concave-dev/dhcpool/cmd/poold/utils"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/concave-dev/dhcpool/internal/version"
	"github.com/spf13/cobra"
)

// Global variable to track log file handle for cleanup
var logFileHandle *os.File

// loaded is the validated configuration handed from PreRunE to RunE.
var loaded *config.Config

// CleanupLogFile closes the log file handle if it exists
func CleanupLogFile() {
	if logFileHandle != nil {
		if err := logFileHandle.Close(); err != nil {
			// Use fmt.Fprintf instead of logging; the log file is going away
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
		logFileHandle = nil
	}
}

// Root command for the dhcpool daemon
var RootCmd = &cobra.Command{
	Use:   "poold",
	Short: "DHCP subnet and address pool management daemon",
	Long: `dhcpool daemon (poold) stores DHCP subnets and their address pools and serves
the pool management commands over HTTP.

Clients add pools through the same range check the pool dialog uses: a range
must lie inside its subnet, keep its first address before its last, and stay
clear of every other pool in the subnet.`,
	Version:      version.PooldVersion,
	SilenceUsage: true, // Don't show usage on errors
	Example: `  # Start with defaults (API on 127.0.0.1:8008, database in ./data)
  poold

  # Listen on all interfaces with a persistent database
  poold --api=0.0.0.0:8008 --db=/var/lib/dhcpool/dhcpool.db

  # Load settings from a file; POOLD_* variables still override it
  POOLD_LOG_LEVEL=DEBUG poold --config=/etc/dhcpool/poold.yaml`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Display logo first, before any validation or logging
		utils.DisplayLogo(version.PooldVersion)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadDotEnv()

		cfg, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}
		cfg.ApplyEnvOverrides()

		if cfg.Log.File != "" {
			logDir := filepath.Dir(cfg.Log.File)
			if err := os.MkdirAll(logDir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
			}

			logFileHandle, err = os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file %s: %w", cfg.Log.File, err)
			}
			logging.SetOutput(logFileHandle)
		}

		if err := cfg.Validate(); err != nil {
			// Close log file handle if validation fails to prevent resource leak
			CleanupLogFile()
			return err
		}
		logging.SetLevel(cfg.Log.Level)

		loaded = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer CleanupLogFile()
		return daemon.Run(cmd.Context(), loaded)
	},
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	SetupFlags(RootCmd)
}
