// Package commands contains Cobra CLI command definitions for poold.
package commands

import (
	"github.com/concave-dev/dhcpool/cmd/poold/config"
	"github.com/spf13/cobra"
)

// configPath is the optional config file given with --config.
var configPath string

// SetupFlags configures all command line flags for the daemon
func SetupFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configPath, "config", "",
		"Path to a YAML, TOML or JSON config file (optional)")

	// API flags
	cmd.Flags().String(config.FlagAPI, config.DefaultAPI,
		"Address and port for HTTP API server (e.g., "+config.DefaultAPI+")\n"+
			"If not specified, defaults to "+config.DefaultAPI)

	cmd.Flags().Bool(config.FlagPortFallback, false,
		"Take the next free port if the API port is busy")

	// Storage flags
	cmd.Flags().String(config.FlagDatabase, config.DefaultDSN,
		"SQLite database file (use :memory: for a throwaway database)")

	// Operational flags
	cmd.Flags().String(config.FlagLogLevel, config.DefaultLogLevel,
		"Log level: DEBUG, INFO, WARN, ERROR")
	cmd.Flags().String(config.FlagLogFile, "",
		"Write logs to this file instead of the console")
}
