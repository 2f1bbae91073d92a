// Package commands provides the command tree for poolctl.
//
// COMMAND STRUCTURE:
//   - info: daemon health and version
//   - config: service-wide DHCP settings (show, mod)
//   - subnet: DHCP subnets (add, ls, info, mod, rm)
//   - pool: address pools inside a subnet (add, check, ls, info, mod, rm)
//   - server: DHCP server entries of the service (add, ls, info, mod, rm)
//   - host: fixed-address host entries (add, ls, info, rm)
//
// Commands only declare usage, arguments and flags. RunE is assigned by the
// main package.
package commands

import (
	"fmt"

	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/spf13/cobra"
)

// Root command
var RootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "CLI for managing DHCP subnets and address pools",
	Long: `poolctl manages the DHCP configuration served by a poold daemon.

Pools are added through the same range checks the daemon applies: the range
must be well formed, fit inside its subnet and stay clear of sibling pools.`,
	SilenceUsage: true,
	Example: `  # Show daemon health
  poolctl info

  # Add a subnet and a pool inside it
  poolctl subnet add 10.0.0.0/24 --router 10.0.0.1
  poolctl pool add 10.0.0.0 10.0.0.10 10.0.0.50

  # Check a range without adding it
  poolctl pool check 10.0.0.0 10.0.0.60 10.0.0.80

  # Talk to a remote daemon and print JSON
  poolctl --api=192.168.1.100:8008 -o json subnet ls`,
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	RootCmd.AddCommand(infoCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(subnetCmd)
	RootCmd.AddCommand(poolCmd)
	RootCmd.AddCommand(serverCmd)
	RootCmd.AddCommand(hostCmd)
}

// SetupGlobalFlags configures all global persistent flags
func SetupGlobalFlags(rootCmd *cobra.Command, apiAddrPtr *string, logLevelPtr *string,
	timeoutPtr *int, verbosePtr *bool, outputPtr *string, defaultAPIAddr string, defaultTimeout int) {
	rootCmd.PersistentFlags().StringVar(apiAddrPtr, "api", defaultAPIAddr,
		"poold API address (host:port)")
	rootCmd.PersistentFlags().StringVar(logLevelPtr, "log-level", "ERROR",
		"Log level: DEBUG, INFO, WARN, ERROR")
	rootCmd.PersistentFlags().IntVar(timeoutPtr, "timeout", defaultTimeout,
		"Request timeout in seconds")
	rootCmd.PersistentFlags().BoolVarP(verbosePtr, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().StringVarP(outputPtr, "output", "o", "table",
		"Output format: table, json, yaml")
}

// exactArgs prints help and fails unless exactly n arguments were given.
func exactArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			cmd.Help()
			fmt.Println()
			logging.Error("Invalid arguments: expected %d (%s), got %d", n, what, len(args))
			return fmt.Errorf("requires exactly %d arguments (%s)", n, what)
		}
		return nil
	}
}
