package commands

import (
	"github.com/spf13/cobra"
)

// Pool command (parent command for pool operations)
var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Manage address pools",
	Long: `Commands for managing the address pools of a subnet.

A pool range is "FIRST LAST". It must be well formed, lie inside its subnet
and not overlap another pool of the same subnet. Each pool in a subnet has
a unique name, suggested from its range unless --name is given.`,
}

var poolAddCmd = &cobra.Command{
	Use:   "add <subnet> <first-ip> <last-ip>",
	Short: "Add a pool to a subnet",
	Long: `Add a pool. The range is checked against the subnet before anything is
written; a rejected range prints the reason and nothing is added.`,
	Example: `  # Add a pool named after its range
  poolctl pool add 10.0.0.0 10.0.0.10 10.0.0.50

  # Pick the name and override lease times
  poolctl pool add 10.0.0.0 10.0.0.100 10.0.0.150 --name guests --lease-time 3600`,
	Args: exactArgs(3, "subnet, first IP, last IP"),
	// RunE will be set by the main package that imports this
}

var poolCheckCmd = &cobra.Command{
	Use:   "check <subnet> <first-ip> <last-ip>",
	Short: "Check whether a range could be added as a pool",
	Example: `  # Check a range
  poolctl pool check 10.0.0.0 10.0.0.60 10.0.0.80

  # Script-friendly verdict
  poolctl -o json pool check 10.0.0.0 10.0.0.60 10.0.0.80`,
	Args: exactArgs(3, "subnet, first IP, last IP"),
	// RunE will be set by the main package that imports this
}

var poolLsCmd = &cobra.Command{
	Use:   "ls <subnet>",
	Short: "List the pools of a subnet",
	Args:  exactArgs(1, "subnet"),
	// RunE will be set by the main package that imports this
}

var poolInfoCmd = &cobra.Command{
	Use:   "info <subnet> <name>",
	Short: "Show a pool",
	Args:  exactArgs(2, "subnet, pool name"),
	// RunE will be set by the main package that imports this
}

var poolModCmd = &cobra.Command{
	Use:   "mod <subnet> <name>",
	Short: "Change a pool",
	Example: `  # Move the range
  poolctl pool mod 10.0.0.0 guests --range "10.0.0.100 10.0.0.180"

  # Only serve known clients
  poolctl pool mod 10.0.0.0 guests --known-clients allow --unknown-clients deny`,
	Args: exactArgs(2, "subnet, pool name"),
	// RunE will be set by the main package that imports this
}

var poolRmCmd = &cobra.Command{
	Use:   "rm <subnet> <name>",
	Short: "Delete a pool",
	Args:  exactArgs(2, "subnet, pool name"),
	// RunE will be set by the main package that imports this
}

// SetupPoolCommands initializes pool commands
func SetupPoolCommands() {
	poolCmd.AddCommand(poolAddCmd)
	poolCmd.AddCommand(poolCheckCmd)
	poolCmd.AddCommand(poolLsCmd)
	poolCmd.AddCommand(poolInfoCmd)
	poolCmd.AddCommand(poolModCmd)
	poolCmd.AddCommand(poolRmCmd)
}

// GetPoolCommands returns the pool command structures for handler assignment
func GetPoolCommands() (add, check, ls, info, mod, rm *cobra.Command) {
	return poolAddCmd, poolCheckCmd, poolLsCmd, poolInfoCmd, poolModCmd, poolRmCmd
}

// SetupPoolFlags configures flags for pool commands
func SetupPoolFlags(namePtr, commentsPtr, rangePtr *string, leasePtr, maxLeasePtr *int,
	knownPtr, unknownPtr, criteriaPtr *string) {
	poolAddCmd.Flags().StringVar(namePtr, "name", "", "Pool name (suggested from the range if not provided)")
	poolAddCmd.Flags().StringVar(commentsPtr, "comments", "", "Free-form comments")
	poolAddCmd.Flags().IntVar(leasePtr, "lease-time", 0, "Default lease time in seconds")
	poolAddCmd.Flags().IntVar(maxLeasePtr, "max-lease-time", 0, "Maximum lease time in seconds")

	poolLsCmd.Flags().StringVar(criteriaPtr, "criteria", "", "Only list pools matching this text")

	poolModCmd.Flags().StringVar(rangePtr, "range", "", `New range as "FIRST LAST"`)
	poolModCmd.Flags().IntVar(leasePtr, "lease-time", 0, "Default lease time in seconds")
	poolModCmd.Flags().IntVar(maxLeasePtr, "max-lease-time", 0, "Maximum lease time in seconds")
	poolModCmd.Flags().StringVar(knownPtr, "known-clients", "", "Known clients: allow, deny, or empty to clear")
	poolModCmd.Flags().StringVar(unknownPtr, "unknown-clients", "", "Unknown clients: allow, deny, or empty to clear")
	poolModCmd.Flags().StringVar(commentsPtr, "comments", "", "Free-form comments")
}
