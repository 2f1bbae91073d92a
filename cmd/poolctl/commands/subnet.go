package commands

import (
	"github.com/spf13/cobra"
)

// Subnet command (parent command for subnet operations)
var subnetCmd = &cobra.Command{
	Use:   "subnet",
	Short: "Manage DHCP subnets",
	Long: `Commands for managing DHCP subnets. A subnet is named by its network
address and holds the pools clients lease addresses from.`,
}

var subnetAddCmd = &cobra.Command{
	Use:   "add <cidr | network>",
	Short: "Add a subnet",
	Long: `Add a subnet, either as a CIDR or as a network address with --netmask.
Host bits in a CIDR are cleared.`,
	Example: `  # Add a subnet from a CIDR
  poolctl subnet add 10.0.0.0/24 --router 10.0.0.1

  # Same subnet with an explicit netmask
  poolctl subnet add 10.0.0.0 --netmask 24`,
	Args: exactArgs(1, "subnet"),
	// RunE will be set by the main package that imports this
}

var subnetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List subnets",
	Example: `  # List all subnets
  poolctl subnet ls

  # Only subnets mentioning "lab"
  poolctl subnet ls --criteria lab`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

var subnetInfoCmd = &cobra.Command{
	Use:   "info <network>",
	Short: "Show a subnet",
	Args:  exactArgs(1, "subnet"),
	// RunE will be set by the main package that imports this
}

var subnetModCmd = &cobra.Command{
	Use:   "mod <network>",
	Short: "Change a subnet",
	Example: `  # Change the router
  poolctl subnet mod 10.0.0.0 --router 10.0.0.254

  # Remove the router
  poolctl subnet mod 10.0.0.0 --router ""`,
	Args: exactArgs(1, "subnet"),
	// RunE will be set by the main package that imports this
}

var subnetRmCmd = &cobra.Command{
	Use:   "rm <network>",
	Short: "Delete a subnet without pools",
	Args:  exactArgs(1, "subnet"),
	// RunE will be set by the main package that imports this
}

// SetupSubnetCommands initializes subnet commands
func SetupSubnetCommands() {
	subnetCmd.AddCommand(subnetAddCmd)
	subnetCmd.AddCommand(subnetLsCmd)
	subnetCmd.AddCommand(subnetInfoCmd)
	subnetCmd.AddCommand(subnetModCmd)
	subnetCmd.AddCommand(subnetRmCmd)
}

// GetSubnetCommands returns the subnet command structures for handler assignment
func GetSubnetCommands() (add, ls, info, mod, rm *cobra.Command) {
	return subnetAddCmd, subnetLsCmd, subnetInfoCmd, subnetModCmd, subnetRmCmd
}

// SetupSubnetFlags configures flags for subnet commands
func SetupSubnetFlags(netmaskPtr *int, routerPtr, commentsPtr, criteriaPtr *string) {
	subnetAddCmd.Flags().IntVar(netmaskPtr, "netmask", 0, "Prefix length when the network is given without one")
	subnetAddCmd.Flags().StringVar(routerPtr, "router", "", "Default router handed to clients")
	subnetAddCmd.Flags().StringVar(commentsPtr, "comments", "", "Free-form comments")

	subnetLsCmd.Flags().StringVar(criteriaPtr, "criteria", "", "Only list subnets matching this text")

	subnetModCmd.Flags().StringVar(routerPtr, "router", "", "Default router (empty removes it)")
	subnetModCmd.Flags().StringVar(commentsPtr, "comments", "", "Free-form comments")
}
