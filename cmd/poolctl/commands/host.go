package commands

import (
	"github.com/spf13/cobra"
)

// Host command (parent command for fixed-address hosts)
var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Manage fixed-address hosts",
	Long: `Commands for fixed-address host entries. A host binds a hardware
address to a hostname; the entry is named after both.`,
}

var hostAddCmd = &cobra.Command{
	Use:   "add <hostname> <macaddress>",
	Short: "Add a fixed-address host",
	Example: `  # Bind a MAC address to a host
  poolctl host add web1.example.com 00:11:22:33:44:aa`,
	Args: exactArgs(2, "hostname and MAC address"),
	// RunE will be set by the main package that imports this
}

var hostLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List hosts",
	Args:  cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

var hostInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show a host entry by name",
	Args:  exactArgs(1, "host entry"),
	// RunE will be set by the main package that imports this
}

var hostRmCmd = &cobra.Command{
	Use:   "rm <hostname> <macaddress>",
	Short: "Delete a fixed-address host",
	Args:  exactArgs(2, "hostname and MAC address"),
	// RunE will be set by the main package that imports this
}

// SetupHostCommands initializes host commands
func SetupHostCommands() {
	hostCmd.AddCommand(hostAddCmd)
	hostCmd.AddCommand(hostLsCmd)
	hostCmd.AddCommand(hostInfoCmd)
	hostCmd.AddCommand(hostRmCmd)
}

// GetHostCommands returns the host command structures for handler assignment
func GetHostCommands() (add, ls, info, rm *cobra.Command) {
	return hostAddCmd, hostLsCmd, hostInfoCmd, hostRmCmd
}

// SetupHostFlags configures flags for host commands
func SetupHostFlags(commentsPtr, criteriaPtr *string) {
	hostAddCmd.Flags().StringVar(commentsPtr, "comments", "", "Free-form comments")
	hostLsCmd.Flags().StringVar(criteriaPtr, "criteria", "", "Only list hosts matching this text")
}
