package commands

import (
	"github.com/spf13/cobra"
)

// Server command (parent command for server operations)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage DHCP servers",
	Long: `Commands for the DHCP servers that serve the configuration. Adding a
server lists it on the service entry; removing it drops that reference.`,
}

var serverAddCmd = &cobra.Command{
	Use:   "add <hostname>",
	Short: "Register a server",
	Example: `  # Register a server
  poolctl server add ns1.example.com

  # Register a server with its own statements
  poolctl server add ns1.example.com --statement authoritative`,
	Args: exactArgs(1, "server"),
	// RunE will be set by the main package that imports this
}

var serverLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List servers",
	Args:  cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

var serverInfoCmd = &cobra.Command{
	Use:   "info <hostname>",
	Short: "Show a server",
	Args:  exactArgs(1, "server"),
	// RunE will be set by the main package that imports this
}

var serverModCmd = &cobra.Command{
	Use:   "mod <hostname>",
	Short: "Change a server",
	Long: `Change a server. --statement and --option replace the stored lists
when given.`,
	Args: exactArgs(1, "server"),
	// RunE will be set by the main package that imports this
}

var serverRmCmd = &cobra.Command{
	Use:   "rm <hostname>",
	Short: "Delete a server",
	Args:  exactArgs(1, "server"),
	// RunE will be set by the main package that imports this
}

// SetupServerCommands initializes server commands
func SetupServerCommands() {
	serverCmd.AddCommand(serverAddCmd)
	serverCmd.AddCommand(serverLsCmd)
	serverCmd.AddCommand(serverInfoCmd)
	serverCmd.AddCommand(serverModCmd)
	serverCmd.AddCommand(serverRmCmd)
}

// GetServerCommands returns the server command structures for handler assignment
func GetServerCommands() (add, ls, info, mod, rm *cobra.Command) {
	return serverAddCmd, serverLsCmd, serverInfoCmd, serverModCmd, serverRmCmd
}

// SetupServerFlags configures flags for server commands
func SetupServerFlags(statementsPtr, optionsPtr *[]string, commentsPtr, criteriaPtr *string) {
	for _, cmd := range []*cobra.Command{serverAddCmd, serverModCmd} {
		cmd.Flags().StringArrayVar(statementsPtr, "statement", nil, "Server statement (repeatable)")
		cmd.Flags().StringArrayVar(optionsPtr, "option", nil, "Server option (repeatable)")
		cmd.Flags().StringVar(commentsPtr, "comments", "", "Free-form comments")
	}

	serverLsCmd.Flags().StringVar(criteriaPtr, "criteria", "", "Only list servers matching this text")
}
