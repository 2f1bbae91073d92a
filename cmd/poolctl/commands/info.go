package commands

import (
	"github.com/spf13/cobra"
)

// Info command (daemon health)
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show daemon health and version",
	Long: `Show the health of the poold daemon, its version, when it started and
whether its database answers.`,
	Example: `  # Show daemon information
  poolctl info

  # Ask a specific daemon
  poolctl --api=192.168.1.100:8008 info`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// GetInfoCommand returns the info command for handler assignment
func GetInfoCommand() *cobra.Command {
	return infoCmd
}
