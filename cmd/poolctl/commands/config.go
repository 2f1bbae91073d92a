package commands

import (
	"github.com/spf13/cobra"
)

// Config command (parent command for service settings)
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change service-wide DHCP settings",
	Long: `Commands for the DHCP service configuration: lease times and domain
options every subnet and pool inherits unless it sets its own.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the DHCP service configuration",
	Args:  cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

var configModCmd = &cobra.Command{
	Use:   "mod",
	Short: "Change the DHCP service configuration",
	Long: `Change service-wide settings. Only the flags given are changed; an
empty value removes the setting.`,
	Example: `  # Set lease times
  poolctl config mod --lease-time 43200 --max-lease-time 86400

  # Set name servers and clear the search list
  poolctl config mod --dns 10.0.0.2,10.0.0.3 --search ""`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// SetupConfigCommands initializes config commands
func SetupConfigCommands() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configModCmd)
}

// GetConfigCommands returns the config command structures for handler assignment
func GetConfigCommands() (*cobra.Command, *cobra.Command) {
	return configShowCmd, configModCmd
}

// SetupConfigFlags configures flags for config mod
func SetupConfigFlags(modCmd *cobra.Command, leasePtr, maxLeasePtr *int, domainPtr *string,
	dnsPtr, searchPtr *[]string, commentsPtr, primaryPtr *string) {
	modCmd.Flags().IntVar(leasePtr, "lease-time", 0, "Default lease time in seconds")
	modCmd.Flags().IntVar(maxLeasePtr, "max-lease-time", 0, "Maximum lease time in seconds")
	modCmd.Flags().StringVar(domainPtr, "domain", "", "Domain name handed to clients")
	modCmd.Flags().StringSliceVar(dnsPtr, "dns", nil, "Domain name servers (comma separated)")
	modCmd.Flags().StringSliceVar(searchPtr, "search", nil, "Domain search list (comma separated)")
	modCmd.Flags().StringVar(commentsPtr, "comments", "", "Free-form comments")
	modCmd.Flags().StringVar(primaryPtr, "primary-server", "", "Hostname of the registered server that serves this configuration")
}
