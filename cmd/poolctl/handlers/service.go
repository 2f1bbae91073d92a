package handlers

import (
	"github.com/concave-dev/dhcpool/cmd/poolctl/config"
	"github.com/concave-dev/dhcpool/cmd/poolctl/display"
	"github.com/concave-dev/dhcpool/cmd/poolctl/utils"
	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/spf13/cobra"
)

// HandleConfigShow shows the DHCP service configuration.
func HandleConfigShow(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	view, err := newClient().ShowConfig(cmd.Context())
	if err != nil {
		return apiError("failed to show DHCP configuration", err)
	}

	display.DisplayServiceConfig(view)
	return nil
}

// HandleConfigMod changes the service-wide lease times and domain options.
// Only flags that were given are sent.
func HandleConfigMod(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	opts := dhcpsvc.ServiceModOptions{
		DefaultLeaseTime: intFlag(cmd, "lease-time", config.Service.DefaultLeaseTime),
		MaxLeaseTime:     intFlag(cmd, "max-lease-time", config.Service.MaxLeaseTime),
		DomainName:       stringFlag(cmd, "domain", config.Service.DomainName),
		Comments:         stringFlag(cmd, "comments", config.Service.Comments),
	}
	if cmd.Flags().Changed("dns") {
		opts.DomainNameServers = config.Service.DomainNameServers
	}
	if cmd.Flags().Changed("search") {
		opts.DomainSearch = config.Service.DomainSearch
	}
	if cmd.Flags().Changed("primary-server") {
		dn := ""
		if config.Service.PrimaryServer != "" {
			dn = dhcpsvc.ServerDN(config.Service.PrimaryServer)
		}
		opts.PrimaryDN = &dn
	}

	view, summary, err := newClient().ModConfig(cmd.Context(), opts)
	if err != nil {
		return apiError("failed to modify DHCP configuration", err)
	}

	display.DisplaySummary(summary, view)
	logging.Success("%s", summary)
	return nil
}
