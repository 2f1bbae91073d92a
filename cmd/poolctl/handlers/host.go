package handlers

import (
	"github.com/concave-dev/dhcpool/cmd/poolctl/config"
	"github.com/concave-dev/dhcpool/cmd/poolctl/display"
	"github.com/concave-dev/dhcpool/cmd/poolctl/utils"
	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/spf13/cobra"
)

// HandleHostAdd binds a hardware address to a hostname.
func HandleHostAdd(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	view, summary, err := newClient().AddHost(cmd.Context(), args[0], args[1], dhcpsvc.HostAddOptions{
		Comments: config.Host.Comments,
	})
	if err != nil {
		return apiError("failed to add host", err)
	}

	display.DisplaySummary(summary, view)
	logging.Success("%s", summary)
	return nil
}

// HandleHostList lists hosts, optionally filtered by --criteria.
func HandleHostList(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	hosts, err := newClient().FindHosts(cmd.Context(), config.Host.Criteria)
	if err != nil {
		return apiError("failed to list hosts", err)
	}

	display.DisplayHosts(hosts)
	return nil
}

// HandleHostInfo shows one host entry.
func HandleHostInfo(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	host, err := newClient().ShowHost(cmd.Context(), args[0])
	if err != nil {
		return apiError("failed to show host", err)
	}

	display.DisplayHost(host)
	return nil
}

// HandleHostDelete deletes the entry binding a hardware address to a
// hostname.
func HandleHostDelete(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	summary, err := newClient().DelHost(cmd.Context(), args[0], args[1])
	if err != nil {
		return apiError("failed to delete host", err)
	}

	display.DisplaySummary(summary, nil)
	logging.Success("%s", summary)
	return nil
}
