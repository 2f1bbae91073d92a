package handlers

import (
	"github.com/concave-dev/dhcpool/cmd/poolctl/config"
	"github.com/concave-dev/dhcpool/cmd/poolctl/display"
	"github.com/concave-dev/dhcpool/cmd/poolctl/utils"
	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/spf13/cobra"
)

// HandleServerAdd registers a DHCP server.
func HandleServerAdd(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	view, summary, err := newClient().AddServer(cmd.Context(), args[0], dhcpsvc.ServerAddOptions{
		Statements: config.Server.Statements,
		Options:    config.Server.Options,
		Comments:   config.Server.Comments,
	})
	if err != nil {
		return apiError("failed to add server", err)
	}

	display.DisplaySummary(summary, view)
	logging.Success("%s", summary)
	return nil
}

// HandleServerList lists servers, optionally filtered by --criteria.
func HandleServerList(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	servers, err := newClient().FindServers(cmd.Context(), config.Server.Criteria)
	if err != nil {
		return apiError("failed to list servers", err)
	}

	display.DisplayServers(servers)
	return nil
}

// HandleServerInfo shows one server.
func HandleServerInfo(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	server, err := newClient().ShowServer(cmd.Context(), args[0])
	if err != nil {
		return apiError("failed to show server", err)
	}

	display.DisplayServer(server)
	return nil
}

// HandleServerMod changes a server. Only flags that were given are sent.
func HandleServerMod(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	var opts dhcpsvc.ServerModOptions
	if cmd.Flags().Changed("statement") {
		opts.Statements = nonNil(config.Server.Statements)
	}
	if cmd.Flags().Changed("option") {
		opts.Options = nonNil(config.Server.Options)
	}
	opts.Comments = stringFlag(cmd, "comments", config.Server.Comments)

	view, summary, err := newClient().ModServer(cmd.Context(), args[0], opts)
	if err != nil {
		return apiError("failed to modify server", err)
	}

	display.DisplaySummary(summary, view)
	logging.Success("%s", summary)
	return nil
}

// HandleServerDelete deletes a server.
func HandleServerDelete(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	summary, err := newClient().DelServer(cmd.Context(), args[0])
	if err != nil {
		return apiError("failed to delete server", err)
	}

	display.DisplaySummary(summary, nil)
	logging.Success("%s", summary)
	return nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
