package handlers

import (
	"strings"

	"github.com/concave-dev/dhcpool/cmd/poolctl/config"
	"github.com/concave-dev/dhcpool/cmd/poolctl/display"
	"github.com/concave-dev/dhcpool/cmd/poolctl/utils"
	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/spf13/cobra"
)

// HandleSubnetAdd adds a subnet. The argument is either a CIDR
// ("10.0.0.0/24") or a network address together with --netmask.
func HandleSubnetAdd(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	apiClient := newClient()
	var (
		view    *dhcpsvc.SubnetView
		summary string
		err     error
	)
	if strings.Contains(args[0], "/") {
		view, summary, err = apiClient.AddSubnetCIDR(cmd.Context(), args[0], dhcpsvc.SubnetCIDROptions{
			Router:   config.Subnet.Router,
			Comments: config.Subnet.Comments,
		})
	} else {
		view, summary, err = apiClient.AddSubnet(cmd.Context(), args[0], dhcpsvc.SubnetAddOptions{
			Netmask:  intFlag(cmd, "netmask", config.Subnet.Netmask),
			Router:   config.Subnet.Router,
			Comments: config.Subnet.Comments,
		})
	}
	if err != nil {
		return apiError("failed to add subnet", err)
	}

	display.DisplaySummary(summary, view)
	logging.Success("%s", summary)
	return nil
}

// HandleSubnetList lists subnets, optionally filtered by --criteria.
func HandleSubnetList(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	logging.Info("Fetching subnets from API server: %s", config.Global.APIAddr)
	subnets, err := newClient().FindSubnets(cmd.Context(), config.Subnet.Criteria)
	if err != nil {
		return apiError("failed to list subnets", err)
	}

	display.DisplaySubnets(subnets)
	return nil
}

// HandleSubnetInfo shows one subnet.
func HandleSubnetInfo(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	subnet, err := newClient().ShowSubnet(cmd.Context(), args[0])
	if err != nil {
		return apiError("failed to show subnet", err)
	}

	display.DisplaySubnet(subnet)
	return nil
}

// HandleSubnetMod changes the router or comments of a subnet. --router=""
// removes the router.
func HandleSubnetMod(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	opts := dhcpsvc.SubnetModOptions{
		Router:   stringFlag(cmd, "router", config.Subnet.Router),
		Comments: stringFlag(cmd, "comments", config.Subnet.Comments),
	}

	view, summary, err := newClient().ModSubnet(cmd.Context(), args[0], opts)
	if err != nil {
		return apiError("failed to modify subnet", err)
	}

	display.DisplaySummary(summary, view)
	logging.Success("%s", summary)
	return nil
}

// HandleSubnetDelete deletes a subnet that has no pools.
func HandleSubnetDelete(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	summary, err := newClient().DelSubnet(cmd.Context(), args[0])
	if err != nil {
		return apiError("failed to delete subnet", err)
	}

	display.DisplaySummary(summary, nil)
	logging.Success("%s", summary)
	return nil
}
