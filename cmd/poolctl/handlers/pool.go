package handlers

import (
	"errors"
	"fmt"

	"github.com/concave-dev/dhcpool/cmd/poolctl/config"
	"github.com/concave-dev/dhcpool/cmd/poolctl/display"
	"github.com/concave-dev/dhcpool/cmd/poolctl/utils"
	"github.com/concave-dev/dhcpool/internal/dhcp"
	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/spf13/cobra"
)

// HandlePoolAdd adds a pool through the pool adder dialog: the range is
// checked against the subnet first and the pool is only created when the
// dialog accepts it. args are SUBNET FIRST_IP LAST_IP.
func HandlePoolAdd(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	subnet := args[0]
	rng := args[1] + " " + args[2]
	apiClient := newClient()

	logging.Info("Checking range %q in subnet %s", rng, subnet)
	outcome, err := runPoolDialog(cmd.Context(), apiClient, poolEdit{
		subnet:   subnet,
		rng:      rng,
		name:     config.Pool.Name,
		comments: config.Pool.Comments,
	})
	if err != nil {
		return err
	}
	if outcome.checkErr != nil {
		return apiError("range check failed", outcome.checkErr)
	}
	if outcome.submitErr != nil {
		if errors.Is(outcome.submitErr, dhcp.ErrRangeUnchecked) || errors.Is(outcome.submitErr, dhcp.ErrCheckPending) {
			return fmt.Errorf("cannot add pool: %w", outcome.submitErr)
		}
		display.DisplayRangeCheck(subnet, rng, outcome.Verdict(), "")
		return fmt.Errorf("cannot add pool: %s", outcome.Message())
	}

	sub := outcome.submission
	opts := dhcpsvc.PoolAddOptions{
		Range:            sub.Options[dhcp.FieldRange],
		Comments:         sub.Options[dhcp.FieldComments],
		DefaultLeaseTime: intFlag(cmd, "lease-time", config.Pool.DefaultLeaseTime),
		MaxLeaseTime:     intFlag(cmd, "max-lease-time", config.Pool.MaxLeaseTime),
	}
	// Submission args are the subnet path followed by the pool name
	view, summary, err := apiClient.AddPool(cmd.Context(), sub.Args[0], sub.Args[len(sub.Args)-1], opts)
	if err != nil {
		return apiError("failed to add pool", err)
	}

	display.DisplaySummary(summary, view)
	logging.Success("%s", summary)
	return nil
}

// HandlePoolCheck reports whether a range would be accepted for a new pool
// in the subnet, and why not. args are SUBNET FIRST_IP LAST_IP.
func HandlePoolCheck(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	subnet := args[0]
	rng := args[1] + " " + args[2]

	outcome, err := runPoolDialog(cmd.Context(), newClient(), poolEdit{subnet: subnet, rng: rng})
	if err != nil {
		return err
	}
	if outcome.checkErr != nil {
		return apiError("range check failed", outcome.checkErr)
	}

	verdict := outcome.Verdict()
	display.DisplayRangeCheck(subnet, rng, verdict, outcome.name)

	if !verdict.IsValid {
		return fmt.Errorf("range rejected")
	}
	return nil
}

// HandlePoolList lists the pools of a subnet.
func HandlePoolList(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	logging.Info("Fetching pools of %s from API server: %s", args[0], config.Global.APIAddr)
	pools, err := newClient().FindPools(cmd.Context(), args[0], config.Pool.Criteria)
	if err != nil {
		return apiError("failed to list pools", err)
	}

	display.DisplayPools(pools)
	return nil
}

// HandlePoolInfo shows one pool. args are SUBNET NAME.
func HandlePoolInfo(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	pool, err := newClient().ShowPool(cmd.Context(), args[0], args[1])
	if err != nil {
		return apiError("failed to show pool", err)
	}

	display.DisplayPool(pool)
	return nil
}

// HandlePoolMod changes a pool. A new range is checked by the server with
// the pool itself excluded from the overlap test. args are SUBNET NAME.
func HandlePoolMod(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	known, err := config.ParsePermit("known-clients", config.Pool.KnownClients)
	if err != nil {
		return err
	}
	unknown, err := config.ParsePermit("unknown-clients", config.Pool.UnknownClients)
	if err != nil {
		return err
	}

	opts := dhcpsvc.PoolModOptions{
		Range:                stringFlag(cmd, "range", config.Pool.Range),
		DefaultLeaseTime:     intFlag(cmd, "lease-time", config.Pool.DefaultLeaseTime),
		MaxLeaseTime:         intFlag(cmd, "max-lease-time", config.Pool.MaxLeaseTime),
		PermitKnownClients:   known,
		PermitUnknownClients: unknown,
		Comments:             stringFlag(cmd, "comments", config.Pool.Comments),
	}

	view, summary, err := newClient().ModPool(cmd.Context(), args[0], args[1], opts)
	if err != nil {
		return apiError("failed to modify pool", err)
	}

	display.DisplaySummary(summary, view)
	logging.Success("%s", summary)
	return nil
}

// HandlePoolDelete deletes a pool. args are SUBNET NAME.
func HandlePoolDelete(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	summary, err := newClient().DelPool(cmd.Context(), args[0], args[1])
	if err != nil {
		return apiError("failed to delete pool", err)
	}

	display.DisplaySummary(summary, nil)
	logging.Success("%s", summary)
	return nil
}
