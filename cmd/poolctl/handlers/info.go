package handlers

import (
	"github.com/concave-dev/dhcpool/cmd/poolctl/config"
	"github.com/concave-dev/dhcpool/cmd/poolctl/display"
	"github.com/concave-dev/dhcpool/cmd/poolctl/utils"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/spf13/cobra"
)

// HandleInfo shows the daemon's health, version and database state.
func HandleInfo(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	logging.Info("Fetching daemon info from API server: %s", config.Global.APIAddr)

	apiClient := newClient()
	health, err := apiClient.Health(cmd.Context())
	if err != nil && health == nil {
		return apiError("failed to get daemon info", err)
	}

	display.DisplayHealth(config.Global.APIAddr, health)
	return err
}
