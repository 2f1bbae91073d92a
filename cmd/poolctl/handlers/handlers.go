// Package handlers provides command handler functions for poolctl.
//
// Handlers are organized by resource:
// - info.go: daemon health and version
// - service.go: DHCP service configuration (show, mod)
// - subnet.go: subnets (add, ls, info, mod, rm)
// - pool.go: pools (add, check, ls, info, mod, rm)
// - dialog.go: the headless pool adder dialog behind pool add and check
//
// Every handler has the cobra RunE signature, logs through internal/logging
// and leaves formatting to the display package.
package handlers

import (
	"errors"
	"fmt"

	"github.com/concave-dev/dhcpool/cmd/poolctl/client"
	"github.com/concave-dev/dhcpool/cmd/poolctl/config"
	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/concave-dev/dhcpool/internal/netutil"
	"github.com/spf13/cobra"
)

// newClient is swapped by tests to point handlers at a test server.
var newClient = client.CreateAPIClient

// apiError logs err with a hint for the common failure classes and returns
// the error the command should exit with.
func apiError(action string, err error) error {
	var cmdErr *dhcpsvc.CommandError
	switch {
	case errors.As(err, &cmdErr):
		return fmt.Errorf("%s: %s", action, cmdErr.Message)
	case netutil.IsConnectionRefusedError(err):
		logging.Error("Cannot reach poold at %s", config.Global.APIAddr)
		logging.Error("TIP: Check that poold is running, or point --api at it")
	case errors.Is(err, client.ErrUnavailable):
		logging.Error("Giving up on %s after repeated failures", config.Global.APIAddr)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// intFlag returns a pointer to value when the named flag was given.
func intFlag(cmd *cobra.Command, name string, value int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v := value
	return &v
}

// stringFlag returns a pointer to value when the named flag was given.
func stringFlag(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v := value
	return &v
}
