// Package main implements the dhcpool daemon (poold).
// poold stores DHCP subnets and address pools and serves the pool
// management commands, including the range check used while adding a pool.
package main

import (
	"os"

	"github.com/concave-dev/dhcpool/cmd/poold/commands"
)

func main() {
	commands.SetupCommands()

	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
