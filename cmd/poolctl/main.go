// Package main provides the entry point for poolctl, the CLI for managing
// the DHCP subnets and pools served by poold.
//
// INITIALIZATION FLOW:
//  1. Command structure setup (info, config, subnet, pool, server, host)
//  2. Global and per-command flag binding into the config package
//  3. Handler assignment linking commands to API operations
//  4. Global flag validation before every command runs
package main

import (
	"os"

	"github.com/concave-dev/dhcpool/cmd/poolctl/commands"
	"github.com/concave-dev/dhcpool/cmd/poolctl/config"
	"github.com/concave-dev/dhcpool/cmd/poolctl/handlers"
	"github.com/concave-dev/dhcpool/internal/logging"
)

func init() {
	logging.SetMode(logging.ModeCLI)
	rootCmd := commands.RootCmd

	// Set version and validation
	rootCmd.Version = config.Version
	rootCmd.PersistentPreRunE = config.ValidateGlobalFlags

	// Setup all command structures
	commands.SetupCommands()
	commands.SetupConfigCommands()
	commands.SetupSubnetCommands()
	commands.SetupPoolCommands()
	commands.SetupServerCommands()
	commands.SetupHostCommands()

	// Setup global flags
	commands.SetupGlobalFlags(rootCmd, &config.Global.APIAddr, &config.Global.LogLevel,
		&config.Global.Timeout, &config.Global.Verbose, &config.Global.Output,
		config.DefaultAPIAddr, config.DefaultTimeout)

	// Setup command flags
	_, configModCmd := commands.GetConfigCommands()
	commands.SetupConfigFlags(configModCmd, &config.Service.DefaultLeaseTime, &config.Service.MaxLeaseTime,
		&config.Service.DomainName, &config.Service.DomainNameServers, &config.Service.DomainSearch,
		&config.Service.Comments, &config.Service.PrimaryServer)
	commands.SetupSubnetFlags(&config.Subnet.Netmask, &config.Subnet.Router,
		&config.Subnet.Comments, &config.Subnet.Criteria)
	commands.SetupPoolFlags(&config.Pool.Name, &config.Pool.Comments, &config.Pool.Range,
		&config.Pool.DefaultLeaseTime, &config.Pool.MaxLeaseTime,
		&config.Pool.KnownClients, &config.Pool.UnknownClients, &config.Pool.Criteria)
	commands.SetupServerFlags(&config.Server.Statements, &config.Server.Options,
		&config.Server.Comments, &config.Server.Criteria)
	commands.SetupHostFlags(&config.Host.Comments, &config.Host.Criteria)

	setupCommandHandlers()
}

// setupCommandHandlers assigns RunE functions to commands
func setupCommandHandlers() {
	commands.GetInfoCommand().RunE = handlers.HandleInfo

	configShowCmd, configModCmd := commands.GetConfigCommands()
	configShowCmd.RunE = handlers.HandleConfigShow
	configModCmd.RunE = handlers.HandleConfigMod

	subnetAddCmd, subnetLsCmd, subnetInfoCmd, subnetModCmd, subnetRmCmd := commands.GetSubnetCommands()
	subnetAddCmd.RunE = handlers.HandleSubnetAdd
	subnetLsCmd.RunE = handlers.HandleSubnetList
	subnetInfoCmd.RunE = handlers.HandleSubnetInfo
	subnetModCmd.RunE = handlers.HandleSubnetMod
	subnetRmCmd.RunE = handlers.HandleSubnetDelete

	poolAddCmd, poolCheckCmd, poolLsCmd, poolInfoCmd, poolModCmd, poolRmCmd := commands.GetPoolCommands()
	poolAddCmd.RunE = handlers.HandlePoolAdd
	poolCheckCmd.RunE = handlers.HandlePoolCheck
	poolLsCmd.RunE = handlers.HandlePoolList
	poolInfoCmd.RunE = handlers.HandlePoolInfo
	poolModCmd.RunE = handlers.HandlePoolMod
	poolRmCmd.RunE = handlers.HandlePoolDelete

	serverAddCmd, serverLsCmd, serverInfoCmd, serverModCmd, serverRmCmd := commands.GetServerCommands()
	serverAddCmd.RunE = handlers.HandleServerAdd
	serverLsCmd.RunE = handlers.HandleServerList
	serverInfoCmd.RunE = handlers.HandleServerInfo
	serverModCmd.RunE = handlers.HandleServerMod
	serverRmCmd.RunE = handlers.HandleServerDelete

	hostAddCmd, hostLsCmd, hostInfoCmd, hostRmCmd := commands.GetHostCommands()
	hostAddCmd.RunE = handlers.HandleHostAdd
	hostLsCmd.RunE = handlers.HandleHostList
	hostInfoCmd.RunE = handlers.HandleHostInfo
	hostRmCmd.RunE = handlers.HandleHostDelete
}

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
