// Package config provides configuration management for the poolctl CLI.
package config

import (
	configDefaults "github.com/concave-dev/dhcpool/internal/config"
	"github.com/concave-dev/dhcpool/internal/version"
)

const (
	DefaultAPIAddr = configDefaults.DefaultAPIAddr // Default API server address (routable)
	DefaultTimeout = 8                             // Default request timeout in seconds
)

// Version returns the current poolctl CLI version from the centralized version package
var Version = version.PoolctlVersion

// Output formats accepted by --output.
var OutputFormats = []string{"table", "json", "yaml"}

// Global holds the global CLI configuration
var Global struct {
	APIAddr  string // Address of poold API server to connect to
	LogLevel string // Log level for CLI operations
	Timeout  int    // Request timeout in seconds
	Verbose  bool   // Show verbose output
	Output   string // Output format: table, json, yaml
}

// Service holds the config mod flags
var Service struct {
	DefaultLeaseTime  int      // Default lease time in seconds
	MaxLeaseTime      int      // Maximum lease time in seconds
	DomainName        string   // Domain name handed to clients
	DomainNameServers []string // DNS servers handed to clients
	DomainSearch      []string // Search domains handed to clients
	Comments          string   // Free-form comments
	PrimaryServer     string   // Hostname of the primary server; empty clears it
}

// Server holds the server command flags
var Server struct {
	Statements []string // Server statements; replace the stored list on mod
	Options    []string // Server options; replace the stored list on mod
	Comments   string   // Free-form comments
	Criteria   string   // Substring filter for server ls
}

// Host holds the host command flags
var Host struct {
	Comments string // Free-form comments
	Criteria string // Substring filter for host ls
}

// Subnet holds the subnet command flags
var Subnet struct {
	Netmask  int    // Prefix length for subnet add
	Router   string // Default gateway handed to clients
	Comments string // Free-form comments
	Criteria string // Substring filter for subnet ls
}

// Pool holds the pool command flags
var Pool struct {
	Name             string // Pool name; suggested from the range when empty
	Comments         string // Free-form comments
	Range            string // New range for pool mod
	DefaultLeaseTime int    // Default lease time in seconds
	MaxLeaseTime     int    // Maximum lease time in seconds
	KnownClients     string // allow or deny
	UnknownClients   string // allow or deny
	Criteria         string // Substring filter for pool ls
}
