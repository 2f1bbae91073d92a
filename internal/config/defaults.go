// Package config provides default configuration values shared by the poold
// daemon and the poolctl client.
package config

const (
	// DefaultBindAddr is the default bind address for the HTTP API.
	// Loopback keeps the admin API off the network unless asked for.
	DefaultBindAddr = "127.0.0.1"

	// DefaultAPIPort is the default port for the HTTP API.
	DefaultAPIPort = 8008

	// DefaultAPIAddr is where poolctl looks for the daemon.
	DefaultAPIAddr = "127.0.0.1:8008"

	// DefaultLogLevel is the default log level for all components.
	DefaultLogLevel = "INFO"

	// DefaultDataDir is the default directory for the database file.
	DefaultDataDir = "./data"

	// DefaultDatabaseDSN is the default SQLite database.
	DefaultDatabaseDSN = DefaultDataDir + "/dhcpool.db"

	// DefaultRateLimitRPS and DefaultRateLimitBurst bound /rpc per client.
	// Range checks fire on every edit, so the burst is generous.
	DefaultRateLimitRPS   = 20.0
	DefaultRateLimitBurst = 40
)
