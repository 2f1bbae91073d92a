// Package config loads and validates the poold configuration.
//
// Values come from, in increasing priority: built-in defaults, an optional
// config file (--config), POOLD_ environment variables and explicit command
// line flags. A .env file in the working directory is loaded into the
// environment before anything else is read.
//
// Keys are dotted ("server.port"); the matching environment variable
// replaces dots with underscores and adds the prefix (POOLD_SERVER_PORT).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	configDefaults "github.com/concave-dev/dhcpool/internal/config"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/concave-dev/dhcpool/internal/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "POOLD"

// Flag names bound to configuration keys.
const (
	FlagAPI      = "api"
	FlagDatabase = "db"
	FlagLogLevel = "log-level"
	FlagLogFile  = "log-file"

	FlagPortFallback = "port-fallback"
)

const (
	DefaultAPI      = configDefaults.DefaultAPIAddr     // Default API address
	DefaultDSN      = configDefaults.DefaultDatabaseDSN // Default SQLite database
	DefaultLogLevel = configDefaults.DefaultLogLevel    // Default log level
)

// Config holds all daemon configuration values.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// PortFallback lets the daemon take the next free port when Port is busy.
	PortFallback bool `mapstructure:"port_fallback"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LogConfig holds logging configuration. An empty File logs to the console.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// RateLimitConfig bounds /rpc requests per client.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// LoadDotEnv loads .env from the working directory. A missing file is fine.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("Failed to load .env file: %v", err)
	}
}

// Load builds the configuration from defaults, configPath (may be empty),
// the environment and flags. Only flags the user changed override the
// lower layers.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", configDefaults.DefaultBindAddr)
	v.SetDefault("server.port", configDefaults.DefaultAPIPort)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("server.port_fallback", false)
	v.SetDefault("database.dsn", DefaultDSN)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.file", "")
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rps", configDefaults.DefaultRateLimitRPS)
	v.SetDefault("ratelimit.burst", configDefaults.DefaultRateLimitBurst)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only a file that exists but cannot be parsed is fatal
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			logging.Warn("Config file %s not read, using defaults: %v", configPath, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// bindFlags maps command line flags onto configuration keys. --api carries
// two keys, so it is split here instead of bound.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"database.dsn": FlagDatabase,
		"log.level":    FlagLogLevel,
		"log.file":     FlagLogFile,

		"server.port_fallback": FlagPortFallback,
	}
	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}

	if flags.Changed(FlagAPI) {
		addr, err := flags.GetString(FlagAPI)
		if err != nil {
			return err
		}
		netAddr, err := validate.ParseBindAddress(addr)
		if err != nil {
			return fmt.Errorf("invalid API address: %w", err)
		}
		v.Set("server.host", netAddr.Host)
		v.Set("server.port", netAddr.Port)
	}
	return nil
}
