package config

import (
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/concave-dev/dhcpool/internal/logging"
)

// TestDefaultBindAddrIsValidIP validates that the default bind address is an IPv4 literal
func TestDefaultBindAddrIsValidIP(t *testing.T) {
	ip := net.ParseIP(DefaultBindAddr)
	if ip == nil || ip.To4() == nil {
		t.Errorf("DefaultBindAddr %q is not a valid IPv4 address", DefaultBindAddr)
	}
	if !ip.IsLoopback() {
		t.Errorf("DefaultBindAddr %q should be loopback", DefaultBindAddr)
	}
}

// TestDefaultAPIAddrMatchesServer validates that the client default reaches the server default
func TestDefaultAPIAddrMatchesServer(t *testing.T) {
	want := fmt.Sprintf("%s:%d", DefaultBindAddr, DefaultAPIPort)
	if DefaultAPIAddr != want {
		t.Errorf("DefaultAPIAddr = %q, want %q", DefaultAPIAddr, want)
	}
}

// TestDefaultLogLevelIsValid validates that the default log level is a recognized level
func TestDefaultLogLevelIsValid(t *testing.T) {
	if !logging.IsValidLogLevel(DefaultLogLevel) {
		t.Errorf("DefaultLogLevel %q is not a valid log level. Valid levels: %v",
			DefaultLogLevel, logging.ValidLogLevels)
	}
	if DefaultLogLevel != strings.ToUpper(DefaultLogLevel) {
		t.Errorf("DefaultLogLevel %q should be uppercase", DefaultLogLevel)
	}
}

// TestDefaultDatabaseDSN validates that the database lives in the data directory
func TestDefaultDatabaseDSN(t *testing.T) {
	if !strings.HasPrefix(DefaultDatabaseDSN, DefaultDataDir+"/") {
		t.Errorf("DefaultDatabaseDSN %q is not under %q", DefaultDatabaseDSN, DefaultDataDir)
	}
}

// TestDefaultRateLimit validates that the burst covers at least one second of traffic
func TestDefaultRateLimit(t *testing.T) {
	if DefaultRateLimitRPS <= 0 {
		t.Errorf("DefaultRateLimitRPS = %v, want > 0", DefaultRateLimitRPS)
	}
	if float64(DefaultRateLimitBurst) < DefaultRateLimitRPS {
		t.Errorf("DefaultRateLimitBurst = %d, want >= %v", DefaultRateLimitBurst, DefaultRateLimitRPS)
	}
}
