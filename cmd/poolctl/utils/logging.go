// Package utils provides utility functions for the poolctl CLI.
// This file contains logging setup and Resty logger integration utilities.
package utils

import (
	"os"

	"github.com/concave-dev/dhcpool/cmd/poolctl/config"
	"github.com/concave-dev/dhcpool/internal/logging"
)

// RestyLogger implements resty.Logger interface and routes logs through structured logging
type RestyLogger struct{}

// Errorf routes error messages through structured logging.
func (s RestyLogger) Errorf(format string, v ...interface{}) {
	logging.Error(format, v...)
}

// Warnf routes warning messages through structured logging.
func (s RestyLogger) Warnf(format string, v ...interface{}) {
	logging.Warn(format, v...)
}

// Debugf routes debug messages through structured logging.
func (s RestyLogger) Debugf(format string, v ...interface{}) {
	logging.Debug(format, v...)
}

// SetupLogging configures CLI logging behavior based on environment and config.
// DEBUG=true or --verbose shows everything; otherwise only errors reach the
// terminal.
func SetupLogging() {
	logging.SetMode(logging.ModeCLI)
	switch {
	case os.Getenv("DEBUG") == "true":
		logging.RestoreOutput()
		logging.SetLevel("DEBUG")
	case config.Global.Verbose:
		logging.RestoreOutput()
		logging.SetLevel(config.Global.LogLevel)
	default:
		logging.SetLevel(config.Global.LogLevel)
		// Suppress debug/info logs by default (only show errors)
		logging.SuppressOutput()
	}
}
