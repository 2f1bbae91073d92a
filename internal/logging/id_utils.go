package logging

import "github.com/charmbracelet/log"

// shortIDLength is how many leading characters of a request ID are kept
// outside debug logging.
const shortIDLength = 8

// FormatRequestID formats a request ID for log lines. Debug logging keeps the
// full UUID so a request can be traced end to end; other levels print the
// first 8 characters.
//
// Usage: logging.Info("rpc %s %s", logging.FormatRequestID(id), method)
func FormatRequestID(id string) string {
	if logger.GetLevel() <= log.DebugLevel {
		return id
	}
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}
