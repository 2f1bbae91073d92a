package logging

import "fmt"

// ValidLogLevels is the set of level strings accepted by SetLevel, the daemon
// configuration and the CLI --log-level flag. Levels are uppercase.
var ValidLogLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

// IsValidLogLevel reports whether level is one of ValidLogLevels.
func IsValidLogLevel(level string) bool {
	return ValidLogLevels[level]
}

// ValidateLogLevel returns an error naming the level when it is not supported.
func ValidateLogLevel(level string) error {
	if !IsValidLogLevel(level) {
		return fmt.Errorf("invalid log level: %s", level)
	}
	return nil
}
