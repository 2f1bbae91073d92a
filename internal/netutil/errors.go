// Package netutil provides listener binding and network error classification
// for poold and poolctl. Errors are classified by type, not by message text.
package netutil

import (
	"errors"
	"net"
	"syscall"
)

// IsAddressInUseError checks if an error indicates "address already in use".
func IsAddressInUseError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.EADDRINUSE)
	}
	return false
}

// IsConnectionRefusedError checks if an error indicates "connection refused".
// poolctl uses it to tell a stopped daemon apart from other failures.
func IsConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}
	return false
}
