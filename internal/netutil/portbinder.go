package netutil

import (
	"errors"
	"fmt"
	"net"
)

// AddressInUseError represents a "port already in use" error that preserves
// the original error for proper type checking while providing user-friendly messages.
type AddressInUseError struct {
	Port    int
	Address string
	Err     error
}

func (e *AddressInUseError) Error() string {
	return fmt.Sprintf("port %d is already in use on %s", e.Port, e.Address)
}

func (e *AddressInUseError) Unwrap() error {
	return e.Err
}

// PortBinder pre-binds listeners so the port is held from validation until
// the server starts serving.
type PortBinder struct {
	// MaxAttempts bounds BindTCPWithFallback. Zero means 100.
	MaxAttempts int
}

// NewPortBinder creates a new PortBinder.
func NewPortBinder() *PortBinder {
	return &PortBinder{MaxAttempts: 100}
}

// BindTCP binds a TCP listener on address:port. A busy port is reported as
// *AddressInUseError.
func (pb *PortBinder) BindTCP(address string, port int) (net.Listener, error) {
	addr := net.JoinHostPort(address, fmt.Sprint(port))

	// Force IPv4 for consistent behavior across platforms
	listener, err := net.Listen("tcp4", addr)
	if err != nil {
		if IsAddressInUseError(err) {
			return nil, &AddressInUseError{
				Port:    port,
				Address: address,
				Err:     err,
			}
		}
		return nil, fmt.Errorf("failed to bind TCP to %s: %w", addr, err)
	}

	return listener, nil
}

// BindTCPWithFallback binds the preferred port or, if it is busy, the next
// free one. It returns the listener and the port actually bound.
func (pb *PortBinder) BindTCPWithFallback(address string, preferredPort int) (net.Listener, int, error) {
	maxAttempts := pb.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 100
	}

	for port := preferredPort; port < preferredPort+maxAttempts && port <= 65535; port++ {
		listener, err := pb.BindTCP(address, port)
		if err != nil {
			var addrInUseErr *AddressInUseError
			if errors.As(err, &addrInUseErr) {
				continue
			}
			return nil, 0, fmt.Errorf("failed to bind TCP starting from port %d: %w", preferredPort, err)
		}
		return listener, port, nil
	}

	return nil, 0, fmt.Errorf("no available TCP port found in range %d-%d on %s",
		preferredPort, preferredPort+maxAttempts-1, address)
}

// GetListenerPort extracts the port number from a bound net.Listener.
func (pb *PortBinder) GetListenerPort(listener net.Listener) (int, error) {
	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("listener is not a TCP listener: %T", listener.Addr())
	}
	return tcpAddr.Port, nil
}
