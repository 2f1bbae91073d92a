package netutil

import (
	"errors"
	"net"
	"testing"
	"time"
)

func TestBindTCP_AddressInUse(t *testing.T) {
	pb := NewPortBinder()

	first, err := pb.BindTCP("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("BindTCP() error = %v", err)
	}
	defer first.Close()

	port, err := pb.GetListenerPort(first)
	if err != nil || port == 0 {
		t.Fatalf("GetListenerPort() = %d, %v", port, err)
	}

	_, err = pb.BindTCP("127.0.0.1", port)
	var inUse *AddressInUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("BindTCP() on a busy port error = %v, want *AddressInUseError", err)
	}
	if inUse.Port != port || !IsAddressInUseError(err) {
		t.Errorf("AddressInUseError = %+v", inUse)
	}
}

func TestBindTCPWithFallback(t *testing.T) {
	pb := NewPortBinder()

	busy, err := pb.BindTCP("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("BindTCP() error = %v", err)
	}
	defer busy.Close()
	busyPort, _ := pb.GetListenerPort(busy)

	listener, port, err := pb.BindTCPWithFallback("127.0.0.1", busyPort)
	if err != nil {
		t.Skipf("no free port after %d: %v", busyPort, err)
	}
	defer listener.Close()

	if port == busyPort {
		t.Errorf("BindTCPWithFallback() bound the busy port %d", port)
	}
}

func TestIsConnectionRefusedError(t *testing.T) {
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	_, err = net.DialTimeout("tcp4", addr, time.Second)
	if err == nil {
		t.Skip("port was reused before dialing")
	}
	if !IsConnectionRefusedError(err) {
		t.Errorf("IsConnectionRefusedError(%v) = false", err)
	}
	if IsConnectionRefusedError(errors.New("connection refused")) {
		t.Error("IsConnectionRefusedError() matched a plain string error")
	}
}
