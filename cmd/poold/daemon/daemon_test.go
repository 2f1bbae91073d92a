package daemon

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/concave-dev/dhcpool/cmd/poold/config"
	"github.com/concave-dev/dhcpool/internal/netutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	require.NoError(t, ensureDataDir(filepath.Join(dir, "dhcpool.db")))
	assert.DirExists(t, dir)

	assert.NoError(t, ensureDataDir(":memory:"))
	assert.NoError(t, ensureDataDir("file:test?mode=memory"))
}

func TestRunServesUntilCancelled(t *testing.T) {
	pb := netutil.NewPortBinder()
	scratch, err := pb.BindTCP("127.0.0.1", 0)
	require.NoError(t, err)
	port, err := pb.GetListenerPort(scratch)
	require.NoError(t, err)
	scratch.Close()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            port,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		Database:  config.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "dhcpool.db")},
		Log:       config.LogConfig{Level: "ERROR"},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunRejectsBusyPort(t *testing.T) {
	pb := netutil.NewPortBinder()
	busy, err := pb.BindTCP("127.0.0.1", 0)
	require.NoError(t, err)
	defer busy.Close()
	port, _ := pb.GetListenerPort(busy)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            port,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		Database: config.DatabaseConfig{DSN: ":memory:"},
	}

	err = Run(context.Background(), cfg)
	var inUse *netutil.AddressInUseError
	assert.ErrorAs(t, err, &inUse)
}

func TestBindAPIFallsBackWhenBusy(t *testing.T) {
	pb := netutil.NewPortBinder()
	busy, err := pb.BindTCP("127.0.0.1", 0)
	require.NoError(t, err)
	defer busy.Close()
	busyPort, _ := pb.GetListenerPort(busy)

	_, _, err = bindAPI(config.ServerConfig{Host: "127.0.0.1", Port: busyPort})
	var inUse *netutil.AddressInUseError
	require.ErrorAs(t, err, &inUse)

	listener, port, err := bindAPI(config.ServerConfig{Host: "127.0.0.1", Port: busyPort, PortFallback: true})
	require.NoError(t, err)
	defer listener.Close()
	assert.NotEqual(t, busyPort, port)

	bound, err := pb.GetListenerPort(listener)
	require.NoError(t, err)
	assert.Equal(t, port, bound)
}
