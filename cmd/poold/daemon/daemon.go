// Package daemon runs the dhcpool daemon: storage, the DHCP command service
// and the HTTP API, from startup to graceful shutdown.
//
// STARTUP:
//  1. Open the SQLite store (migrations run on open) and check it answers
//  2. Pre-bind the API listener so a busy port fails before anything serves,
//     or moves to the next free port when server.port_fallback is set
//  3. Serve the API and wait for SIGINT, SIGTERM or a cancelled context
//
// SHUTDOWN runs in reverse: the API drains within server.shutdown_timeout,
// then the store closes.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/concave-dev/dhcpool/cmd/poold/config"
	"github.com/concave-dev/dhcpool/internal/api"
	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/concave-dev/dhcpool/internal/netutil"
	"github.com/concave-dev/dhcpool/internal/store"
	"github.com/concave-dev/dhcpool/internal/version"
	"golang.org/x/sync/errgroup"
)

// Run starts the daemon with cfg and blocks until it is told to stop.
func Run(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("daemon: configuration not loaded")
	}

	// net/http reports connection errors through the standard logger
	logging.RedirectStandardLog(logging.NewLevelWriter("WARN", "http"))

	if err := ensureDataDir(cfg.Database.DSN); err != nil {
		return err
	}

	st, err := store.NewSQLiteStore(cfg.Database.DSN)
	if err != nil {
		logging.Error("Failed to open database %s: %v", cfg.Database.DSN, err)
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error("Error closing database: %v", err)
		}
	}()

	service := dhcpsvc.NewService(st)
	if err := service.Ping(ctx); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	logging.Info("Database ready: %s", cfg.Database.DSN)

	// Hold the port from here on so the address check and the serve agree
	listener, port, err := bindAPI(cfg.Server)
	if err != nil {
		var inUse *netutil.AddressInUseError
		if errors.As(err, &inUse) {
			logging.Error("API port %d is already in use on %s", inUse.Port, inUse.Address)
			logging.Error("TIP: Is another poold running? Pick a free port with --api or pass --port-fallback")
		}
		return err
	}

	apiConfig := api.DefaultConfig()
	apiConfig.BindAddr = cfg.Server.Host
	apiConfig.BindPort = port
	apiConfig.ReadTimeout = cfg.Server.ReadTimeout
	apiConfig.WriteTimeout = cfg.Server.WriteTimeout
	if cfg.Server.IdleTimeout > 0 {
		apiConfig.IdleTimeout = cfg.Server.IdleTimeout
	}
	apiConfig.RateLimit = api.RateLimitConfig{
		Enabled: cfg.RateLimit.Enabled,
		RPS:     cfg.RateLimit.RPS,
		Burst:   cfg.RateLimit.Burst,
	}
	apiConfig.Service = service
	apiConfig.Version = version.PooldVersion

	if err := apiConfig.Validate(); err != nil {
		listener.Close()
		return fmt.Errorf("invalid API configuration: %w", err)
	}

	apiServer, err := api.NewServerWithListener(apiConfig, listener)
	if err != nil {
		listener.Close()
		return fmt.Errorf("failed to create API server: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(apiServer.Start)

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() == nil && sigCtx.Err() != nil {
			logging.Info("Received shutdown signal")
		}
		logging.Info("Initiating graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Error shutting down API server: %v", err)
			return err
		}
		return nil
	})

	logging.Success("dhcpool daemon started successfully")
	logging.Info("HTTP API: http://%s/api/v1", apiServer.Addr())
	logging.Info("Daemon running... Press Ctrl+C to shutdown")

	if err := g.Wait(); err != nil {
		return err
	}

	logging.Success("dhcpool daemon shutdown completed")
	return nil
}

// bindAPI binds the API listener and returns the port it holds.
func bindAPI(server config.ServerConfig) (net.Listener, int, error) {
	binder := netutil.NewPortBinder()
	if !server.PortFallback {
		listener, err := binder.BindTCP(server.Host, server.Port)
		return listener, server.Port, err
	}

	listener, port, err := binder.BindTCPWithFallback(server.Host, server.Port)
	if err != nil {
		return nil, 0, err
	}
	if port != server.Port {
		logging.Warn("API port %d is busy on %s, using %d", server.Port, server.Host, port)
	}
	return listener, port, nil
}

// ensureDataDir creates the directory of a file DSN. In-memory and URI
// DSNs are left alone.
func ensureDataDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return nil
}
