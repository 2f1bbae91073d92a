package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/concave-dev/dhcpool/internal/validate"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Represents the dhcpool API server
type Server struct {
	service    *dhcpsvc.Service
	metrics    *Metrics
	limiter    *clientLimiter
	router     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	bindAddr   string
	bindPort   int
	version    string
	startTime  time.Time
}

// NewServer creates a new API server instance. The router is built here so
// Handler can be served before Start.
func NewServer(config *Config) *Server {
	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		service:   config.Service,
		metrics:   GetMetrics(),
		bindAddr:  config.BindAddr,
		bindPort:  config.BindPort,
		version:   config.Version,
		startTime: time.Now(),
	}
	if config.RateLimit.Enabled {
		s.limiter = newClientLimiter(config.RateLimit.RPS, config.RateLimit.Burst)
	}

	s.router = s.newRouter(config.TrustedProxies)
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.bindAddr, s.bindPort),
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

// NewServerWithListener creates a server that serves on an already bound
// listener. Start then skips the bind.
func NewServerWithListener(config *Config, listener net.Listener) (*Server, error) {
	if listener == nil {
		return nil, fmt.Errorf("listener cannot be nil")
	}
	s := NewServer(config)
	s.listener = listener
	s.httpServer.Addr = listener.Addr().String()
	return s, nil
}

func (s *Server) newRouter(trustedProxies []string) *gin.Engine {
	// Configure Gin logging only if not already configured by CLI tools
	if !logging.IsConfiguredByCLI() {
		gin.DefaultWriter = logging.NewLevelWriter("INFO", "gin")
		gin.DefaultErrorWriter = logging.NewLevelWriter("ERROR", "gin")
	}
	registerBindingTags()

	router := gin.New()
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		logging.Warn("Ignoring trusted proxies %v: %v", trustedProxies, err)
	}

	router.Use(s.requestIDMiddleware())
	router.Use(s.loggingMiddleware())
	router.Use(s.corsMiddleware())
	router.Use(gin.Recovery())

	s.setupRoutes(router)
	return router
}

// registerBindingTags adds the dhcprange tag to gin's validator.
func registerBindingTags() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	if err := validate.RegisterRangeTag(v); err != nil {
		logging.Warn("Failed to register %s binding tag: %v", validate.RangeTag, err)
	}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listener if needed and serves in the background.
func (s *Server) Start() error {
	logging.Info("Starting HTTP API server on %s", s.httpServer.Addr)

	if s.listener == nil {
		// Bind first so address errors surface immediately
		listener, err := net.Listen("tcp", s.httpServer.Addr)
		if err != nil {
			return fmt.Errorf("failed to bind to %s: %w", s.httpServer.Addr, err)
		}
		s.listener = listener
	}

	go func() {
		if err := s.httpServer.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			logging.Error("HTTP server failed: %v", err)
		}
	}()

	logging.Success("HTTP API server started successfully")
	return nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down HTTP API server...")
	return s.httpServer.Shutdown(ctx)
}
