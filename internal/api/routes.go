package api

import (
	"github.com/concave-dev/dhcpool/internal/api/handlers"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Configures all API routes
func (s *Server) setupRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version prefix
	v1 := router.Group("/api/v1")

	v1.GET("/health", handlers.HandleHealth(s.version, s.startTime, s.service.Ping))

	rpc := v1.Group("")
	if s.limiter != nil {
		rpc.Use(s.rateLimitMiddleware())
	}
	{
		rpc.POST("/rpc", handlers.HandleRPC(s.service, s.metrics))
		rpc.GET("/subnets/:subnet/range-check", handlers.HandleRangeCheck(s.service, s.metrics))
	}
}
