package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Database  string    `json:"database"`
	Error     string    `json:"error,omitempty"`
}

// HandleHealth reports whether the server can reach its database. A failed
// ping answers 503 with status "degraded".
func HandleHealth(version string, startTime time.Time, ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		uptime := time.Since(startTime)

		response := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    uptime.Truncate(time.Second).String(),
			Database:  "ok",
		}

		code := http.StatusOK
		if err := ping(c.Request.Context()); err != nil {
			response.Status = "degraded"
			response.Database = "unavailable"
			response.Error = err.Error()
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, response)
	}
}
