package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/concave-dev/dhcpool/internal/api/handlers"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// clientTTL is how long an idle client keeps its limiter.
const clientTTL = 10 * time.Minute

// requestIDMiddleware reuses the caller's request ID or assigns a new one.
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(handlers.RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// loggingMiddleware provides request logging
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		requestID, _ := param.Keys[handlers.RequestIDKey].(string)
		logging.Info("%s - [%s] %s \"%s %s %s %d %s \"%s\" %s\"",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			logging.FormatRequestID(requestID),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
		return ""
	})
}

// corsMiddleware provides CORS headers
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		c.Header("Access-Control-Max-Age", "300")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// rateLimitMiddleware rejects clients that exceed their request rate.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.allow(c.ClientIP()) {
			s.metrics.ObserveRateLimited()
			logging.Warn("Rate limit exceeded for %s on %s", c.ClientIP(), c.Request.URL.Path)
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"name": "RateLimited", "message": "rate limit exceeded"},
			})
			return
		}
		c.Next()
	}
}

type clientEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// clientLimiter keeps one token bucket per client address. Idle entries
// are swept on access once per clientTTL.
type clientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientEntry
	rps       rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{
		clients:   make(map[string]*clientEntry),
		rps:       rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *clientLimiter) allow(client string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) > clientTTL {
		for key, entry := range l.clients {
			if now.Sub(entry.lastAccess) > clientTTL {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}
	entry, ok := l.clients[client]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[client] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.AllowN(now, 1)
}

func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
