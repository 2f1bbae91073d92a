package api

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the API server.
type Metrics struct {
	rpcRequests       *prometheus.CounterVec
	rpcDuration       *prometheus.HistogramVec
	rangeChecks       *prometheus.CounterVec
	rateLimitRejected prometheus.Counter
}

var (
	apiMetrics     *Metrics
	apiMetricsOnce sync.Once
)

// GetMetrics returns the process-wide API metrics.
func GetMetrics() *Metrics {
	apiMetricsOnce.Do(func() {
		apiMetrics = newMetrics()
	})
	return apiMetrics
}

func newMetrics() *Metrics {
	return &Metrics{
		rpcRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dhcpool",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total number of RPC commands by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		rpcDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dhcpool",
				Subsystem: "rpc",
				Name:      "duration_seconds",
				Help:      "RPC command latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		rangeChecks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dhcpool",
				Subsystem: "pool",
				Name:      "range_checks_total",
				Help:      "Total number of pool range checks by verdict",
			},
			[]string{"verdict"},
		),
		rateLimitRejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "dhcpool",
				Subsystem: "http",
				Name:      "rate_limit_rejected_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
		),
	}
}

// ObserveCommand records one finished RPC command.
func (m *Metrics) ObserveCommand(method, outcome string, elapsed time.Duration) {
	m.rpcRequests.WithLabelValues(method, outcome).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveRangeCheck records the verdict of one range check.
func (m *Metrics) ObserveRangeCheck(valid bool) {
	verdict := "invalid"
	if valid {
		verdict = "valid"
	}
	m.rangeChecks.WithLabelValues(verdict).Inc()
}

// ObserveRateLimited records one rejected request.
func (m *Metrics) ObserveRateLimited() {
	m.rateLimitRejected.Inc()
}
