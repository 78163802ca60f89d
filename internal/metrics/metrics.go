// Package metrics holds the Prometheus collectors for HTTP traffic and
// application bootstrap.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "queue_manager",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "queue_manager",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "queue_manager",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	coldStarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "queue_manager",
			Subsystem: "bootstrap",
			Name:      "cold_starts_total",
			Help:      "Number of successful application constructions.",
		},
	)

	bootstrapFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "queue_manager",
			Subsystem: "bootstrap",
			Name:      "failures_total",
			Help:      "Number of failed application constructions.",
		},
	)

	bootstrapDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "queue_manager",
			Subsystem: "bootstrap",
			Name:      "duration_seconds",
			Help:      "Duration of application construction attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		coldStarts,
		bootstrapFailures,
		bootstrapDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveBootstrap records one application construction attempt.
func ObserveBootstrap(duration time.Duration, err error) {
	success := "true"
	if err != nil {
		success = "false"
		bootstrapFailures.Inc()
	} else {
		coldStarts.Inc()
	}
	bootstrapDuration.WithLabelValues(success).Observe(duration.Seconds())
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := strings.ToUpper(c.Request.Method)

		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
