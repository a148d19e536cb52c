package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	ActiveSessions    prometheus.Gauge
	CounterTicks      prometheus.Counter
	CounterIntervals  prometheus.Counter
	CounterCompleted  prometheus.Counter
	CounterRequests   *prometheus.CounterVec
	HistRequestTiming prometheus.Histogram
}

// NewMetrics registers collectors on a fresh registry. Runtime collectors
// are added when withRuntime is set; tests leave them out.
func NewMetrics(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewBuildInfoCollector(),
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "pulsefit",
			Name:      "active_sessions",
			Help:      "Workout sessions currently open",
		}),
		CounterTicks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pulsefit",
			Name:      "session_ticks_total",
			Help:      "Clock ticks applied to sessions",
		}),
		CounterIntervals: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pulsefit",
			Name:      "session_intervals_total",
			Help:      "Work and rest intervals finished",
		}),
		CounterCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pulsefit",
			Name:      "sessions_completed_total",
			Help:      "Sessions played through to the end",
		}),
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulsefit",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status",
		}, []string{"method", "status"}),
		HistRequestTiming: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pulsefit",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RequestMetrics counts requests by method and status and observes latency.
func (m *Metrics) RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.HistRequestTiming.Observe(time.Since(start).Seconds())
		m.CounterRequests.With(prometheus.Labels{
			"method": r.Method,
			"status": strconv.Itoa(sw.status),
		}).Inc()
	})
}
