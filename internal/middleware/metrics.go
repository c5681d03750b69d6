package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsMiddleware records request counts and latencies per route and
// exposes the change token so external collectors can watch state drift.
type MetricsMiddleware struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	changeToken     prometheus.Gauge
}

// NewMetricsMiddleware registers the HTTP collectors with the default
// registry and returns the middleware.
func NewMetricsMiddleware() *MetricsMiddleware {
	return &MetricsMiddleware{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleet",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, path and status code.",
		}, []string{"method", "path", "status"}),
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fleet",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		changeToken: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "fleet",
			Subsystem: "state",
			Name:      "change_token",
			Help:      "Monotonic token of the last committed fleet mutation.",
		}),
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument wraps a handler with request counting and latency observation.
func (m *MetricsMiddleware) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.requestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// SetChangeToken publishes the latest committed change token.
func (m *MetricsMiddleware) SetChangeToken(token uint64) {
	m.changeToken.Set(float64(token))
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsMiddleware) Handler() http.Handler {
	return promhttp.Handler()
}
