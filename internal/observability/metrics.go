package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors exported by the service.
type Metrics struct {
	gatherer        prometheus.Gatherer
	requests        *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	activityRecords *prometheus.CounterVec
}

// NewMetrics registers collectors against reg. A nil reg uses a private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "team_service",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests broken down by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "team_service",
			Subsystem: "http",
			Name:      "latency_seconds",
			Help:      "Latency distribution for HTTP requests.",
			Buckets: []float64{
				0.001, 0.005, 0.01,
				0.05, 0.1, 0.25,
				0.5, 1, 2.5, 5,
			},
		}, []string{"route", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "team_service",
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Failed requests broken down by route and domain error code.",
		}, []string{"route", "method", "code"}),
		activityRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "team_service",
			Subsystem: "activity",
			Name:      "records_total",
			Help:      "Activity log records written, by entity type and action.",
		}, []string{"entity", "action"}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordActivity counts an appended activity log record.
func (m *Metrics) RecordActivity(entity, action string) {
	if m == nil {
		return
	}
	m.activityRecords.WithLabelValues(entity, action).Inc()
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
