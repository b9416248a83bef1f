package infra

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry and the collectors the API and
// outbox relay report to.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	outboxPublished *prometheus.CounterVec
	outboxBatch     prometheus.Histogram
	outboxLag       prometheus.Gauge
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fantasy",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fantasy",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		outboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fantasy",
			Name:      "outbox_published_total",
			Help:      "Outbox events handed to the broker, by event type and result.",
		}, []string{"event_type", "status"}),
		outboxBatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fantasy",
			Name:      "outbox_batch_size",
			Help:      "Events fetched per outbox poll.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		outboxLag: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fantasy",
			Name:      "outbox_pending_events",
			Help:      "Events left unpublished after the last poll.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.outboxPublished,
		m.outboxBatch,
		m.outboxLag,
	)
	return m
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordPublish counts a single outbox publish attempt.
func (m *Metrics) RecordPublish(eventType string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.outboxPublished.WithLabelValues(eventType, status).Inc()
}

// RecordBatch records the size of a poll and how many events remain pending.
func (m *Metrics) RecordBatch(fetched, pending int) {
	m.outboxBatch.Observe(float64(fetched))
	m.outboxLag.Set(float64(pending))
}
