// Package metrics exposes Prometheus instrumentation for the API and the
// chunking worker.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docchat"

// ServerMetrics instruments the HTTP surface and the retrieval pipeline.
type ServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	retrievalTotal    *prometheus.CounterVec
	retrievalDuration prometheus.Histogram
	retrievedChunks   prometheus.Histogram
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	m := &ServerMetrics{
		registry: registry,
		service:  service,
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests processed.",
			},
			[]string{"service", "method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "method", "path"},
		),
		requestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "http",
				Name:        "in_flight_requests",
				Help:        "Number of in-flight HTTP requests.",
				ConstLabels: prometheus.Labels{"service": service},
			},
		),
		retrievalTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retrieval",
				Name:      "requests_total",
				Help:      "Retrieval requests by flow branch (remote, local, none).",
			},
			[]string{"service", "flow"},
		),
		retrievalDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "retrieval",
				Name:        "duration_seconds",
				Help:        "Retrieval duration in seconds.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: prometheus.Labels{"service": service},
			},
		),
		retrievedChunks: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "retrieval",
				Name:        "chunks_returned",
				Help:        "Number of chunks returned per retrieval.",
				Buckets:     []float64{0, 1, 2, 3, 5, 8, 13, 21},
				ConstLabels: prometheus.Labels{"service": service},
			},
		),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.retrievalTotal,
		m.retrievalDuration,
		m.retrievedChunks,
	)
	return m
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) ObserveRequest(method, path, status string, seconds float64) {
	m.requestTotal.WithLabelValues(m.service, method, path, status).Inc()
	m.requestDuration.WithLabelValues(m.service, method, path).Observe(seconds)
}

func (m *ServerMetrics) RequestStarted()  { m.requestInFlight.Inc() }
func (m *ServerMetrics) RequestFinished() { m.requestInFlight.Dec() }

// ObserveRetrieval records one retrieval call: which flow handled it, how
// long it took and how many chunks came back.
func (m *ServerMetrics) ObserveRetrieval(flow string, chunks int, seconds float64) {
	m.retrievalTotal.WithLabelValues(m.service, flow).Inc()
	m.retrievalDuration.Observe(seconds)
	m.retrievedChunks.Observe(float64(chunks))
}
