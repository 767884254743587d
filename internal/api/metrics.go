package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the detection API.
type Metrics struct {
	registry                *prometheus.Registry
	requestsTotal           prometheus.Counter
	runsTotal               prometheus.Counter
	conflictsDetectedTotal  prometheus.Counter
	activeRuns              prometheus.Gauge
	errorsTotal             prometheus.Counter
}

// NewMetrics creates and registers Prometheus metrics for the API.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deconflict_requests_total",
		Help: "Total number of HTTP requests received",
	})
	runsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deconflict_runs_total",
		Help: "Total number of detection runs executed",
	})
	conflictsDetectedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deconflict_conflicts_detected_total",
		Help: "Total number of conflicts detected across all runs",
	})
	activeRuns := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "deconflict_active_runs",
		Help: "Number of detection runs currently executing",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deconflict_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		runsTotal,
		conflictsDetectedTotal,
		activeRuns,
		errorsTotal,
	)

	return &Metrics{
		registry:               registry,
		requestsTotal:          requestsTotal,
		runsTotal:              runsTotal,
		conflictsDetectedTotal: conflictsDetectedTotal,
		activeRuns:             activeRuns,
		errorsTotal:            errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncRuns increments the detection runs counter.
func (m *Metrics) IncRuns() {
	m.runsTotal.Inc()
}

// AddConflictsDetected adds to the conflicts detected counter.
func (m *Metrics) AddConflictsDetected(n int) {
	m.conflictsDetectedTotal.Add(float64(n))
}

// RunStarted increments the active runs gauge.
func (m *Metrics) RunStarted() {
	m.activeRuns.Inc()
}

// RunFinished decrements the active runs gauge.
func (m *Metrics) RunFinished() {
	m.activeRuns.Dec()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
