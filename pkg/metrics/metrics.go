// Package metrics contains the Prometheus collectors for the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors
type Metrics struct {
	simulations        *prometheus.CounterVec
	simulationFailures *prometheus.CounterVec
	simulationDuration *prometheus.HistogramVec
	agentRequests      *prometheus.CounterVec
	explanationSkips   prometheus.Counter
	httpRequests       *prometheus.CounterVec
}

// New creates a new Metrics instance registered on the default registry
func New() *Metrics {
	return &Metrics{
		simulations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "policysim_simulations_total",
				Help: "Total number of simulation runs",
			},
			[]string{"context", "operation"},
		),

		simulationFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "policysim_simulation_failures_total",
				Help: "Total number of simulation runs rejected or failed",
			},
			[]string{"context", "operation"},
		),

		simulationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "policysim_simulation_duration_seconds",
				Help:    "Wall time of one orchestrated request",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		agentRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "policysim_agent_requests_total",
				Help: "Orchestrator requests by operation and terminal state",
			},
			[]string{"operation", "state"},
		),

		explanationSkips: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "policysim_explanation_skips_total",
				Help: "Explanations skipped because the LLM service failed or was absent",
			},
		),

		httpRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "policysim_http_requests_total",
				Help: "HTTP requests by path and status class",
			},
			[]string{"path", "status"},
		),
	}
}

// ObserveSimulation records one completed simulation run
func (m *Metrics) ObserveSimulation(context, operation string, seconds float64) {
	m.simulations.WithLabelValues(context, operation).Inc()
	m.simulationDuration.WithLabelValues(operation).Observe(seconds)
}

// ObserveSimulationFailure records one rejected or failed run
func (m *Metrics) ObserveSimulationFailure(context, operation string) {
	m.simulationFailures.WithLabelValues(context, operation).Inc()
}

// ObserveAgentRequest records the terminal state of one orchestrator request
func (m *Metrics) ObserveAgentRequest(operation, state string) {
	m.agentRequests.WithLabelValues(operation, state).Inc()
}

// ObserveExplanationSkip counts one skipped explanation
func (m *Metrics) ObserveExplanationSkip() {
	m.explanationSkips.Inc()
}

// ObserveHTTPRequest records one served HTTP request
func (m *Metrics) ObserveHTTPRequest(path, status string) {
	m.httpRequests.WithLabelValues(path, status).Inc()
}
