package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "pay_public_api"

// Prometheus collectors served on /-/metrics. They use the default registry
// so promhttp.Handler picks them up without extra wiring.
var (
	errorResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "error_responses_total",
		Help:      "Error envelopes returned to clients, by error identifier and status.",
	}, []string{"error_identifier", "status"})

	downstreamOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "downstream_failures_total",
		Help:      "Downstream failures translated for clients, by operation and outcome.",
	}, []string{"operation", "outcome"})

	circuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "downstream_circuit_state",
		Help:      "Circuit breaker state per downstream: 0 closed, 1 open, 2 half-open.",
	}, []string{"downstream"})
)

// RecordErrorResponse counts one error envelope sent to a client.
func RecordErrorResponse(errorIdentifier string, status int) {
	errorResponses.WithLabelValues(errorIdentifier, strconv.Itoa(status)).Inc()
}

// RecordDownstreamFailure counts one translated downstream failure.
func RecordDownstreamFailure(operation, outcome string) {
	downstreamOutcomes.WithLabelValues(operation, outcome).Inc()
}

// SetCircuitState publishes the circuit breaker state of a downstream.
func SetCircuitState(downstream string, state int) {
	circuitState.WithLabelValues(downstream).Set(float64(state))
}
