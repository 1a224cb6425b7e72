// Package metrics holds the Prometheus collectors of the settlement core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "influmarket"

var (
	// LedgerMovements counts committed balance mutations.
	LedgerMovements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_movements_total",
			Help:      "Ledger movements by balance kind and direction.",
		},
		[]string{"kind", "direction"},
	)

	// EscrowTransitions counts escrow state changes by target status.
	EscrowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escrow_transitions_total",
			Help:      "Escrow transitions by target status.",
		},
		[]string{"status"},
	)

	// Captures counts payment captures by intent and result.
	Captures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_captures_total",
			Help:      "Payment captures by intent and result (applied, replayed, rejected).",
		},
		[]string{"intent", "result"},
	)

	DisputeResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispute_resolutions_total",
			Help:      "Resolved disputes by outcome.",
		},
		[]string{"outcome"},
	)

	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Payment gateway calls by operation and result.",
		},
		[]string{"operation", "result"},
	)

	// ReconcileMismatches is the number of inconsistent balances found by
	// the last reconciliation sweep.
	ReconcileMismatches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reconciliation",
			Name:      "ledger_mismatches",
			Help:      "Balances whose entry log disagrees with the materialized balance in the last sweep.",
		},
	)

	ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconciliation",
			Name:      "run_duration_seconds",
			Help:      "Duration of reconciliation sweeps in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

func init() {
	prometheus.MustRegister(
		LedgerMovements,
		EscrowTransitions,
		Captures,
		DisputeResolutions,
		GatewayRequests,
		ReconcileMismatches,
		ReconcileDuration,
	)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
