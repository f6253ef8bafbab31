// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncCycles counts finished sync cycles by outcome (success, failure, skipped).
	SyncCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_cycles_total",
			Help: "Total number of directory sync cycles by outcome",
		},
		[]string{"provider", "outcome"},
	)

	// SyncFailures counts failed cycles by the stage that failed.
	SyncFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_failures_total",
			Help: "Total number of failed sync cycles by stage",
		},
		[]string{"provider", "stage"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_sync_duration_seconds",
			Help:    "Duration of directory sync cycles",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	// SyncEntities is the number of entities emitted by the last successful cycle.
	SyncEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_sync_entities",
			Help: "Entities emitted by the last successful sync cycle",
		},
		[]string{"provider", "kind"},
	)

	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_sync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful sync cycle",
		},
		[]string{"provider"},
	)

	// CircuitBreakerState: 0 = closed, 1 = half-open, 2 = open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests passing through the circuit breaker by result",
		},
		[]string{"name", "result"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)
