// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Gateway metrics (spec §4.1)

	GatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_call_duration_seconds",
			Help:    "Duration of backend calls made through the Gateway, including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "sheet"},
	)

	GatewayCallRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_call_retries_total",
			Help: "Total number of retry attempts against transient backend errors",
		},
		[]string{"operation"},
	)

	GatewayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_calls_total",
			Help: "Total number of Gateway calls by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: ok, transient_exhausted, permanent
	)

	GatewayRateLimitSleep = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_rate_limit_sleep_seconds",
			Help:    "Time spent sleeping for base-interval pacing and jitter before a backend call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	GatewayActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_active_workers",
			Help: "Active worker count last used to size rate-limit jitter",
		},
	)

	// Circuit breaker metrics — same shape as the teacher's
	// internal/sync/circuit_breaker.go wiring.

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Claim protocol metrics (spec §4.5.1)

	ClaimAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claim_attempts_total",
			Help: "Total number of claim write attempts",
		},
		[]string{"sheet"},
	)

	ClaimWinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claim_wins_total",
			Help: "Total number of claims confirmed by read-back",
		},
		[]string{"sheet"},
	)

	StaleClaimsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stale_claims_recovered_total",
			Help: "Total number of abandoned CLAIMED rows reclaimed past claim_ttl",
		},
		[]string{"sheet"},
	)

	DedupSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fanout_dedup_skipped_total",
			Help: "Total number of videos skipped during fan-out because their id already existed",
		},
	)

	InvalidVideoIDSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fanout_invalid_video_id_skipped_total",
			Help: "Total number of videos skipped during fan-out because their id was not an 11-character YouTube id",
		},
	)

	// Leader election metrics (spec §4.4)

	LeaseAcquisitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lease_acquisitions_total",
			Help: "Total number of lease acquire/renew attempts by outcome",
		},
		[]string{"election_name", "outcome"}, // outcome: held, lost
	)

	LeaseHeld = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lease_held",
			Help: "1 if this worker currently holds the named lease, else 0",
		},
		[]string{"election_name"},
	)

	ClockSkewWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lease_clock_skew_warnings_total",
			Help: "Total number of times a lease read-back wait revealed clock drift beyond threshold",
		},
	)

	// Worker/pipeline throughput (spec §3, §4.3)

	TasksProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasks_processed_total",
			Help: "Total number of tasks settled, by outcome",
		},
		[]string{"outcome"}, // outcome: always "ok", recorded for DONE and FAILED settles alike
	)

	SourcesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sources_processed_total",
			Help: "Total number of sources settled, by outcome",
		},
		[]string{"outcome"},
	)

	HeartbeatsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "worker_heartbeats_total",
			Help: "Total number of heartbeat writes",
		},
	)
)

// StateToFloat converts a circuit breaker state name to its metric value.
func StateToFloat(state string) float64 {
	switch state {
	case "closed":
		return 0
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return -1
	}
}
