// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/config"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/logging"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/metrics"
)

// newBreaker builds the circuit breaker wrapping the whole retrying call
// path, so a confirmed backend outage stops every worker from burning its
// retry budget on every single call.
func newBreaker(cfg config.GatewayConfig) *gobreaker.CircuitBreaker[any] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(metrics.StateToFloat("closed"))

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    0, // never reset counts while closed; ReadyToTrip below governs
		Timeout:     cfg.CircuitBreakerOpenTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.CircuitBreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			trip := ratio >= cfg.CircuitBreakerFailureRatio
			if trip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_ratio", ratio).
					Msg("gateway circuit breaker opening")
			}
			return trip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("gateway circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(metrics.StateToFloat(toStr))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
