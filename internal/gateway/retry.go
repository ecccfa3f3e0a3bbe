// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"

	"github.com/cenkalti/backoff/v4"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/metrics"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/sheets"
)

// retryingCall runs fn with bounded exponential backoff on transient
// errors: RetryBaseInterval initial, doubling, capped at RetryMaxInterval, up to
// RetryMaxAttempts attempts total (spec §4.1). Permanent errors and
// success both stop retrying immediately.
func (g *Gateway) retryingCall(ctx context.Context, op string, fn func(ctx context.Context) (any, error)) (any, error) {
	var result any

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = g.cfg.RetryBaseInterval
	policy.MaxInterval = g.cfg.RetryMaxInterval
	policy.Multiplier = 2
	policy.MaxElapsedTime = 0 // bounded by attempt count, not wall-clock

	// WithMaxRetries permits the first attempt plus this many retries.
	bounded := backoff.WithMaxRetries(policy, uint64(g.cfg.RetryMaxAttempts-1))
	bounded = backoff.WithContext(bounded, ctx)

	attempt := 0
	operation := func() error {
		attempt++
		if attempt > 1 {
			metrics.GatewayCallRetries.WithLabelValues(op).Inc()
		}
		r, err := fn(ctx)
		if err == nil {
			result = r
			return nil
		}
		if sheets.IsPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(operation, bounded); err != nil {
		return nil, err
	}
	return result, nil
}
