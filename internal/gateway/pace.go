// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"math/rand"
	"time"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/metrics"
)

// pace blocks until it is this call's turn: first the rate limiter
// enforces BaseInterval spacing, then a uniform random jitter scaled by
// the cached active-worker count is slept on top (spec §4.1).
func (g *Gateway) pace(ctx context.Context, op string) error {
	start := time.Now()

	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	g.refreshActiveWorkers(ctx)

	if jitter := g.jitterDuration(); jitter > 0 {
		timer := time.NewTimer(jitter)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	metrics.GatewayRateLimitSleep.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return nil
}

// jitterCap returns max(0, 0.5*(active_workers-1)) seconds, capped at
// JitterCapMax, per spec §4.1's rationale that adding workers must
// reduce per-worker burst against the shared quota.
func (g *Gateway) jitterCap() time.Duration {
	n := g.cachedWorkers
	if n < 1 {
		n = 1
	}
	cap := time.Duration(float64(n-1) * 0.5 * float64(time.Second))
	if cap < 0 {
		cap = 0
	}
	if cap > g.cfg.JitterCapMax {
		cap = g.cfg.JitterCapMax
	}
	return cap
}

func (g *Gateway) jitterDuration() time.Duration {
	cap := g.jitterCap()
	if cap <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(cap)))
}

// refreshActiveWorkers opportunistically updates the cached active
// worker count, no more than once per ActiveWorkerRefresh (spec §4.1).
// Called with g.mu already held, so g.activeWorkers must not itself call
// back through the Gateway (see ActiveWorkerSource's doc comment).
func (g *Gateway) refreshActiveWorkers(ctx context.Context) {
	if g.activeWorkers == nil {
		return
	}
	if time.Since(g.cachedWorkersAt) < g.cfg.ActiveWorkerRefresh {
		return
	}

	n, err := g.activeWorkers(ctx)
	if err != nil {
		// Keep the stale cached value; a refresh failure here must not
		// block the call this pace() guards.
		return
	}
	g.cachedWorkers = n
	g.cachedWorkersAt = time.Now()
	metrics.GatewayActiveWorkers.Set(float64(n))
}
