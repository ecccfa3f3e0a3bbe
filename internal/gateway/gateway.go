// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/config"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/metrics"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/sheets"
)

// ErrTransientExhausted is returned when every retry attempt against a
// transient backend error has been used up, or when the circuit breaker
// is open. The orchestrator treats this identically to a missed loop
// iteration: sleep and retry, never escalate to a row failure.
var ErrTransientExhausted = errors.New("gateway: transient backend error, retries exhausted")

const breakerName = "sheets-backend"

// ActiveWorkerSource reports the current active worker count, used to
// size rate-limit jitter. It is invoked from inside a paced call while
// the Gateway's serialization lock is held, so it MUST NOT read through
// the Gateway itself (directly or via the Worker Registry, which reads
// through the Gateway) — doing so deadlocks on the Gateway's non-reentrant
// mutex. The production wiring in cmd/worker/main.go satisfies this by
// serving the count from the local ratecache only and refreshing that
// cache from a separate, unlocked background service.
type ActiveWorkerSource func(ctx context.Context) (int, error)

// Gateway serializes, paces, retries, and circuit-breaks every call
// against a sheets.Backend.
type Gateway struct {
	backend sheets.Backend
	cfg     config.GatewayConfig

	mu      sync.Mutex // serializes all backend calls (spec §5)
	limiter *rate.Limiter

	activeWorkers   ActiveWorkerSource
	cachedWorkers   int
	cachedWorkersAt time.Time

	breaker *gobreaker.CircuitBreaker[any]

	headerMu   sync.Mutex // guards headerSeen, independent of the call-serialization mu
	headerSeen map[string]bool
}

// New constructs a Gateway over backend. The active-worker source
// defaults to a constant 1 (no jitter) until SetActiveWorkerSource is
// called, which main.go does once the Worker Registry exists.
func New(backend sheets.Backend, cfg config.GatewayConfig) *Gateway {
	g := &Gateway{
		backend:       backend,
		cfg:           cfg,
		limiter:       rate.NewLimiter(rate.Every(cfg.BaseInterval), 1),
		cachedWorkers: 1,
		headerSeen:    make(map[string]bool),
	}
	g.breaker = newBreaker(cfg)
	return g
}

// SetActiveWorkerSource installs the callback used to refresh the cached
// active-worker count that sizes rate-limit jitter.
func (g *Gateway) SetActiveWorkerSource(src ActiveWorkerSource) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.activeWorkers = src
}

func (g *Gateway) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	result, err := g.call(ctx, "read_all", sheet, func(ctx context.Context) (any, error) {
		return g.backend.ReadAll(ctx, sheet)
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return result.([][]string), nil
}

func (g *Gateway) Append(ctx context.Context, sheet string, row []string) error {
	_, err := g.call(ctx, "append", sheet, func(ctx context.Context) (any, error) {
		return nil, g.backend.Append(ctx, sheet, row)
	})
	return err
}

func (g *Gateway) UpdateRow(ctx context.Context, sheet string, index int, row []string) error {
	_, err := g.call(ctx, "update_row", sheet, func(ctx context.Context) (any, error) {
		return nil, g.backend.UpdateRow(ctx, sheet, index, row)
	})
	return err
}

func (g *Gateway) DeleteRow(ctx context.Context, sheet string, index int) error {
	_, err := g.call(ctx, "delete_row", sheet, func(ctx context.Context) (any, error) {
		return nil, g.backend.DeleteRow(ctx, sheet, index)
	})
	return err
}

func (g *Gateway) WriteHeader(ctx context.Context, sheet string, header []string) error {
	_, err := g.call(ctx, "write_header", sheet, func(ctx context.Context) (any, error) {
		return nil, g.backend.WriteHeader(ctx, sheet, header)
	})
	return err
}

// call is the single choke point every public method funnels through:
// acquire the serialization lock, pace the call, run it under the
// circuit breaker with bounded retry on transient errors, and record
// metrics.
func (g *Gateway) call(ctx context.Context, op, sheet string, fn func(ctx context.Context) (any, error)) (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.pace(ctx, op); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := g.breaker.Execute(func() (any, error) {
		return g.retryingCall(ctx, op, fn)
	})
	metrics.GatewayCallDuration.WithLabelValues(op, sheet).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.GatewayCallsTotal.WithLabelValues(op, "ok").Inc()
		return result, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.GatewayCallsTotal.WithLabelValues(op, "transient_exhausted").Inc()
		return nil, ErrTransientExhausted
	case sheets.IsPermanent(err):
		metrics.GatewayCallsTotal.WithLabelValues(op, "permanent").Inc()
		return nil, err
	default:
		metrics.GatewayCallsTotal.WithLabelValues(op, "transient_exhausted").Inc()
		return nil, ErrTransientExhausted
	}
}
