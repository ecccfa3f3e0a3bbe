// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/config"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/sheets"
)

func testConfig() config.GatewayConfig {
	return config.GatewayConfig{
		BaseInterval:               time.Millisecond,
		JitterCapMax:               2 * time.Millisecond,
		RetryMaxAttempts:           5,
		RetryBaseInterval:          time.Millisecond,
		RetryMaxInterval:           4 * time.Millisecond,
		ActiveWorkerRefresh:        time.Minute,
		CircuitBreakerMinRequests:  10,
		CircuitBreakerFailureRatio: 0.6,
		CircuitBreakerOpenTimeout:  50 * time.Millisecond,
	}
}

func TestGatewayAppendAndReadAll(t *testing.T) {
	ctx := context.Background()
	backend := sheets.NewMemoryBackend()
	gw := New(backend, testConfig())

	if err := gw.WriteHeader(ctx, "Workers", []string{"worker_id"}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := gw.Append(ctx, "Workers", []string{"w1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows, err := gw.ReadAll(ctx, "Workers")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != "w1" {
		t.Errorf("ReadAll = %v, want one row [w1]", rows)
	}
}

func TestGatewayRetriesTransientThenSucceeds(t *testing.T) {
	ctx := context.Background()
	fi := sheets.NewFaultInjector(sheets.NewMemoryBackend())
	fi.FailTransientNext(2)

	gw := New(fi, testConfig())

	if err := gw.Append(ctx, "Tasks", []string{"x"}); err != nil {
		t.Fatalf("Append should succeed after retrying transient errors, got: %v", err)
	}
	if fi.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3 (2 failures + 1 success)", fi.Calls())
	}
}

func TestGatewayExhaustsRetriesOnPersistentTransientError(t *testing.T) {
	ctx := context.Background()
	fi := sheets.NewFaultInjector(sheets.NewMemoryBackend())
	fi.FailTransientNext(100)

	cfg := testConfig()
	gw := New(fi, cfg)

	err := gw.Append(ctx, "Tasks", []string{"x"})
	if err != ErrTransientExhausted {
		t.Fatalf("expected ErrTransientExhausted, got %v", err)
	}
	if fi.Calls() != int64(cfg.RetryMaxAttempts) {
		t.Errorf("Calls() = %d, want %d (bounded by RetryMaxAttempts)", fi.Calls(), cfg.RetryMaxAttempts)
	}
}

func TestGatewayPermanentErrorStopsImmediately(t *testing.T) {
	ctx := context.Background()
	fi := sheets.NewFaultInjector(sheets.NewMemoryBackend())
	fi.FailPermanentNext(1)

	gw := New(fi, testConfig())

	err := gw.Append(ctx, "Tasks", []string{"x"})
	if !sheets.IsPermanent(err) {
		t.Fatalf("expected a PermanentError, got %v", err)
	}
	if fi.Calls() != 1 {
		t.Errorf("Calls() = %d, want 1 (no retry on permanent error)", fi.Calls())
	}
}

func TestGatewayJitterCapFormula(t *testing.T) {
	gw := New(sheets.NewMemoryBackend(), testConfig())

	gw.cachedWorkers = 1
	if got := gw.jitterCap(); got != 0 {
		t.Errorf("jitterCap with 1 worker = %v, want 0", got)
	}

	gw.cachedWorkers = 5
	want := 2 * time.Second // 0.5*(5-1) = 2s, under the 10s JitterCapMax set below
	defaultCfg := gw.cfg
	gw.cfg.JitterCapMax = 10 * time.Second
	if got := gw.jitterCap(); got != want {
		t.Errorf("jitterCap with 5 workers = %v, want %v", got, want)
	}
	gw.cfg = defaultCfg
}

func TestGatewayJitterCapRespectsMax(t *testing.T) {
	gw := New(sheets.NewMemoryBackend(), testConfig())
	gw.cachedWorkers = 100
	if got := gw.jitterCap(); got != gw.cfg.JitterCapMax {
		t.Errorf("jitterCap with many workers = %v, want capped at %v", got, gw.cfg.JitterCapMax)
	}
}

func TestGatewayActiveWorkerSourceRefresh(t *testing.T) {
	ctx := context.Background()
	gw := New(sheets.NewMemoryBackend(), testConfig())
	gw.cfg.ActiveWorkerRefresh = 0

	calls := 0
	gw.SetActiveWorkerSource(func(ctx context.Context) (int, error) {
		calls++
		return 7, nil
	})

	if err := gw.Append(ctx, "Tasks", []string{"x"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if calls == 0 {
		t.Error("expected active worker source to be consulted at least once")
	}
	if gw.cachedWorkers != 7 {
		t.Errorf("cachedWorkers = %d, want 7", gw.cachedWorkers)
	}
}
