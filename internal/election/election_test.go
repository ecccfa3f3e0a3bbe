// SPDX-License-Identifier: AGPL-3.0-or-later

package election

import (
	"context"
	"testing"
	"time"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/config"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/gateway"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/sheets"
)

func testElectionConfig() config.ElectionConfig {
	return config.ElectionConfig{
		Name:                   "source_processor",
		TTL:                    1 * time.Minute,
		RenewInterval:          10 * time.Second,
		ReadBackBase:           time.Millisecond,
		ClockSkewWarnThreshold: time.Second,
	}
}

func newElectionGateway(t *testing.T) *gateway.Gateway {
	t.Helper()
	return gateway.New(sheets.NewMemoryBackend(), config.GatewayConfig{
		BaseInterval:               time.Microsecond,
		JitterCapMax:               time.Microsecond,
		RetryMaxAttempts:           1,
		RetryBaseInterval:          time.Microsecond,
		RetryMaxInterval:           time.Microsecond,
		ActiveWorkerRefresh:        time.Hour,
		CircuitBreakerMinRequests:  10,
		CircuitBreakerFailureRatio: 0.6,
		CircuitBreakerOpenTimeout:  time.Microsecond,
	})
}

func TestElectionAcquireWhenAbsent(t *testing.T) {
	ctx := context.Background()
	gw := newElectionGateway(t)
	e := New(gw, testElectionConfig(), "worker-a")

	held, err := e.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !held {
		t.Fatal("expected to acquire an absent lease")
	}
	if !e.Held() {
		t.Error("Held() should report true after a successful Acquire")
	}
}

func TestElectionSecondWorkerCannotAcquireFreshLease(t *testing.T) {
	ctx := context.Background()
	gw := newElectionGateway(t)
	cfg := testElectionConfig()

	a := New(gw, cfg, "worker-a")
	if held, err := a.Acquire(ctx); err != nil || !held {
		t.Fatalf("worker-a Acquire: held=%v err=%v", held, err)
	}

	b := New(gw, cfg, "worker-b")
	held, err := b.Acquire(ctx)
	if err != nil {
		t.Fatalf("worker-b Acquire: %v", err)
	}
	if held {
		t.Fatal("worker-b should not acquire a lease still fresh and held by worker-a")
	}
}

func TestElectionHolderCanRenew(t *testing.T) {
	ctx := context.Background()
	gw := newElectionGateway(t)
	cfg := testElectionConfig()

	a := New(gw, cfg, "worker-a")
	if held, err := a.Acquire(ctx); err != nil || !held {
		t.Fatalf("Acquire: held=%v err=%v", held, err)
	}
	held, err := a.Renew(ctx)
	if err != nil {
		t.Fatalf("Renew: %v", err)
	}
	if !held {
		t.Fatal("the current holder should be able to renew its own lease")
	}
}

func TestElectionAcquireAfterExpiry(t *testing.T) {
	ctx := context.Background()
	gw := newElectionGateway(t)
	cfg := testElectionConfig()
	cfg.TTL = 1 * time.Millisecond

	a := New(gw, cfg, "worker-a")
	if held, err := a.Acquire(ctx); err != nil || !held {
		t.Fatalf("worker-a Acquire: held=%v err=%v", held, err)
	}

	time.Sleep(10 * time.Millisecond)

	b := New(gw, cfg, "worker-b")
	held, err := b.Acquire(ctx)
	if err != nil {
		t.Fatalf("worker-b Acquire: %v", err)
	}
	if !held {
		t.Fatal("worker-b should acquire a lease whose expires_at is in the past")
	}
}

func TestElectionRelease(t *testing.T) {
	ctx := context.Background()
	gw := newElectionGateway(t)
	cfg := testElectionConfig()

	a := New(gw, cfg, "worker-a")
	if held, err := a.Acquire(ctx); err != nil || !held {
		t.Fatalf("Acquire: held=%v err=%v", held, err)
	}
	if err := a.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if a.Held() {
		t.Error("Held() should report false immediately after Release")
	}

	b := New(gw, cfg, "worker-b")
	held, err := b.Acquire(ctx)
	if err != nil {
		t.Fatalf("worker-b Acquire: %v", err)
	}
	if !held {
		t.Fatal("worker-b should acquire a released lease")
	}
}

func TestElectionReadBackDelayScalesWithActiveWorkers(t *testing.T) {
	cfg := testElectionConfig()
	cfg.ReadBackBase = time.Second

	e := New(nil, cfg, "worker-a")
	e.SetActiveWorkerSource(func(context.Context) (int, error) { return 4, nil })

	d := e.readBackDelay(context.Background())
	if d < 2*time.Second {
		t.Errorf("readBackDelay = %v, want at least 2s when active_workers=4", d)
	}
}
