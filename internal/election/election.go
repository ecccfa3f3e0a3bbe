// SPDX-License-Identifier: AGPL-3.0-or-later

package election

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/config"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/logging"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/metrics"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/schema"
)

// sheetGateway is the slice of *gateway.Gateway this package needs.
type sheetGateway interface {
	ReadAllWithHeaderInit(ctx context.Context, sheet string, header []string) ([][]string, error)
	Append(ctx context.Context, sheet string, row []string) error
	UpdateRow(ctx context.Context, sheet string, index int, row []string) error
}

// ActiveWorkerSource reports the current active worker count, used only
// to scale the read-back jitter window. A nil source leaves the window
// unscaled.
type ActiveWorkerSource func(ctx context.Context) (int, error)

// Election contends for a single named lease in the LeaderElection sheet.
type Election struct {
	gw       sheetGateway
	cfg      config.ElectionConfig
	workerID string
	active   ActiveWorkerSource

	held bool
}

// New constructs an Election for the lease named by cfg.Name.
func New(gw sheetGateway, cfg config.ElectionConfig, workerID string) *Election {
	return &Election{gw: gw, cfg: cfg, workerID: workerID}
}

// SetActiveWorkerSource wires the active-worker count source used to
// scale read-back jitter (spec.md's open "MAY", decided proportional).
func (e *Election) SetActiveWorkerSource(src ActiveWorkerSource) {
	e.active = src
}

// Held reports whether this process currently believes it holds the
// lease, per its own last Acquire/Renew outcome.
func (e *Election) Held() bool {
	return e.held
}

// Acquire attempts to take or renew the lease, per spec.md's algorithm:
// append if absent, overwrite if expired or already ours, otherwise fail.
func (e *Election) Acquire(ctx context.Context) (bool, error) {
	now := time.Now().UTC()
	rows, err := e.gw.ReadAllWithHeaderInit(ctx, schema.LeaderElectionSheet, schema.LeaseHeader)
	if err != nil {
		return false, fmt.Errorf("read lease sheet: %w", err)
	}

	index := -1
	var current schema.Lease
	for i, row := range rows {
		lease, err := schema.DecodeLease(row)
		if err != nil {
			continue
		}
		if lease.ElectionName == e.cfg.Name {
			index = i
			current = lease
			break
		}
	}

	fresh := schema.Lease{
		ElectionName: e.cfg.Name,
		Holder:       e.workerID,
		ExpiresAt:    now.Add(e.cfg.TTL),
	}

	switch {
	case index == -1:
		if err := e.gw.Append(ctx, schema.LeaderElectionSheet, fresh.Encode()); err != nil {
			return false, fmt.Errorf("append lease row: %w", err)
		}
	case current.Expired(now), current.Holder == e.workerID:
		if err := e.gw.UpdateRow(ctx, schema.LeaderElectionSheet, index, fresh.Encode()); err != nil {
			return false, fmt.Errorf("overwrite lease row: %w", err)
		}
	default:
		e.setHeld(false)
		metrics.LeaseAcquisitionsTotal.WithLabelValues(e.cfg.Name, "lost").Inc()
		return false, nil
	}

	held, err := e.confirm(ctx, fresh)
	if err != nil {
		return false, err
	}
	e.setHeld(held)

	outcome := "lost"
	if held {
		outcome = "held"
	}
	metrics.LeaseAcquisitionsTotal.WithLabelValues(e.cfg.Name, outcome).Inc()
	return held, nil
}

// Renew is an alias for Acquire: the protocol for renewal is identical to
// first acquisition, with holder == self as the expected precondition.
func (e *Election) Renew(ctx context.Context) (bool, error) {
	return e.Acquire(ctx)
}

// Release overwrites expires_at with a timestamp in the past. It is
// non-critical: a crash without calling Release simply lets the lease
// expire naturally.
func (e *Election) Release(ctx context.Context) error {
	rows, err := e.gw.ReadAllWithHeaderInit(ctx, schema.LeaderElectionSheet, schema.LeaseHeader)
	if err != nil {
		return fmt.Errorf("read lease sheet: %w", err)
	}

	for i, row := range rows {
		lease, err := schema.DecodeLease(row)
		if err != nil {
			continue
		}
		if lease.ElectionName != e.cfg.Name || lease.Holder != e.workerID {
			continue
		}
		lease.ExpiresAt = time.Now().UTC().Add(-1 * time.Second)
		if err := e.gw.UpdateRow(ctx, schema.LeaderElectionSheet, i, lease.Encode()); err != nil {
			return fmt.Errorf("release lease: %w", err)
		}
		break
	}
	e.setHeld(false)
	return nil
}

func (e *Election) setHeld(held bool) {
	e.held = held
	v := 0.0
	if held {
		v = 1.0
	}
	metrics.LeaseHeld.WithLabelValues(e.cfg.Name).Set(v)
}

// confirm performs the jittered read-back confirmation: it waits a
// randomized delay, then re-reads the lease row and checks it still
// shows this worker as holder with exactly the expiry written.
func (e *Election) confirm(ctx context.Context, written schema.Lease) (bool, error) {
	delay := e.readBackDelay(ctx)

	start := time.Now().Round(0)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-timer.C:
	}
	actualElapsed := time.Now().Round(0).Sub(start)
	if drift := actualElapsed - delay; drift > e.cfg.ClockSkewWarnThreshold || drift < -e.cfg.ClockSkewWarnThreshold {
		logging.Warn().Dur("drift", drift).Msg("clock warp detected during lease read-back wait")
		metrics.ClockSkewWarnings.Inc()
	}

	rows, err := e.gw.ReadAllWithHeaderInit(ctx, schema.LeaderElectionSheet, schema.LeaseHeader)
	if err != nil {
		return false, fmt.Errorf("read-back lease sheet: %w", err)
	}
	for _, row := range rows {
		lease, err := schema.DecodeLease(row)
		if err != nil {
			continue
		}
		if lease.ElectionName != e.cfg.Name {
			continue
		}
		return lease.Holder == e.workerID && lease.ExpiresAt.Equal(written.ExpiresAt.Truncate(time.Second)), nil
	}
	return false, nil
}

// readBackDelay returns a uniform random delay in [0.5, 1.5] x base,
// with base scaled proportionally to the active worker count so that a
// larger fleet spreads its confirmations over a wider window.
func (e *Election) readBackDelay(ctx context.Context) time.Duration {
	base := e.cfg.ReadBackBase
	if e.active != nil {
		if n, err := e.active(ctx); err == nil && n > 1 {
			base = base * time.Duration(n)
		}
	}
	low := float64(base) * 0.5
	high := float64(base) * 1.5
	return time.Duration(low + rand.Float64()*(high-low))
}
