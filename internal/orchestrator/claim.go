// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/metrics"
)

// sheetGateway is the slice of *gateway.Gateway the orchestrator needs.
type sheetGateway interface {
	ReadAllWithHeaderInit(ctx context.Context, sheet string, header []string) ([][]string, error)
	Append(ctx context.Context, sheet string, row []string) error
	UpdateRow(ctx context.Context, sheet string, index int, row []string) error
	DeleteRow(ctx context.Context, sheet string, index int) error
}

// claimAdapter lets the generic claim protocol (spec §4.5.1) operate over
// either Sources or Tasks without either schema knowing about claiming.
type claimAdapter struct {
	// Holder returns row's current assigned_worker.
	Holder func(row []string) string
	// Claimable reports whether row is an unassigned PENDING row, or a
	// CLAIMED row abandoned longer than ttl (stale-claim recovery, §7).
	Claimable func(row []string, now time.Time, ttl time.Duration) (claimable, stale bool)
	// ApplyClaim returns a copy of row with status=CLAIMED,
	// assigned_worker=workerID, claimed_at=now.
	ApplyClaim func(row []string, workerID string, now time.Time) ([]string, error)
}

// claim runs the generic claim protocol against sheet: it walks candidate
// rows in sheet order, writes each one as claimed, and confirms the write
// survived via a jittered read-back before moving on to the next
// candidate. It returns the confirmed row and its index in the sheet as
// observed at read-back time, or ok=false if nothing was claimable.
//
// Confirmation re-reads the same row position rather than searching by a
// row id, matching spec.md's literal "re-read the row" — Source rows may
// still have an empty id at claim time, so id-based lookup can't be used
// here. This assumes no other worker deletes a row above this position
// during the short read-back window; settle only deletes a row its own
// claim protocol just confirmed, so the window is bounded by that
// worker's own settle latency, not by this one's jitter.
func claim(ctx context.Context, gw sheetGateway, sheet string, header []string, workerID string, ttl, readBackBase time.Duration, adapter claimAdapter) (row []string, index int, ok bool, err error) {
	rows, err := gw.ReadAllWithHeaderInit(ctx, sheet, header)
	if err != nil {
		return nil, 0, false, fmt.Errorf("read %s: %w", sheet, err)
	}
	now := time.Now().UTC()

	for i, candidate := range rows {
		claimable, stale := adapter.Claimable(candidate, now, ttl)
		if !claimable {
			continue
		}

		metrics.ClaimAttemptsTotal.WithLabelValues(sheet).Inc()
		written, err := adapter.ApplyClaim(candidate, workerID, now)
		if err != nil {
			return nil, 0, false, fmt.Errorf("build claim write for %s: %w", sheet, err)
		}
		if err := gw.UpdateRow(ctx, sheet, i, written); err != nil {
			return nil, 0, false, fmt.Errorf("write claim to %s: %w", sheet, err)
		}

		confirmedRow, won, err := confirmClaim(ctx, gw, sheet, header, i, workerID, adapter, readBackBase)
		if err != nil {
			return nil, 0, false, err
		}
		if !won {
			continue
		}

		metrics.ClaimWinsTotal.WithLabelValues(sheet).Inc()
		if stale {
			metrics.StaleClaimsRecovered.WithLabelValues(sheet).Inc()
		}
		return confirmedRow, i, true, nil
	}

	return nil, 0, false, nil
}

// confirmClaim waits the jittered read-back delay, then re-reads sheet's
// row at index and reports whether workerID is now its holder.
func confirmClaim(ctx context.Context, gw sheetGateway, sheet string, header []string, index int, workerID string, adapter claimAdapter, readBackBase time.Duration) (row []string, ok bool, err error) {
	delay := jitteredDelay(readBackBase)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-timer.C:
	}

	rows, err := gw.ReadAllWithHeaderInit(ctx, sheet, header)
	if err != nil {
		return nil, false, fmt.Errorf("read-back %s: %w", sheet, err)
	}
	if index >= len(rows) {
		return nil, false, nil
	}
	row = rows[index]
	return row, adapter.Holder(row) == workerID, nil
}

// jitteredDelay returns a uniform random duration in [0.5, 1.5] x base.
func jitteredDelay(base time.Duration) time.Duration {
	low := float64(base) * 0.5
	high := float64(base) * 1.5
	return time.Duration(low + rand.Float64()*(high-low))
}
