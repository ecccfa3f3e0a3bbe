// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"time"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/schema"
)

// sourceClaimAdapter drives the generic claim protocol over the Sources
// sheet.
var sourceClaimAdapter = claimAdapter{
	Holder: func(row []string) string {
		s, err := schema.DecodeSource(row)
		if err != nil {
			return ""
		}
		return s.AssignedWorker
	},
	Claimable: func(row []string, now time.Time, ttl time.Duration) (claimable, stale bool) {
		s, err := schema.DecodeSource(row)
		if err != nil {
			return false, false
		}
		return isClaimable(s.Status, s.AssignedWorker, s.ClaimedAt, now, ttl)
	},
	ApplyClaim: func(row []string, workerID string, now time.Time) ([]string, error) {
		s, err := schema.DecodeSource(row)
		if err != nil {
			return nil, err
		}
		s.Status = schema.StatusClaimed
		s.AssignedWorker = workerID
		s.ClaimedAt = now
		return s.Encode(), nil
	},
}

// taskClaimAdapter drives the generic claim protocol over the Tasks
// sheet.
var taskClaimAdapter = claimAdapter{
	Holder: func(row []string) string {
		t, err := schema.DecodeTask(row)
		if err != nil {
			return ""
		}
		return t.AssignedWorker
	},
	Claimable: func(row []string, now time.Time, ttl time.Duration) (claimable, stale bool) {
		t, err := schema.DecodeTask(row)
		if err != nil {
			return false, false
		}
		return isClaimable(t.Status, t.AssignedWorker, t.ClaimedAt, now, ttl)
	},
	ApplyClaim: func(row []string, workerID string, now time.Time) ([]string, error) {
		t, err := schema.DecodeTask(row)
		if err != nil {
			return nil, err
		}
		t.Status = schema.StatusClaimed
		t.AssignedWorker = workerID
		t.ClaimedAt = now
		return t.Encode(), nil
	},
}

// isClaimable is the shared claimability rule for both Sources and Tasks:
// an unassigned PENDING row, or a CLAIMED row whose claimed_at is older
// than ttl (stale-claim recovery, spec §7). A row decoded with an
// UNKNOWN status is never claimable (spec §4.2).
func isClaimable(status schema.PipelineStatus, assignedWorker string, claimedAt, now time.Time, ttl time.Duration) (claimable, stale bool) {
	switch status {
	case schema.StatusPending:
		return assignedWorker == "", false
	case schema.StatusClaimed:
		if assignedWorker == "" || claimedAt.IsZero() {
			return false, false
		}
		if now.Sub(claimedAt) > ttl {
			return true, true
		}
		return false, false
	default:
		return false, false
	}
}
