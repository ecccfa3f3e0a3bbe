// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/logging"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/metrics"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/schema"
)

// processOneSource runs one round of leader-only source processing (spec
// §4.5.4): claim a pending source, assign it an id if it has none,
// extract, fan out deduplicated Task rows, and settle the source. The
// caller is responsible for already holding the source-processor lease.
func (o *Orchestrator) processOneSource(ctx context.Context) (bool, error) {
	row, index, ok, err := claim(ctx, o.gw, schema.SourcesPendingSheet, schema.SourcesHeader, o.workerID, o.cfg.ClaimTTL, o.cfg.ClaimReadBackBase, sourceClaimAdapter)
	if err != nil {
		return false, fmt.Errorf("claim source: %w", err)
	}
	if !ok {
		return false, nil
	}

	source, err := schema.DecodeSource(row)
	if err != nil {
		return true, fmt.Errorf("decode claimed source: %w", err)
	}

	if source.ID == "" {
		source.ID = uuid.NewString()
		if err := o.gw.UpdateRow(ctx, schema.SourcesPendingSheet, index, source.Encode()); err != nil {
			return true, fmt.Errorf("persist source id: %w", err)
		}
	}

	result, extractErr := o.extractor.Extract(ctx, source.URL)
	now := time.Now().UTC()
	if extractErr != nil {
		source.Status = schema.StatusFailed
		source.CompletedAt = now
		destRow := append(source.Encode(), extractErr.Error())
		if err := settle(ctx, o.gw, schema.SourcesPendingSheet, index, schema.SourcesDLQSheet, destRow); err != nil {
			return true, err
		}
		if o.registry != nil {
			_ = o.registry.IncrementSources(ctx)
		}
		return true, nil
	}

	if err := o.fanOut(ctx, source.ID, result.Videos); err != nil {
		return true, fmt.Errorf("fan out tasks: %w", err)
	}

	source.Name = result.Name
	source.VideoCount = int64(len(result.Videos))
	source.Status = schema.StatusDone
	source.CompletedAt = now
	if err := settle(ctx, o.gw, schema.SourcesPendingSheet, index, schema.SourcesHistorySheet, source.Encode()); err != nil {
		return true, err
	}
	if o.registry != nil {
		_ = o.registry.IncrementSources(ctx)
	}
	return true, nil
}

// fanOut appends one Tasks.Pending row per video not already present
// anywhere in the Tasks pipeline (spec §4.5.3).
func (o *Orchestrator) fanOut(ctx context.Context, sourceID string, videos []Video) error {
	existing, err := existingTaskIDs(ctx, o.gw)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, v := range videos {
		if !schema.ValidYouTubeID(v.ID) {
			metrics.InvalidVideoIDSkippedTotal.Inc()
			logging.Warn().Str("source_id", sourceID).Str("video_id", v.ID).Msg("skipping video with non-canonical id during fan-out")
			continue
		}
		if _, dup := existing[v.ID]; dup {
			metrics.DedupSkippedTotal.Inc()
			continue
		}
		task := schema.Task{
			ID:         v.ID,
			SourceID:   sourceID,
			URL:        v.URL,
			Name:       v.Title,
			Duration:   strconv.Itoa(v.DurationSeconds),
			CreatedAt:  now,
			Status:     schema.StatusPending,
		}
		if err := o.gw.Append(ctx, schema.TasksPendingSheet, task.Encode()); err != nil {
			return fmt.Errorf("append task %s: %w", v.ID, err)
		}
		existing[v.ID] = struct{}{}
	}
	return nil
}
