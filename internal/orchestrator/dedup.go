// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"fmt"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/schema"
)

// existingTaskIDs reads the id column of Tasks.Pending, Tasks.History,
// and Tasks.DLQ, implementing spec §4.5.3's fan-out dedup check. Any
// video id already present in the returned set must be skipped. Rows
// that decode with an UNKNOWN status are themselves ignored by dedup,
// per spec §4.2.
func existingTaskIDs(ctx context.Context, gw sheetGateway) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	for _, sheet := range []string{schema.TasksPendingSheet, schema.TasksHistorySheet, schema.TasksDLQSheet} {
		rows, err := gw.ReadAllWithHeaderInit(ctx, sheet, schema.TasksHeader)
		if err != nil {
			return nil, fmt.Errorf("read %s for dedup: %w", sheet, err)
		}
		for _, row := range rows {
			task, err := schema.DecodeTask(row)
			if err != nil || task.Status == schema.StatusUnknown {
				continue
			}
			ids[task.ID] = struct{}{}
		}
	}
	return ids, nil
}
