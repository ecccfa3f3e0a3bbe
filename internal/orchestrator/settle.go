// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"fmt"
)

// settle implements spec §4.5.2: append destRow to destSheet, then delete
// the original row from pendingSheet at pendingIndex. Append happens
// first so a crash between the two steps leaves at worst a visible
// duplicate in destSheet, never a lost record.
func settle(ctx context.Context, gw sheetGateway, pendingSheet string, pendingIndex int, destSheet string, destRow []string) error {
	if err := gw.Append(ctx, destSheet, destRow); err != nil {
		return fmt.Errorf("settle: append to %s: %w", destSheet, err)
	}
	if err := gw.DeleteRow(ctx, pendingSheet, pendingIndex); err != nil {
		return fmt.Errorf("settle: delete from %s: %w", pendingSheet, err)
	}
	return nil
}
