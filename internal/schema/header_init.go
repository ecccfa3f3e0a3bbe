// SPDX-License-Identifier: AGPL-3.0-or-later

package schema

// NeedsHeaderInit reports whether a sheet's first row (as returned by a
// bulk read) is empty and therefore needs its header row written before
// any data rows are appended. Per spec §4.2, this auto-init happens on
// first contact with an empty sheet.
func NeedsHeaderInit(rows [][]string) bool {
	return len(rows) == 0
}
