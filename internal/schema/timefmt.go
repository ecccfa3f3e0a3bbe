// SPDX-License-Identifier: AGPL-3.0-or-later

package schema

import "time"

// timeLayout is the wire format for every timestamp cell: UTC, ISO-8601,
// second resolution. Spreadsheet cells are strings; there is no native
// timestamp type to lean on.
const timeLayout = time.RFC3339

// encodeTime renders t as the wire format, or "" for the zero value —
// an unset timestamp cell (e.g. a Source not yet claimed) is empty, not
// the Unix epoch.
func encodeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// decodeTime parses s as the wire format. An empty cell decodes to the
// zero Time, matching encodeTime's treatment of unset timestamps.
func decodeTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}
