// SPDX-License-Identifier: AGPL-3.0-or-later

// Package schema declares the fixed column layout of every sheet the
// orchestrator reads and writes, and the encode/decode functions between
// typed Go records and the positional []string rows the Gateway deals in.
//
// Column order is part of the external contract: callers of internal/sheets
// never see a row without going through Encode/Decode in this package, so a
// column can be added only at the end, never reordered. Decode pads missing
// trailing cells and preserves any cell beyond the declared columns (the DLQ
// variants carry a trailing `error` cell this way, and unknown future
// columns round-trip instead of being silently dropped).
//
// Enum fields (Worker.Status, Source.Status, Task.Status) decode an
// unrecognized value to the sentinel Unknown rather than failing, per
// spec: a row in an unreadable state must not break the whole sheet scan.
package schema
