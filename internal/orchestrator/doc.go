// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator implements the Pipeline Orchestrator (spec §4.5):
// the generic claim protocol shared by Sources and Tasks, append-then-
// delete settle, Task-id dedup across the three Tasks sheets, leader-only
// source fan-out, and the main loop that interleaves task draining with
// source processing.
//
// Every write the orchestrator makes goes through a *gateway.Gateway, so
// it inherits the Gateway's serialization, rate limiting, retry, and
// circuit breaking without any extra synchronization of its own. The
// claim protocol's read-back confirmation is this package's own
// substitute for a compare-and-set the backend doesn't offer.
package orchestrator
