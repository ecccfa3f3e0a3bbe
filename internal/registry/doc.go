// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry manages this worker process's own identity row in the
// Workers sheet (spec §4.3): registration or recovery by worker_name,
// heartbeat refresh, liveness-based active worker counting for Gateway
// jitter sizing, and the lifetime task/source counters.
//
// A Registry owns exactly one row: the one matching its own worker_name.
// It reads the whole sheet only to recover that row on startup and to
// compute active_workers(); it never writes any other worker's row.
package registry
