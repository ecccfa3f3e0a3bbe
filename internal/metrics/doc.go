// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics provides Prometheus instrumentation for the worker
// process: Gateway call latency/retries/circuit state, claim attempts and
// wins, leader election outcomes, and per-worker task/source throughput.
//
// Metrics are registered at package init via promauto and served by
// internal/httpapi's /metrics endpoint through promhttp.Handler().
package metrics
