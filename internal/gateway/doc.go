// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway is the single process-wide mediator between the
// orchestrator and the spreadsheet backend (spec §4.1). Every read,
// write, append, or delete passes through it, and it enforces three
// policies on each call:
//
//   - Serialization: a mutex totally orders backend operations within
//     the process. No internal parallelism is required or allowed.
//   - Adaptive rate limiting: a golang.org/x/time/rate limiter enforces
//     the minimum inter-call spacing, and a uniform random jitter scaled
//     by the cached active-worker count is added on top.
//   - Bounded retry: transient backend errors are retried with
//     exponential backoff (github.com/cenkalti/backoff/v4), and the
//     whole call path is wrapped in a circuit breaker
//     (github.com/sony/gobreaker/v2) so a backend outage stops burning
//     retry budget on every call once it's confirmed down.
//
// A Gateway call never partially succeeds or fails: it returns a parsed
// value, or one of ErrTransientExhausted / a *sheets.PermanentError.
package gateway
