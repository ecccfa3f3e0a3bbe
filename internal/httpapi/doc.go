// SPDX-License-Identifier: AGPL-3.0-or-later

// Package httpapi is this worker's operator introspection surface: a
// three-route chi router exposing liveness, Prometheus metrics, and a
// human-readable status snapshot (SPEC_FULL.md §4.2). It carries no part
// of the coordination protocol itself — every route is read-only and
// safe to scrape or poll at any time.
package httpapi
