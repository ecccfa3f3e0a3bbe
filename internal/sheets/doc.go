// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sheets defines the Backend contract the Gateway drives: read a
// range, write a range, append a row, delete a row. Nothing above this
// package is allowed to assume more than that — no transactions, no
// conditional writes, no row locks — since the entire coordination design
// exists to synthesize stronger guarantees on top of exactly these
// primitives.
//
// Two implementations are provided. MemoryBackend is an in-memory fake
// used by every test in this module; GoogleBackend talks to the real
// Google Sheets v4 REST API, authenticated as a service account via
// golang.org/x/oauth2/google.
package sheets
