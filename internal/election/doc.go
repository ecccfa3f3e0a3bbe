// SPDX-License-Identifier: AGPL-3.0-or-later

// Package election implements lease-based leader election over a single
// row of the LeaderElection sheet (spec §4.4). The backend offers no
// compare-and-set, so every write is followed by a jittered read-back: the
// worker waits a randomized delay, then re-reads the row and holds the
// lease iff it still shows the worker's own holder id and the exact
// expiry it wrote. Simultaneous overwrites from two racing workers are
// expected and tolerated; the jitter exists only to make a tie
// increasingly unlikely across successive loop iterations, not to
// prevent it outright.
//
// Per DESIGN.md's decision on spec.md's open "MAY" around scaling the
// read-back delay with the active worker population: this package scales
// its read-back window proportionally to the active worker count, reusing
// the same ActiveWorkerSource callback the Gateway uses for its own
// jitter sizing, so Election never has to issue its own Workers-sheet
// read just to decide how long to wait.
package election
