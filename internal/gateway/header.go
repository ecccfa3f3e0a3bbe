// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import "context"

// ReadAllWithHeaderInit reads sheet's data rows, auto-initializing the
// header row first if the sheet has never been written to (spec §4.2).
//
// ReadAll strips the header from its result, so an empty data-row slice
// is ambiguous between "never initialized" and "header present, zero
// data rows" — the ordinary steady state of a drained Pending sheet.
// This process remembers, per sheet, the first time it has observed the
// header already present (either by seeing a non-empty read or by having
// written it itself) and skips the WriteHeader call on every later
// read of an empty sheet, so claim/dedup scans against a fully-drained
// sheet don't spend a Gateway call on the quota for nothing.
func (g *Gateway) ReadAllWithHeaderInit(ctx context.Context, sheet string, header []string) ([][]string, error) {
	rows, err := g.ReadAll(ctx, sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		g.markHeaderSeen(sheet)
		return rows, nil
	}
	if g.headerAlreadySeen(sheet) {
		return rows, nil
	}
	if err := g.WriteHeader(ctx, sheet, header); err != nil {
		return nil, err
	}
	g.markHeaderSeen(sheet)
	return rows, nil
}

func (g *Gateway) headerAlreadySeen(sheet string) bool {
	g.headerMu.Lock()
	defer g.headerMu.Unlock()
	return g.headerSeen[sheet]
}

func (g *Gateway) markHeaderSeen(sheet string) {
	g.headerMu.Lock()
	defer g.headerMu.Unlock()
	g.headerSeen[sheet] = true
}
