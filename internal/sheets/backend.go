// SPDX-License-Identifier: AGPL-3.0-or-later

package sheets

import "context"

// Backend is the minimal set of primitives the Gateway assumes a
// spreadsheet-shaped store provides: bulk read, append, in-place row
// update, and row delete. No primitive here is conditional or
// transactional — that is the whole reason the coordination layer above
// this package exists.
//
// Row indices are zero-based positions within a sheet's data rows, not
// counting the header row. A caller that read rows via ReadAll and wants
// to update or delete the third data row passes index 2.
type Backend interface {
	// ReadAll returns every data row of sheet, in sheet order, excluding
	// the header row. An empty or not-yet-initialized sheet returns a nil
	// or empty slice, never an error.
	ReadAll(ctx context.Context, sheet string) ([][]string, error)

	// Append writes row as a new last row of sheet.
	Append(ctx context.Context, sheet string, row []string) error

	// UpdateRow overwrites the data row at index with row.
	UpdateRow(ctx context.Context, sheet string, index int, row []string) error

	// DeleteRow removes the data row at index, shifting subsequent rows
	// up by one.
	DeleteRow(ctx context.Context, sheet string, index int) error

	// WriteHeader writes header as the first row of sheet. Called once,
	// when ReadAll first observes an empty sheet.
	WriteHeader(ctx context.Context, sheet string, header []string) error
}
