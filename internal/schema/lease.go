// SPDX-License-Identifier: AGPL-3.0-or-later

package schema

import (
	"fmt"
	"time"
)

// Lease is one row of the Leader Election sheet: a named lock with an
// expiry, per spec §3/§4.4.
type Lease struct {
	ElectionName string
	Holder       string
	ExpiresAt    time.Time
}

// Encode renders l as a row matching LeaseHeader.
func (l Lease) Encode() []string {
	return []string{l.ElectionName, l.Holder, encodeTime(l.ExpiresAt)}
}

// DecodeLease parses row into a Lease.
func DecodeLease(row []string) (Lease, error) {
	full := padRow(row, len(LeaseHeader))

	expiresAt, err := decodeTime(full[2])
	if err != nil {
		return Lease{}, fmt.Errorf("lease expires_at: %w", err)
	}

	return Lease{
		ElectionName: full[0],
		Holder:       full[1],
		ExpiresAt:    expiresAt,
	}, nil
}

// Expired reports whether the lease is no longer valid as of now. Per
// spec §8, a lease whose expires_at equals now exactly is expired:
// validity requires strict greater-than.
func (l Lease) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}
