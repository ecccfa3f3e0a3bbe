// SPDX-License-Identifier: AGPL-3.0-or-later

package ratecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const sampleKeyPrefix = "active_workers:"

// Cache durably stores the last-sampled active worker count for a given
// spreadsheet id.
type Cache struct {
	db *badger.DB
}

// sample is the JSON-encoded value stored per key.
type sample struct {
	Count     int       `json:"count"`
	SampledAt time.Time `json:"sampled_at"`
}

// Open opens (creating if necessary) a Badger database at dir.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open rate cache at %s: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying Badger database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the last sample recorded for spreadsheetID and whether one
// exists yet.
func (c *Cache) Get(spreadsheetID string) (count int, sampledAt time.Time, ok bool, err error) {
	key := []byte(sampleKeyPrefix + spreadsheetID)

	var s sample
	txErr := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get active worker sample: %w", err)
		}
		ok = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &s)
		})
	})
	if txErr != nil {
		return 0, time.Time{}, false, txErr
	}
	if !ok {
		return 0, time.Time{}, false, nil
	}
	return s.Count, s.SampledAt, true, nil
}

// Put records a fresh active worker count sample for spreadsheetID.
func (c *Cache) Put(spreadsheetID string, count int, sampledAt time.Time) error {
	data, err := json.Marshal(sample{Count: count, SampledAt: sampledAt})
	if err != nil {
		return fmt.Errorf("marshal active worker sample: %w", err)
	}

	key := []byte(sampleKeyPrefix + spreadsheetID)
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}
