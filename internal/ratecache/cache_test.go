// SPDX-License-Identifier: AGPL-3.0-or-later

package ratecache

import (
	"testing"
	"time"
)

func TestCacheGetMissingReturnsNotOK(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	_, _, ok, err := c.Get("sheet-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a cache with no samples yet")
	}
}

func TestCachePutThenGet(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	if err := c.Put("sheet-1", 4, now); err != nil {
		t.Fatalf("Put: %v", err)
	}

	count, sampledAt, ok, err := c.Get("sheet-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true after Put")
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
	if !sampledAt.Equal(now) {
		t.Errorf("sampledAt = %v, want %v", sampledAt, now)
	}
}

func TestCacheIsolatedPerSpreadsheet(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	c.Put("sheet-a", 2, time.Now())
	c.Put("sheet-b", 9, time.Now())

	countA, _, _, _ := c.Get("sheet-a")
	countB, _, _, _ := c.Get("sheet-b")
	if countA != 2 || countB != 9 {
		t.Errorf("got countA=%d countB=%d, want 2 and 9", countA, countB)
	}
}
