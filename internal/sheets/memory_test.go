// SPDX-License-Identifier: AGPL-3.0-or-later

package sheets

import (
	"context"
	"testing"
)

func TestMemoryBackendAppendReadAll(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	if err := b.WriteHeader(ctx, "Workers", []string{"worker_id", "worker_name"}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := b.Append(ctx, "Workers", []string{"id-1", "alpha"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := b.Append(ctx, "Workers", []string{"id-2", "beta"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows, err := b.ReadAll(ctx, "Workers")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ReadAll returned %d rows, want 2", len(rows))
	}
	if rows[0][1] != "alpha" || rows[1][1] != "beta" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestMemoryBackendUpdateAndDeleteRow(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	b.Append(ctx, "Tasks", []string{"a"})
	b.Append(ctx, "Tasks", []string{"b"})
	b.Append(ctx, "Tasks", []string{"c"})

	if err := b.UpdateRow(ctx, "Tasks", 1, []string{"b2"}); err != nil {
		t.Fatalf("UpdateRow: %v", err)
	}
	if err := b.DeleteRow(ctx, "Tasks", 0); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}

	rows, err := b.ReadAll(ctx, "Tasks")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := [][]string{{"b2"}, {"c"}}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		if rows[i][0] != want[i][0] {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestMemoryBackendUpdateRowOutOfRange(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	err := b.UpdateRow(ctx, "Tasks", 0, []string{"x"})
	if !IsPermanent(err) {
		t.Errorf("expected PermanentError for out-of-range update, got %v", err)
	}
}

func TestMemoryBackendReadAllReturnsCopies(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	b.Append(ctx, "Tasks", []string{"original"})

	rows, _ := b.ReadAll(ctx, "Tasks")
	rows[0][0] = "mutated"

	rows2, _ := b.ReadAll(ctx, "Tasks")
	if rows2[0][0] != "original" {
		t.Error("mutating a ReadAll result must not affect backend state")
	}
}

func TestFaultInjectorForcesTransientThenSucceeds(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryBackend()
	fi := NewFaultInjector(inner)
	fi.FailTransientNext(2)

	_, err := fi.ReadAll(ctx, "Workers")
	if !IsTransient(err) {
		t.Fatalf("call 1: expected TransientError, got %v", err)
	}
	_, err = fi.ReadAll(ctx, "Workers")
	if !IsTransient(err) {
		t.Fatalf("call 2: expected TransientError, got %v", err)
	}
	_, err = fi.ReadAll(ctx, "Workers")
	if err != nil {
		t.Fatalf("call 3: expected success, got %v", err)
	}
	if fi.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3", fi.Calls())
	}
}

func TestFaultInjectorPermanentDoesNotSelfHeal(t *testing.T) {
	ctx := context.Background()
	fi := NewFaultInjector(NewMemoryBackend())
	fi.FailPermanentNext(1)

	err := fi.Append(ctx, "Workers", []string{"x"})
	if !IsPermanent(err) {
		t.Fatalf("expected PermanentError, got %v", err)
	}

	err = fi.Append(ctx, "Workers", []string{"x"})
	if err != nil {
		t.Fatalf("fault budget should be exhausted, got %v", err)
	}
}
