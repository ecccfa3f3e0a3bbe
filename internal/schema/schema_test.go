// SPDX-License-Identifier: AGPL-3.0-or-later

package schema

import (
	"reflect"
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return tm
}

func TestWorkerRoundTrip(t *testing.T) {
	w := Worker{
		WorkerID:         "11111111-1111-1111-1111-111111111111",
		WorkerName:       "alpha",
		LastHeartbeat:    mustTime(t, "2026-07-31T12:00:00Z"),
		Status:           WorkerActive,
		TasksProcessed:   4,
		SourcesProcessed: 1,
	}

	got, err := DecodeWorker(w.Encode())
	if err != nil {
		t.Fatalf("DecodeWorker: %v", err)
	}
	if !reflect.DeepEqual(w, got) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, w)
	}
}

func TestWorkerUnknownStatus(t *testing.T) {
	row := []string{"id", "name", "", "SOMETHING_ELSE", "0", "0"}
	w, err := DecodeWorker(row)
	if err != nil {
		t.Fatalf("DecodeWorker: %v", err)
	}
	if w.Status != WorkerUnknown {
		t.Errorf("Status = %q, want UNKNOWN", w.Status)
	}
}

func TestSourceRoundTripPending(t *testing.T) {
	s := Source{
		ID:             "src-1",
		URL:            "https://youtube.com/playlist?list=X",
		Name:           "",
		VideoCount:     0,
		ClaimedAt:      time.Time{},
		CompletedAt:    time.Time{},
		Status:         StatusPending,
		AssignedWorker: "",
	}

	row := s.Encode()
	if len(row) != len(SourcesHeader) {
		t.Fatalf("Encode produced %d cells, want %d", len(row), len(SourcesHeader))
	}

	got, err := DecodeSource(row)
	if err != nil {
		t.Fatalf("DecodeSource: %v", err)
	}
	if !reflect.DeepEqual(s, got) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, s)
	}
}

func TestSourceDLQTrailingErrorPassthrough(t *testing.T) {
	s := Source{
		ID:     "src-2",
		URL:    "https://youtube.com/playlist?list=Y",
		Status: StatusFailed,
		Error:  "extractor timeout",
	}

	row := s.Encode()
	if len(row) != len(SourcesHeader)+1 {
		t.Fatalf("Encode produced %d cells, want %d", len(row), len(SourcesHeader)+1)
	}
	if row[len(SourcesHeader)] != "extractor timeout" {
		t.Errorf("trailing cell = %q, want error message", row[len(SourcesHeader)])
	}

	got, err := DecodeSource(row)
	if err != nil {
		t.Fatalf("DecodeSource: %v", err)
	}
	if got.Error != "extractor timeout" {
		t.Errorf("Error = %q, want preserved error message", got.Error)
	}
}

func TestTaskRoundTrip(t *testing.T) {
	tk := Task{
		ID:             "vvvvvvvvvvv",
		SourceID:       "src-1",
		URL:            "https://youtube.com/watch?v=vvvvvvvvvvv",
		Name:           "a video",
		Duration:       "PT3M",
		CreatedAt:      mustTime(t, "2026-07-31T12:00:00Z"),
		ClaimedAt:      mustTime(t, "2026-07-31T12:01:00Z"),
		CompletedAt:    time.Time{},
		Status:         StatusClaimed,
		AssignedWorker: "w1",
	}

	got, err := DecodeTask(tk.Encode())
	if err != nil {
		t.Fatalf("DecodeTask: %v", err)
	}
	if !reflect.DeepEqual(tk, got) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, tk)
	}
}

func TestTaskMissingTrailingColumnsPadded(t *testing.T) {
	row := []string{"vvvvvvvvvvv", "src-1"}
	tk, err := DecodeTask(row)
	if err != nil {
		t.Fatalf("DecodeTask: %v", err)
	}
	if tk.Status != StatusUnknown {
		t.Errorf("Status = %q, want UNKNOWN for padded empty cell", tk.Status)
	}
}

func TestValidYouTubeID(t *testing.T) {
	if !ValidYouTubeID("vvvvvvvvvvv") {
		t.Error("11-char id should be valid")
	}
	if ValidYouTubeID("short") {
		t.Error("non-11-char id should be invalid")
	}
}

func TestLeaseExpiry(t *testing.T) {
	now := mustTime(t, "2026-07-31T12:00:00Z")

	exactly := Lease{ExpiresAt: now}
	if !exactly.Expired(now) {
		t.Error("lease with expires_at == now must be expired (strict greater-than for validity)")
	}

	future := Lease{ExpiresAt: now.Add(time.Second)}
	if future.Expired(now) {
		t.Error("lease with expires_at in the future must not be expired")
	}
}

func TestLeaseRoundTrip(t *testing.T) {
	l := Lease{
		ElectionName: "source_processor",
		Holder:       "w1",
		ExpiresAt:    mustTime(t, "2026-07-31T12:05:00Z"),
	}
	got, err := DecodeLease(l.Encode())
	if err != nil {
		t.Fatalf("DecodeLease: %v", err)
	}
	if !reflect.DeepEqual(l, got) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, l)
	}
}

func TestNeedsHeaderInit(t *testing.T) {
	if !NeedsHeaderInit(nil) {
		t.Error("nil rows should need header init")
	}
	if !NeedsHeaderInit([][]string{}) {
		t.Error("empty rows should need header init")
	}
	if NeedsHeaderInit([][]string{WorkersHeader}) {
		t.Error("non-empty rows should not need header init")
	}
}
