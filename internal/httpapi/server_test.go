// SPDX-License-Identifier: AGPL-3.0-or-later

package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/config"
)

func testHTTPConfig() config.HTTPConfig {
	return config.HTTPConfig{Enabled: true, Addr: ":0", RequestsPerMinute: 1000}
}

func TestHealthzReturnsOK(t *testing.T) {
	s := New(testHTTPConfig(), func() Status { return Status{} })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestStatusReturnsJSONSnapshot(t *testing.T) {
	want := Status{WorkerID: "w1", WorkerName: "worker-a", IsLeader: true, TasksProcessed: 4, SourcesProcessed: 1, LastHeartbeat: time.Now().UTC()}
	s := New(testHTTPConfig(), func() Status { return want })

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got Status
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.WorkerID != want.WorkerID || got.TasksProcessed != want.TasksProcessed {
		t.Errorf("got = %+v, want = %+v", got, want)
	}
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	s := New(testHTTPConfig(), func() Status { return Status{} })

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected non-empty metrics body")
	}
}
