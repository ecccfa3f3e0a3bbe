// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/config"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/metrics"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/schema"
)

// sheetGateway is the slice of *gateway.Gateway the registry needs. Kept
// as a local interface so tests can exercise it directly against a
// sheets.Backend without importing the gateway package.
type sheetGateway interface {
	ReadAllWithHeaderInit(ctx context.Context, sheet string, header []string) ([][]string, error)
	Append(ctx context.Context, sheet string, row []string) error
	UpdateRow(ctx context.Context, sheet string, index int, row []string) error
}

// Registry owns this process's own row in the Workers sheet (spec §4.3).
type Registry struct {
	gw  sheetGateway
	cfg config.RegistryConfig

	mu   sync.Mutex
	self schema.Worker
	// rowIndex is self's position among the sheet's data rows as of the
	// read in New. It is not re-read afterwards, since concurrent workers
	// only ever append, never reorder, rows other than their own.
	rowIndex int
}

// New registers workerName in the Workers sheet, or recovers its existing
// row (and worker_id, counters) if one is already present — spec's
// Register/Recover startup rule.
func New(ctx context.Context, gw sheetGateway, cfg config.RegistryConfig, workerName string) (*Registry, error) {
	rows, err := gw.ReadAllWithHeaderInit(ctx, schema.WorkersSheet, schema.WorkersHeader)
	if err != nil {
		return nil, fmt.Errorf("read workers sheet: %w", err)
	}

	r := &Registry{gw: gw, cfg: cfg}
	now := time.Now().UTC()

	for i, row := range rows {
		w, err := schema.DecodeWorker(row)
		if err != nil {
			continue
		}
		if w.WorkerName != workerName {
			continue
		}
		w.Status = schema.WorkerActive
		w.LastHeartbeat = now
		if err := gw.UpdateRow(ctx, schema.WorkersSheet, i, w.Encode()); err != nil {
			return nil, fmt.Errorf("recover worker row: %w", err)
		}
		r.self = w
		r.rowIndex = i
		return r, nil
	}

	w := schema.Worker{
		WorkerID:      uuid.NewString(),
		WorkerName:    workerName,
		LastHeartbeat: now,
		Status:        schema.WorkerActive,
	}
	if err := gw.Append(ctx, schema.WorkersSheet, w.Encode()); err != nil {
		return nil, fmt.Errorf("register worker row: %w", err)
	}
	r.self = w
	r.rowIndex = len(rows)
	return r, nil
}

// WorkerID returns this process's persistent worker_id.
func (r *Registry) WorkerID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.self.WorkerID
}

// SendHeartbeat refreshes last_heartbeat for this worker's row.
func (r *Registry) SendHeartbeat(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.self.LastHeartbeat = time.Now().UTC()
	if err := r.gw.UpdateRow(ctx, schema.WorkersSheet, r.rowIndex, r.self.Encode()); err != nil {
		return fmt.Errorf("send heartbeat: %w", err)
	}
	metrics.HeartbeatsTotal.Inc()
	return nil
}

// ActiveWorkers returns the number of Workers rows with status ACTIVE and
// a last_heartbeat within cfg.ActiveWindow of now. It reads through the
// Gateway, so it must not be installed as the Gateway's own
// ActiveWorkerSource (that would re-enter the Gateway's lock); cmd/worker
// samples it periodically into the rate cache instead.
func (r *Registry) ActiveWorkers(ctx context.Context) (int, error) {
	rows, err := r.gw.ReadAllWithHeaderInit(ctx, schema.WorkersSheet, schema.WorkersHeader)
	if err != nil {
		return 0, fmt.Errorf("read workers sheet: %w", err)
	}

	now := time.Now().UTC()
	count := 0
	for _, row := range rows {
		w, err := schema.DecodeWorker(row)
		if err != nil {
			continue
		}
		if w.Status != schema.WorkerActive {
			continue
		}
		if now.Sub(w.LastHeartbeat) <= r.cfg.ActiveWindow {
			count++
		}
	}
	return count, nil
}

// IncrementTasks increments this worker's lifetime tasks_processed counter.
func (r *Registry) IncrementTasks(ctx context.Context) error {
	return r.incrementCounter(ctx, true)
}

// IncrementSources increments this worker's lifetime sources_processed
// counter.
func (r *Registry) IncrementSources(ctx context.Context) error {
	return r.incrementCounter(ctx, false)
}

func (r *Registry) incrementCounter(ctx context.Context, task bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task {
		r.self.TasksProcessed++
	} else {
		r.self.SourcesProcessed++
	}
	if err := r.gw.UpdateRow(ctx, schema.WorkersSheet, r.rowIndex, r.self.Encode()); err != nil {
		return fmt.Errorf("increment counter: %w", err)
	}
	if task {
		metrics.TasksProcessedTotal.WithLabelValues("ok").Inc()
	} else {
		metrics.SourcesProcessedTotal.WithLabelValues("ok").Inc()
	}
	return nil
}

// Shutdown marks this worker INACTIVE with a final heartbeat. It is safe
// to call more than once.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.self.Status = schema.WorkerInactive
	r.self.LastHeartbeat = time.Now().UTC()
	if err := r.gw.UpdateRow(ctx, schema.WorkersSheet, r.rowIndex, r.self.Encode()); err != nil {
		return fmt.Errorf("shutdown: mark inactive: %w", err)
	}
	return nil
}
