// SPDX-License-Identifier: AGPL-3.0-or-later

package schema

import (
	"fmt"
	"strconv"
	"time"
)

// Worker is one row of the Workers sheet: this process's registered
// identity, heartbeat, and lifetime counters.
type Worker struct {
	WorkerID         string
	WorkerName       string
	LastHeartbeat    time.Time
	Status           WorkerStatus
	TasksProcessed   int64
	SourcesProcessed int64
}

// Encode renders w as a row matching WorkersHeader.
func (w Worker) Encode() []string {
	return []string{
		w.WorkerID,
		w.WorkerName,
		encodeTime(w.LastHeartbeat),
		string(w.Status),
		strconv.FormatInt(w.TasksProcessed, 10),
		strconv.FormatInt(w.SourcesProcessed, 10),
	}
}

// DecodeWorker parses row (padded/truncated as needed) into a Worker.
func DecodeWorker(row []string) (Worker, error) {
	row = padRow(row, len(WorkersHeader))

	heartbeat, err := decodeTime(row[2])
	if err != nil {
		return Worker{}, fmt.Errorf("worker last_heartbeat: %w", err)
	}
	tasks, err := parseCounter(row[4])
	if err != nil {
		return Worker{}, fmt.Errorf("worker tasks_processed: %w", err)
	}
	sources, err := parseCounter(row[5])
	if err != nil {
		return Worker{}, fmt.Errorf("worker sources_processed: %w", err)
	}

	return Worker{
		WorkerID:         row[0],
		WorkerName:       row[1],
		LastHeartbeat:    heartbeat,
		Status:           decodeWorkerStatus(row[3]),
		TasksProcessed:   tasks,
		SourcesProcessed: sources,
	}, nil
}

func parseCounter(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// padRow returns row extended with empty strings to at least n cells,
// leaving any cells beyond n untouched for trailing-column passthrough.
func padRow(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
