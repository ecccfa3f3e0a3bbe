// SPDX-License-Identifier: AGPL-3.0-or-later

package httpapi

import "time"

// Status is a point-in-time snapshot of this worker's identity and
// activity, served at /status.
type Status struct {
	WorkerID         string    `json:"worker_id"`
	WorkerName       string    `json:"worker_name"`
	IsLeader         bool      `json:"is_leader"`
	LastHeartbeat    time.Time `json:"last_heartbeat"`
	TasksProcessed   int64     `json:"tasks_processed"`
	SourcesProcessed int64     `json:"sources_processed"`
}

// StatusFunc produces a fresh Status snapshot on demand.
type StatusFunc func() Status
