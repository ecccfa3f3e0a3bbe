// SPDX-License-Identifier: AGPL-3.0-or-later

package schema

// WorkersHeader is the fixed column order of the Workers sheet.
var WorkersHeader = []string{
	"worker_id", "worker_name", "last_heartbeat", "status",
	"tasks_processed", "sources_processed",
}

// SourcesHeader is the fixed column order shared by Sources.Pending and
// Sources.History. Sources.DLQ carries one additional trailing "error"
// column, appended by the caller at append time — Decode tolerates it
// via passthrough rather than the header listing it explicitly.
var SourcesHeader = []string{
	"id", "url", "name", "video_count",
	"claimed_at", "completed_at", "status", "assigned_worker",
}

// TasksHeader is the fixed column order shared by Tasks.Pending and
// Tasks.History. Tasks.DLQ carries a trailing "error" column the same
// way Sources.DLQ does.
var TasksHeader = []string{
	"id", "source_id", "url", "name", "duration",
	"created_at", "claimed_at", "completed_at", "status", "assigned_worker",
}

// LeaseHeader is the fixed column order of the Leader Election sheet.
var LeaseHeader = []string{"election_name", "holder", "expires_at"}

// DLQErrorColumn is the label of the trailing error cell appended to any
// row moved into a DLQ sheet. It exists outside the declared header so
// that Pending/History decoding of the same record type doesn't need a
// variant just to skip a column that isn't there.
const DLQErrorColumn = "error"

// Sheet tab names (spec §3-4). Sources and Tasks each span three tabs
// sharing one schema; Workers and LeaderElection hold a single tab.
const (
	WorkersSheet       = "Workers"
	LeaderElectionSheet = "LeaderElection"

	SourcesPendingSheet = "Sources.Pending"
	SourcesHistorySheet = "Sources.History"
	SourcesDLQSheet     = "Sources.DLQ"

	TasksPendingSheet = "Tasks.Pending"
	TasksHistorySheet = "Tasks.History"
	TasksDLQSheet     = "Tasks.DLQ"
)
