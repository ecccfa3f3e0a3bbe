// SPDX-License-Identifier: AGPL-3.0-or-later

package schema

import (
	"fmt"
	"time"
)

// Task is one row of a Tasks.{Pending,History,DLQ} sheet.
//
// Error is only meaningful for rows read from or written to Tasks.DLQ: it
// is the trailing passthrough cell, not part of TasksHeader.
type Task struct {
	ID             string
	SourceID       string
	URL            string
	Name           string
	Duration       string
	CreatedAt      time.Time
	ClaimedAt      time.Time
	CompletedAt    time.Time
	Status         PipelineStatus
	AssignedWorker string
	Error          string
}

// Encode renders t as a row matching TasksHeader. If t.Error is
// non-empty, it is appended as the trailing DLQ error cell.
func (t Task) Encode() []string {
	row := []string{
		t.ID,
		t.SourceID,
		t.URL,
		t.Name,
		t.Duration,
		encodeTime(t.CreatedAt),
		encodeTime(t.ClaimedAt),
		encodeTime(t.CompletedAt),
		string(t.Status),
		t.AssignedWorker,
	}
	if t.Error != "" {
		row = append(row, t.Error)
	}
	return row
}

// DecodeTask parses row into a Task. Any cell beyond TasksHeader's length
// is treated as the DLQ error passthrough column.
func DecodeTask(row []string) (Task, error) {
	full := padRow(row, len(TasksHeader))

	createdAt, err := decodeTime(full[5])
	if err != nil {
		return Task{}, fmt.Errorf("task created_at: %w", err)
	}
	claimedAt, err := decodeTime(full[6])
	if err != nil {
		return Task{}, fmt.Errorf("task claimed_at: %w", err)
	}
	completedAt, err := decodeTime(full[7])
	if err != nil {
		return Task{}, fmt.Errorf("task completed_at: %w", err)
	}

	var errCell string
	if len(row) > len(TasksHeader) {
		errCell = row[len(TasksHeader)]
	}

	return Task{
		ID:             full[0],
		SourceID:       full[1],
		URL:            full[2],
		Name:           full[3],
		Duration:       full[4],
		CreatedAt:      createdAt,
		ClaimedAt:      claimedAt,
		CompletedAt:    completedAt,
		Status:         decodePipelineStatus(full[8]),
		AssignedWorker: full[9],
		Error:          errCell,
	}, nil
}

// ValidYouTubeID reports whether id has the canonical 11-character
// YouTube video id shape. Per spec §8, an id of any other length must be
// rejected before it is appended, treated as an extractor failure for
// that single entry rather than for the whole source.
func ValidYouTubeID(id string) bool {
	return len(id) == 11
}
