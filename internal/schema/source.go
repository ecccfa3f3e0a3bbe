// SPDX-License-Identifier: AGPL-3.0-or-later

package schema

import (
	"fmt"
	"strconv"
	"time"
)

// Source is one row of a Sources.{Pending,History,DLQ} sheet.
//
// Error is only meaningful for rows read from or written to Sources.DLQ:
// it is the trailing passthrough cell, not part of SourcesHeader.
type Source struct {
	ID             string
	URL            string
	Name           string
	VideoCount     int64
	ClaimedAt      time.Time
	CompletedAt    time.Time
	Status         PipelineStatus
	AssignedWorker string
	Error          string
}

// Encode renders s as a row matching SourcesHeader. If s.Error is
// non-empty, it is appended as the trailing DLQ error cell.
func (s Source) Encode() []string {
	row := []string{
		s.ID,
		s.URL,
		s.Name,
		formatVideoCount(s.VideoCount),
		encodeTime(s.ClaimedAt),
		encodeTime(s.CompletedAt),
		string(s.Status),
		s.AssignedWorker,
	}
	if s.Error != "" {
		row = append(row, s.Error)
	}
	return row
}

// DecodeSource parses row into a Source. Any cell beyond SourcesHeader's
// length is treated as the DLQ error passthrough column.
func DecodeSource(row []string) (Source, error) {
	full := padRow(row, len(SourcesHeader))

	videoCount, err := parseCounter(full[3])
	if err != nil {
		return Source{}, fmt.Errorf("source video_count: %w", err)
	}
	claimedAt, err := decodeTime(full[4])
	if err != nil {
		return Source{}, fmt.Errorf("source claimed_at: %w", err)
	}
	completedAt, err := decodeTime(full[5])
	if err != nil {
		return Source{}, fmt.Errorf("source completed_at: %w", err)
	}

	var errCell string
	if len(row) > len(SourcesHeader) {
		errCell = row[len(SourcesHeader)]
	}

	return Source{
		ID:             full[0],
		URL:            full[1],
		Name:           full[2],
		VideoCount:     videoCount,
		ClaimedAt:      claimedAt,
		CompletedAt:    completedAt,
		Status:         decodePipelineStatus(full[6]),
		AssignedWorker: full[7],
		Error:          errCell,
	}, nil
}

func formatVideoCount(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}
