// SPDX-License-Identifier: AGPL-3.0-or-later

package sheets

import (
	"net/http"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		code      int
		wantErr   bool
		transient bool
		permanent bool
	}{
		{http.StatusOK, false, false, false},
		{http.StatusUnauthorized, true, false, true},
		{http.StatusForbidden, true, false, true},
		{http.StatusNotFound, true, false, true},
		{http.StatusBadRequest, true, false, true},
		{http.StatusTooManyRequests, true, true, false},
		{http.StatusInternalServerError, true, true, false},
	}

	for _, c := range cases {
		err := classifyStatus(c.code)
		if c.wantErr && err == nil {
			t.Errorf("code %d: expected error", c.code)
			continue
		}
		if !c.wantErr && err != nil {
			t.Errorf("code %d: unexpected error %v", c.code, err)
			continue
		}
		if c.transient && !IsTransient(err) {
			t.Errorf("code %d: expected TransientError, got %v", c.code, err)
		}
		if c.permanent && !IsPermanent(err) {
			t.Errorf("code %d: expected PermanentError, got %v", c.code, err)
		}
	}
}

func TestRangeHelpers(t *testing.T) {
	if got := rangeAllRows("Workers"); got != "Workers!A:Z" {
		t.Errorf("rangeAllRows = %q", got)
	}
	if got := rangeForDataRow("Tasks", 0); got != "Tasks!A2:Z2" {
		t.Errorf("rangeForDataRow(0) = %q, want row 2", got)
	}
	if got := rangeForDataRow("Tasks", 3); got != "Tasks!A5:Z5" {
		t.Errorf("rangeForDataRow(3) = %q, want row 5", got)
	}
}
