// SPDX-License-Identifier: AGPL-3.0-or-later

package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2/google"
)

const sheetsAPIBase = "https://sheets.googleapis.com/v4/spreadsheets"

// sheetsScope is the minimum OAuth scope needed to read and write sheet
// data; it does not grant access to Drive metadata or sharing.
const sheetsScope = "https://www.googleapis.com/auth/spreadsheets"

// GoogleBackend implements Backend against the real Google Sheets v4 REST
// API, authenticated as a service account. It is the production
// counterpart to MemoryBackend; internal/gateway and everything above it
// is written against the Backend interface and does not know which one
// it's talking to.
type GoogleBackend struct {
	spreadsheetID string
	httpClient    *http.Client

	mu       sync.Mutex
	sheetIDs map[string]int64 // sheet title -> numeric sheetId, for batchUpdate
}

// NewGoogleBackend loads a service-account credentials file and returns a
// Backend authenticated to act as that account against spreadsheetID.
func NewGoogleBackend(ctx context.Context, serviceAccountFile, spreadsheetID string) (*GoogleBackend, error) {
	raw, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, NewPermanentError("auth", fmt.Errorf("read service account file: %w", err))
	}

	jwtConfig, err := google.JWTConfigFromJSON(raw, sheetsScope)
	if err != nil {
		return nil, NewPermanentError("auth", fmt.Errorf("parse service account credentials: %w", err))
	}

	return &GoogleBackend{
		spreadsheetID: spreadsheetID,
		httpClient:    jwtConfig.Client(ctx),
		sheetIDs:      make(map[string]int64),
	}, nil
}

type valueRange struct {
	Range  string     `json:"range,omitempty"`
	Values [][]string `json:"values,omitempty"`
}

func (g *GoogleBackend) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	url := fmt.Sprintf("%s/%s/values/%s", sheetsAPIBase, g.spreadsheetID, rangeAllRows(sheet))

	var vr valueRange
	if err := g.do(ctx, http.MethodGet, url, nil, &vr); err != nil {
		return nil, err
	}
	if len(vr.Values) == 0 {
		return nil, nil
	}
	// Row 1 is the header; data starts at row 2.
	return vr.Values[1:], nil
}

func (g *GoogleBackend) Append(ctx context.Context, sheet string, row []string) error {
	url := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=RAW&insertDataOption=INSERT_ROWS",
		sheetsAPIBase, g.spreadsheetID, rangeAllRows(sheet))

	body := valueRange{Values: [][]string{row}}
	return g.do(ctx, http.MethodPost, url, body, nil)
}

func (g *GoogleBackend) UpdateRow(ctx context.Context, sheet string, index int, row []string) error {
	url := fmt.Sprintf("%s/%s/values/%s?valueInputOption=RAW",
		sheetsAPIBase, g.spreadsheetID, rangeForDataRow(sheet, index))

	body := valueRange{Values: [][]string{row}}
	return g.do(ctx, http.MethodPut, url, body, nil)
}

func (g *GoogleBackend) WriteHeader(ctx context.Context, sheet string, header []string) error {
	url := fmt.Sprintf("%s/%s/values/%s!A1?valueInputOption=RAW",
		sheetsAPIBase, g.spreadsheetID, sheet)

	body := valueRange{Values: [][]string{header}}
	return g.do(ctx, http.MethodPut, url, body, nil)
}

func (g *GoogleBackend) DeleteRow(ctx context.Context, sheet string, index int) error {
	sheetID, err := g.resolveSheetID(ctx, sheet)
	if err != nil {
		return err
	}

	// Data row `index` is sheet row index+1 (0-based), since row 0 is the
	// header. batchUpdate's deleteDimension range is a [startIndex,
	// endIndex) half-open interval of 0-based grid rows.
	start := int64(index) + 1

	reqBody := map[string]any{
		"requests": []any{
			map[string]any{
				"deleteDimension": map[string]any{
					"range": map[string]any{
						"sheetId":    sheetID,
						"dimension":  "ROWS",
						"startIndex": start,
						"endIndex":   start + 1,
					},
				},
			},
		},
	}

	url := fmt.Sprintf("%s/%s:batchUpdate", sheetsAPIBase, g.spreadsheetID)
	return g.do(ctx, http.MethodPost, url, reqBody, nil)
}

func (g *GoogleBackend) resolveSheetID(ctx context.Context, sheet string) (int64, error) {
	g.mu.Lock()
	if id, ok := g.sheetIDs[sheet]; ok {
		g.mu.Unlock()
		return id, nil
	}
	g.mu.Unlock()

	url := fmt.Sprintf("%s/%s?fields=sheets.properties", sheetsAPIBase, g.spreadsheetID)

	var resp struct {
		Sheets []struct {
			Properties struct {
				SheetID int64  `json:"sheetId"`
				Title   string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	if err := g.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range resp.Sheets {
		g.sheetIDs[s.Properties.Title] = s.Properties.SheetID
	}
	id, ok := g.sheetIDs[sheet]
	if !ok {
		return 0, NewPermanentError("not_found", fmt.Errorf("sheet %q not found in spreadsheet", sheet))
	}
	return id, nil
}

// rangeAllRows addresses every row/column of sheet, open-ended so it
// covers however many data rows currently exist.
func rangeAllRows(sheet string) string {
	return sheet + "!A:Z"
}

// rangeForDataRow addresses the single row holding data row `index`
// (0-based, excluding the header), which sits at grid row index+2.
func rangeForDataRow(sheet string, index int) string {
	return fmt.Sprintf("%s!A%d:Z%d", sheet, index+2, index+2)
}

func (g *GoogleBackend) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return NewPermanentError("malformed_range", fmt.Errorf("encode request body: %w", err))
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return NewPermanentError("malformed_range", fmt.Errorf("build request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return NewTransientError(method, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return NewTransientError(method, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return NewPermanentError("auth", fmt.Errorf("http %d", code))
	case code == http.StatusNotFound:
		return NewPermanentError("not_found", fmt.Errorf("http %d", code))
	case code == http.StatusBadRequest:
		return NewPermanentError("malformed_range", fmt.Errorf("http %d", code))
	case code == http.StatusTooManyRequests || code >= 500:
		return NewTransientError("http", fmt.Errorf("http %d", code))
	default:
		return NewTransientError("http", fmt.Errorf("http %d", code))
	}
}
