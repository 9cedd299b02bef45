// ABOUTME: Legacy spreadsheet-shaped store client over the Google Sheets API
// ABOUTME: Exposes range reads, row appends, cell updates, and row deletion
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// ErrRangeMissing marks a read against a tab or range that does not exist.
// Callers treat it as "legitimately empty", not as a transient failure.
var ErrRangeMissing = errors.New("sheets: range not found")

// CellUpdate addresses one cell or block for a batch update.
type CellUpdate struct {
	Range  string
	Values [][]any
}

// RangeSource is the surface the data-access core consumes. Client implements
// it against a real spreadsheet; tests substitute fakes.
type RangeSource interface {
	ReadRange(ctx context.Context, rangeSpec string) ([][]any, error)
	AppendRow(ctx context.Context, rangeSpec string, row []any) error
	UpdateRange(ctx context.Context, rangeSpec string, rows [][]any) error
	BatchUpdateCells(ctx context.Context, updates []CellUpdate) error
	DeleteRowRange(ctx context.Context, sheetID, start, end int64) error
}

type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewClient creates a Sheets API client from an OAuth token.
func NewClient(ctx context.Context, token *oauth2.Token, spreadsheetID string) (*Client, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID cannot be empty")
	}

	httpClient := oauth2.NewClient(ctx, RefreshingTokenSource(ctx, token))

	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// ReadRange returns the raw 2D values for rangeSpec (e.g. "leads!A2:H").
func (c *Client) ReadRange(ctx context.Context, rangeSpec string) ([][]any, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rangeSpec).Context(ctx).Do()
	if err != nil {
		if isRangeMissing(err) {
			return nil, fmt.Errorf("%w: %s", ErrRangeMissing, rangeSpec)
		}
		return nil, fmt.Errorf("failed to read range %s: %w", rangeSpec, err)
	}
	return resp.Values, nil
}

// AppendRow appends one row after the last row of data in rangeSpec's tab.
func (c *Client) AppendRow(ctx context.Context, rangeSpec string, row []any) error {
	vr := &sheetsapi.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rangeSpec, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", rangeSpec, err)
	}
	return nil
}

// UpdateRange overwrites rangeSpec with rows.
func (c *Client) UpdateRange(ctx context.Context, rangeSpec string, rows [][]any) error {
	vr := &sheetsapi.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rangeSpec, vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update range %s: %w", rangeSpec, err)
	}
	return nil
}

// BatchUpdateCells applies several disjoint cell updates in one call.
func (c *Client) BatchUpdateCells(ctx context.Context, updates []CellUpdate) error {
	data := make([]*sheetsapi.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheetsapi.ValueRange{Range: u.Range, Values: u.Values})
	}
	req := &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	_, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to batch update cells: %w", err)
	}
	return nil
}

// DeleteRowRange removes rows [start, end) from the numeric sheet id. Indices
// are 0-based; deleting sheet row 5 means start=4, end=5.
func (c *Client) DeleteRowRange(ctx context.Context, sheetID, start, end int64) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			DeleteDimension: &sheetsapi.DeleteDimensionRequest{
				Range: &sheetsapi.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: start,
					EndIndex:   end,
				},
			},
		}},
	}
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete rows %d-%d of sheet %d: %w", start, end, sheetID, err)
	}
	return nil
}

func isRangeMissing(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusBadRequest &&
		strings.Contains(apiErr.Message, "Unable to parse range")
}
