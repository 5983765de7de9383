package utils

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// RenderOption controls how cell values are returned by BatchGet.
type RenderOption string

const (
	FormattedValue   RenderOption = "FORMATTED_VALUE"
	UnformattedValue RenderOption = "UNFORMATTED_VALUE"
)

// ValueUpdate is one (range, values) pair written by BatchUpdate.
type ValueUpdate struct {
	Range  string
	Values [][]interface{}
}

// SheetClient reads and writes value ranges of a single spreadsheet.
type SheetClient struct {
	srv     *sheets.Service
	sheetID string
}

// NewSheetClient authenticates with the service-account key at credentialsPath
// and returns a client bound to sheetID.
func NewSheetClient(ctx context.Context, sheetID, credentialsPath string) (*SheetClient, error) {
	ts, err := TokenSource(ctx, credentialsPath, []string{sheets.SpreadsheetsScope})
	if err != nil {
		return nil, err
	}
	return NewSheetClientWithOptions(ctx, sheetID, option.WithTokenSource(ts))
}

// NewSheetClientWithOptions builds a client from explicit API options.
func NewSheetClientWithOptions(ctx context.Context, sheetID string, opts ...option.ClientOption) (*SheetClient, error) {
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return &SheetClient{srv: srv, sheetID: sheetID}, nil
}

// BatchGet fetches several ranges in one round trip and returns one row
// matrix per range, in request order.
func (c *SheetClient) BatchGet(ctx context.Context, ranges []string, render RenderOption) ([][][]interface{}, error) {
	if render == "" {
		render = FormattedValue
	}
	resp, err := c.srv.Spreadsheets.Values.BatchGet(c.sheetID).
		Ranges(ranges...).
		ValueRenderOption(string(render)).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, apiError(err)
	}

	out := make([][][]interface{}, len(ranges))
	for i, vr := range resp.ValueRanges {
		if i >= len(out) {
			break
		}
		if vr != nil {
			out[i] = vr.Values
		}
	}
	return out, nil
}

// Get reads a single range with formatted values.
func (c *SheetClient) Get(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.sheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, apiError(err)
	}
	return resp.Values, nil
}

// BatchUpdate writes all updates as one RAW request.
func (c *SheetClient) BatchUpdate(ctx context.Context, updates []ValueUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheets.ValueRange{Range: u.Range, Values: u.Values})
	}

	_, err := c.srv.Spreadsheets.Values.BatchUpdate(c.sheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return apiError(err)
	}
	return nil
}

func apiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return fmt.Errorf("sheets API error: %s: %w", gerr.Message, err)
	}
	return fmt.Errorf("sheets API error: %w", err)
}

// Cell returns the trimmed text of row[i], or "" when the column is absent.
func Cell(row []interface{}, i int) string {
	if i < 0 || i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// CellNumber reports row[i] when the API delivered it as a number.
func CellNumber(row []interface{}, i int) (float64, bool) {
	if i < 0 || i >= len(row) {
		return 0, false
	}
	switch v := row[i].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
