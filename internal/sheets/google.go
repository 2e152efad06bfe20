package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// googleBackend stores rows in a Google Sheets spreadsheet through a service
// account. Worksheet existence and header checks are cached per process so
// steady-state appends cost a single API call.
type googleBackend struct {
	svc     *gsheets.Service
	sheetID string
	logger  *slog.Logger

	mu       sync.Mutex
	known    map[string]bool
	verified map[string]bool
}

func newGoogleBackend(ctx context.Context, credentialsFile, sheetID string, logger *slog.Logger) (*googleBackend, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	b := &googleBackend{
		svc:      svc,
		sheetID:  sheetID,
		logger:   logger.With("component", "google_backend"),
		known:    make(map[string]bool),
		verified: make(map[string]bool),
	}
	// Also serves as the startup connectivity and permission check.
	if err := b.loadSheetTitles(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *googleBackend) loadSheetTitles(ctx context.Context) error {
	ss, err := b.svc.Spreadsheets.Get(b.sheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to fetch spreadsheet metadata: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			b.known[sh.Properties.Title] = true
		}
	}
	return nil
}

// ensureSheet creates a missing worksheet with its header row, or writes the
// header row into a pre-existing worksheet found empty. The outcome is cached.
func (b *googleBackend) ensureSheet(ctx context.Context, sheet string, headers []string) error {
	b.mu.Lock()
	if b.verified[sheet] {
		b.mu.Unlock()
		return nil
	}
	exists := b.known[sheet]
	b.mu.Unlock()

	if !exists {
		req := &gsheets.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheets.Request{{
				AddSheet: &gsheets.AddSheetRequest{
					Properties: &gsheets.SheetProperties{Title: sheet},
				},
			}},
		}
		if _, err := b.svc.Spreadsheets.BatchUpdate(b.sheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to add worksheet %s: %w", sheet, err)
		}
		if err := b.writeHeader(ctx, sheet, headers); err != nil {
			return err
		}
		b.logger.InfoContext(ctx, "Created worksheet", "sheet", sheet)
	} else {
		resp, err := b.svc.Spreadsheets.Values.Get(b.sheetID, sheetRange(sheet, "A1:A1")).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to inspect worksheet %s: %w", sheet, err)
		}
		if len(resp.Values) == 0 {
			if err := b.writeHeader(ctx, sheet, headers); err != nil {
				return err
			}
		}
	}

	b.mu.Lock()
	b.known[sheet] = true
	b.verified[sheet] = true
	b.mu.Unlock()
	return nil
}

func (b *googleBackend) writeHeader(ctx context.Context, sheet string, headers []string) error {
	vr := &gsheets.ValueRange{Values: [][]interface{}{anyRow(headers)}}
	_, err := b.svc.Spreadsheets.Values.Update(b.sheetID, sheetRange(sheet, "A1"), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write header row for %s: %w", sheet, err)
	}
	return nil
}

func (b *googleBackend) appendRow(ctx context.Context, sheet string, headers, row []string) error {
	if err := b.ensureSheet(ctx, sheet, headers); err != nil {
		return err
	}

	vr := &gsheets.ValueRange{Values: [][]interface{}{anyRow(row)}}
	_, err := b.svc.Spreadsheets.Values.Append(b.sheetID, wholeSheet(sheet), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", sheet, err)
	}
	return nil
}

func (b *googleBackend) rows(ctx context.Context, sheet string, headers []string) ([][]string, error) {
	if err := b.ensureSheet(ctx, sheet, headers); err != nil {
		return nil, err
	}

	resp, err := b.svc.Spreadsheets.Values.Get(b.sheetID, wholeSheet(sheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", sheet, err)
	}
	if len(resp.Values) <= 1 {
		return nil, nil
	}

	rows := make([][]string, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = stringCell(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *googleBackend) ping(ctx context.Context) error {
	_, err := b.svc.Spreadsheets.Get(b.sheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("spreadsheet %s is not reachable: %w", b.sheetID, err)
	}
	return nil
}

// sheetRange builds an A1-notation range with the worksheet title quoted, so
// titles like Q&A_Log pass through unharmed.
func sheetRange(sheet, ref string) string {
	return "'" + sheet + "'!" + ref
}

func wholeSheet(sheet string) string {
	return "'" + sheet + "'"
}

// stringCell renders an API cell value as a string. Values arrive as JSON
// types, so whole numbers would otherwise format with an exponent or
// trailing zeros.
func stringCell(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
