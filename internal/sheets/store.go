package sheets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/edgard/nanabot/internal/config"
)

// Store defines the interface for spreadsheet operations.
// Methods should accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks that the backing spreadsheet is reachable.
	Ping(ctx context.Context) error

	// AppendRecord appends one record to its worksheet, creating the
	// worksheet with its header row on first use.
	AppendRecord(ctx context.Context, rec Record) error

	// FoodSince retrieves food rows with a timestamp at or after since.
	FoodSince(ctx context.Context, since time.Time) ([]FoodRecord, error)

	// SleepSince retrieves sleep rows with a timestamp at or after since.
	SleepSince(ctx context.Context, since time.Time) ([]SleepRecord, error)

	// BehaviorSince retrieves behavior rows with a timestamp at or after since.
	BehaviorSince(ctx context.Context, since time.Time) ([]BehaviorRecord, error)

	// GetUser retrieves a user row by chat id. Returns nil, nil if not found.
	GetUser(ctx context.Context, chatID string) (*User, error)

	// AdminIDs retrieves the chat ids of all admin users.
	AdminIDs(ctx context.Context) ([]string, error)

	// AllRows retrieves every data row of a worksheet, header excluded.
	AllRows(ctx context.Context, sheet string) ([][]string, error)
}

// backend is the minimal surface a spreadsheet provider must implement.
// Both implementations create a missing worksheet, header row included,
// before touching it.
type backend interface {
	appendRow(ctx context.Context, sheet string, headers, row []string) error
	rows(ctx context.Context, sheet string, headers []string) ([][]string, error)
	ping(ctx context.Context) error
}

// sheetStore implements Store on top of a backend, adding row parsing and
// timestamp filtering.
type sheetStore struct {
	backend backend
	loc     *time.Location
	logger  *slog.Logger
}

// NewStore creates a Store for the configured backend: "google" appends to
// a Google Sheets spreadsheet, "xlsx" to a local workbook file.
func NewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve timezone: %w", err)
	}

	var b backend
	switch cfg.Storage.Backend {
	case "google":
		b, err = newGoogleBackend(ctx, cfg.Storage.CredentialsFile, cfg.Storage.SheetID, logger)
	case "xlsx":
		b, err = newXLSXBackend(cfg.Storage.Path, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", cfg.Storage.Backend, err)
	}

	return &sheetStore{
		backend: b,
		loc:     loc,
		logger:  logger.With("component", "store"),
	}, nil
}

// Ping checks that the backing spreadsheet is reachable.
func (s *sheetStore) Ping(ctx context.Context) error {
	return s.backend.ping(ctx)
}

// AppendRecord appends one record to its worksheet.
func (s *sheetStore) AppendRecord(ctx context.Context, rec Record) error {
	if rec == nil {
		return fmt.Errorf("cannot append nil record")
	}

	sheet := rec.Sheet()
	if err := s.backend.appendRow(ctx, sheet, Headers(sheet), rec.Row()); err != nil {
		s.logger.ErrorContext(ctx, "Error appending record", "sheet", sheet, "error", err)
		return fmt.Errorf("failed to append record to %s: %w", sheet, err)
	}

	s.logger.DebugContext(ctx, "Record appended", "sheet", sheet)
	return nil
}

// FoodSince retrieves food rows with a timestamp at or after since.
// Rows whose timestamp matches no tolerated format are skipped.
func (s *sheetStore) FoodSince(ctx context.Context, since time.Time) ([]FoodRecord, error) {
	rows, err := s.dataRows(ctx, SheetFood)
	if err != nil {
		return nil, err
	}

	var records []FoodRecord
	for _, row := range rows {
		ts, ok := ParseTimestamp(cell(row, 0), s.loc)
		if !ok || ts.Before(since) {
			continue
		}
		records = append(records, FoodRecord{
			Timestamp: ts,
			User:      cell(row, 1),
			Category:  cell(row, 2),
			Item:      cell(row, 3),
			QtyValue:  floatCell(row, 4),
			QtyUnit:   cell(row, 5),
			Method:    cell(row, 6),
			Source:    cell(row, 7),
			Notes:     cell(row, 8),
		})
	}

	s.logger.DebugContext(ctx, "Fetched food rows", "count", len(records), "since", since)
	return records, nil
}

// SleepSince retrieves sleep rows with a timestamp at or after since.
func (s *sheetStore) SleepSince(ctx context.Context, since time.Time) ([]SleepRecord, error) {
	rows, err := s.dataRows(ctx, SheetSleep)
	if err != nil {
		return nil, err
	}

	var records []SleepRecord
	for _, row := range rows {
		ts, ok := ParseTimestamp(cell(row, 0), s.loc)
		if !ok || ts.Before(since) {
			continue
		}
		var duration *int
		if d, ok := ParseDurationMinutes(cell(row, 4)); ok {
			duration = &d
		}
		records = append(records, SleepRecord{
			Timestamp:   ts,
			User:        cell(row, 1),
			Start:       cell(row, 2),
			End:         cell(row, 3),
			DurationMin: duration,
			Kind:        cell(row, 5),
			Notes:       cell(row, 6),
		})
	}

	s.logger.DebugContext(ctx, "Fetched sleep rows", "count", len(records), "since", since)
	return records, nil
}

// BehaviorSince retrieves behavior rows with a timestamp at or after since.
func (s *sheetStore) BehaviorSince(ctx context.Context, since time.Time) ([]BehaviorRecord, error) {
	rows, err := s.dataRows(ctx, SheetBehavior)
	if err != nil {
		return nil, err
	}

	var records []BehaviorRecord
	for _, row := range rows {
		ts, ok := ParseTimestamp(cell(row, 0), s.loc)
		if !ok || ts.Before(since) {
			continue
		}
		var intensity *int
		if v, err := strconv.Atoi(cell(row, 3)); err == nil {
			intensity = &v
		}
		records = append(records, BehaviorRecord{
			Timestamp:   ts,
			User:        cell(row, 1),
			Category:    cell(row, 2),
			Intensity:   intensity,
			Description: cell(row, 4),
		})
	}

	s.logger.DebugContext(ctx, "Fetched behavior rows", "count", len(records), "since", since)
	return records, nil
}

// GetUser retrieves a user row by chat id. Returns nil, nil if not found.
func (s *sheetStore) GetUser(ctx context.Context, chatID string) (*User, error) {
	rows, err := s.dataRows(ctx, SheetUsers)
	if err != nil {
		return nil, err
	}

	want := strings.TrimSpace(chatID)
	for _, row := range rows {
		if cell(row, 0) != want {
			continue
		}
		return &User{
			ChatID:     want,
			Name:       cell(row, 1),
			Authorized: truthy(cell(row, 2)),
			IsAdmin:    truthy(cell(row, 3)),
		}, nil
	}

	s.logger.DebugContext(ctx, "No user row found", "chat_id", chatID)
	return nil, nil
}

// AdminIDs retrieves the chat ids of all admin users. Ids that are not
// plain digits are skipped; they cannot be messaged.
func (s *sheetStore) AdminIDs(ctx context.Context) ([]string, error) {
	rows, err := s.dataRows(ctx, SheetUsers)
	if err != nil {
		return nil, err
	}

	var admins []string
	for _, row := range rows {
		if !truthy(cell(row, 3)) {
			continue
		}
		id := cell(row, 0)
		if id != "" && allDigits(id) {
			admins = append(admins, id)
		}
	}
	return admins, nil
}

// AllRows retrieves every data row of a worksheet, header excluded.
func (s *sheetStore) AllRows(ctx context.Context, sheet string) ([][]string, error) {
	if Headers(sheet) == nil {
		return nil, fmt.Errorf("unknown worksheet %q", sheet)
	}
	return s.dataRows(ctx, sheet)
}

func (s *sheetStore) dataRows(ctx context.Context, sheet string) ([][]string, error) {
	rows, err := s.backend.rows(ctx, sheet, Headers(sheet))
	if err != nil {
		s.logger.ErrorContext(ctx, "Error reading worksheet", "sheet", sheet, "error", err)
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	return rows, nil
}

// cell returns the trimmed value at index i, tolerating short rows.
func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func floatCell(row []string, i int) *float64 {
	v, err := strconv.ParseFloat(cell(row, i), 64)
	if err != nil {
		return nil
	}
	return &v
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
