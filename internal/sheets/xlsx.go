package sheets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// xlsxBackend stores rows in a local xlsx workbook. Every operation opens,
// mutates, and saves the file under a single mutex, so the workbook on disk
// is always consistent and readable by other tools between operations.
type xlsxBackend struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

func newXLSXBackend(path string, logger *slog.Logger) (*xlsxBackend, error) {
	b := &xlsxBackend{
		path:   path,
		logger: logger.With("component", "xlsx_backend"),
	}
	if err := b.ensureWorkbook(); err != nil {
		return nil, err
	}
	return b, nil
}

// ensureWorkbook creates the workbook with every worksheet and header row
// when the file does not exist yet.
func (b *xlsxBackend) ensureWorkbook() error {
	_, err := os.Stat(b.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat workbook %s: %w", b.path, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range SheetNames() {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create worksheet %s: %w", sheet, err)
		}
		header := anyRow(Headers(sheet))
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header row for %s: %w", sheet, err)
		}
	}
	// Drop the default sheet excelize creates with the workbook.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.SaveAs(b.path); err != nil {
		return fmt.Errorf("failed to create workbook %s: %w", b.path, err)
	}
	b.logger.Info("Created workbook", "path", b.path)
	return nil
}

func (b *xlsxBackend) appendRow(ctx context.Context, sheet string, headers, row []string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := excelize.OpenFile(b.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook %s: %w", b.path, err)
	}
	defer f.Close()

	if err := ensureXLSXSheet(f, sheet, headers); err != nil {
		return err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read worksheet %s: %w", sheet, err)
	}

	cellName, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("failed to compute append position for %s: %w", sheet, err)
	}
	values := anyRow(row)
	if err := f.SetSheetRow(sheet, cellName, &values); err != nil {
		return fmt.Errorf("failed to write row to %s: %w", sheet, err)
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", b.path, err)
	}
	return nil
}

func (b *xlsxBackend) rows(ctx context.Context, sheet string, headers []string) ([][]string, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := excelize.OpenFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", b.path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to look up worksheet %s: %w", sheet, err)
	}
	if idx < 0 {
		if err := ensureXLSXSheet(f, sheet, headers); err != nil {
			return nil, err
		}
		if err := f.Save(); err != nil {
			return nil, fmt.Errorf("failed to save workbook %s: %w", b.path, err)
		}
		return nil, nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func (b *xlsxBackend) ping(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := excelize.OpenFile(b.path)
	if err != nil {
		return fmt.Errorf("workbook %s is not readable: %w", b.path, err)
	}
	return f.Close()
}

func ensureXLSXSheet(f *excelize.File, sheet string, headers []string) error {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("failed to look up worksheet %s: %w", sheet, err)
	}
	if idx >= 0 {
		return nil
	}

	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create worksheet %s: %w", sheet, err)
	}
	header := anyRow(headers)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row for %s: %w", sheet, err)
	}
	return nil
}

func anyRow(row []string) []interface{} {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	return values
}
