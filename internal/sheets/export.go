package sheets

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// BuildWorkbook renders the whole store as an xlsx workbook, whichever
// backend holds the data. The caller owns the returned file and must close
// it.
func BuildWorkbook(ctx context.Context, store Store) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := fillWorkbook(ctx, store, f); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func fillWorkbook(ctx context.Context, store Store, f *excelize.File) error {
	for _, sheet := range SheetNames() {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create worksheet %s: %w", sheet, err)
		}
		header := anyRow(Headers(sheet))
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header row for %s: %w", sheet, err)
		}

		rows, err := store.AllRows(ctx, sheet)
		if err != nil {
			return err
		}
		for i, row := range rows {
			cellName, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return fmt.Errorf("failed to compute row position for %s: %w", sheet, err)
			}
			values := anyRow(row)
			if err := f.SetSheetRow(sheet, cellName, &values); err != nil {
				return fmt.Errorf("failed to write row to %s: %w", sheet, err)
			}
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	return nil
}
