package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelWriter writes reports to an xlsx workbook on disk.
type ExcelWriter struct {
	path string
}

// NewExcelWriter creates a writer targeting the given file path. The file is
// overwritten on every write.
func NewExcelWriter(path string) *ExcelWriter {
	return &ExcelWriter{path: path}
}

// Write renders the report into Balances, Holdings, Summary and History
// sheets and saves the workbook.
func (w *ExcelWriter) Write(_ context.Context, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Balances"); err != nil {
		return fmt.Errorf("renaming default sheet: %w", err)
	}

	balanceRows := [][]any{balanceHeader()}
	for _, b := range report.Balances {
		balanceRows = append(balanceRows, balanceRow(b))
	}
	if err := writeSheet(f, "Balances", balanceRows); err != nil {
		return err
	}

	holdingRows := [][]any{holdingHeader()}
	for _, h := range report.Holdings {
		holdingRows = append(holdingRows, holdingRow(h))
	}
	if err := writeSheet(f, "Holdings", holdingRows); err != nil {
		return err
	}

	if err := writeSheet(f, "Summary", summaryRows(report.Summary)); err != nil {
		return err
	}

	historyRows := [][]any{historyHeader()}
	for _, p := range report.History {
		historyRows = append(historyRows, historyRow(p))
	}
	if err := writeSheet(f, "History", historyRows); err != nil {
		return err
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", w.path, err)
	}
	return nil
}

// writeSheet creates the sheet if needed and fills it row by row from A1.
func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("looking up sheet %s: %w", sheet, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("computing cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
