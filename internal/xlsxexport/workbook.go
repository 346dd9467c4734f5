package xlsxexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"papertrail/internal/csvexport"
	"papertrail/internal/domain"
)

// SheetName is the worksheet that holds the history rows.
const SheetName = "Custody History"

// WriteHistory renders entries as a single-sheet workbook and writes it to w.
// Rows use the same columns as the CSV export.
func WriteHistory(w io.Writer, entries []domain.TransferHistoryEntry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsxexport: rename sheet: %w", err)
	}

	header := make([]any, len(csvexport.Columns))
	for i, c := range csvexport.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsxexport: header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsxexport: style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(csvexport.Columns))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("xlsxexport: style: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("xlsxexport: panes: %w", err)
	}

	for i := range entries {
		row := csvexport.EntryRow(&entries[i])
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		// Entry and document ids are written as numbers so they sort properly.
		values[0] = entries[i].ID
		values[1] = entries[i].DocumentID

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsxexport: row %d: %w", i, err)
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("xlsxexport: row %d: %w", i, err)
		}
	}

	if err := f.SetColWidth(SheetName, "C", lastCol, 20); err != nil {
		return fmt.Errorf("xlsxexport: widths: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsxexport: write: %w", err)
	}
	return nil
}
