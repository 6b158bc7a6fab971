package fileio

import (
	"fmt"
	"io"

	excelize "github.com/xuri/excelize/v2"

	"name-matcher/internal/matching/model"
)

const (
	// ResultSheet is the sheet name of the exported workbook.
	ResultSheet = "Coincidencias"
	// ResultFilename is the download name offered to clients.
	ResultFilename = "coincidencias.xlsx"
	// XLSXContentType is the MIME type of the export.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WriteResultXLSX writes the header and one line per match to a single-sheet workbook.
func WriteResultXLSX(w io.Writer, res model.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ResultSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(res.Columns))
	for i, c := range res.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(ResultSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(ResultSheet, 1, 1, bold)
	}

	for i, m := range res.Matches {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := res.Values(m)
		if err := f.SetSheetRow(ResultSheet, cell, &vals); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if n := len(res.Columns); n > 0 {
		last, err := excelize.ColumnNumberToName(n)
		if err == nil {
			_ = f.SetColWidth(ResultSheet, "A", last, 24)
		}
	}

	return f.Write(w)
}
