package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	xls "github.com/extrame/xls"
)

// xlsCharsets are tried in order when opening a workbook. Exports from
// accounting software are mostly cp1251.
var xlsCharsets = []string{"windows-1251", "utf-8", "koi8-r"}

// xlsProbeCols bounds how far right a row is scanned for data.
const xlsProbeCols = 512

func openXLS(b []byte) (*xls.WorkBook, error) {
	var errs []error
	for _, cs := range xlsCharsets {
		wb, err := xls.OpenReader(bytes.NewReader(b), cs)
		if err == nil && wb != nil {
			return wb, nil
		}
		if err == nil {
			err = errors.New("empty workbook")
		}
		errs = append(errs, fmt.Errorf("%s: %w", cs, err))
	}
	return nil, fmt.Errorf("open xls: %w", errors.Join(errs...))
}

// sheetRow returns nil for a row the sheet has no record of.
// WorkSheet.Row dereferences the missing entry and panics instead.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// readXLS reads the first sheet of a legacy workbook. Row.LastCol() is not
// reliable on such files, so every row is probed up to xlsProbeCols and all
// rows are cut to the widest non-empty column found.
func readXLS(r io.Reader) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	wb, err := openXLS(b)
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	last := int(sheet.MaxRow)
	rows := make([][]string, 0, last+1)
	width := 0
	for i := 0; i <= last; i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, xlsProbeCols)
		for j := range cells {
			cells[j] = row.Col(j)
			if normalizeCell(cells[j]) != "" && j+1 > width {
				width = j + 1
			}
		}
		rows = append(rows, cells)
	}

	for i, cells := range rows {
		if len(cells) > width {
			rows[i] = cells[:width]
		}
	}
	return rows, nil
}
