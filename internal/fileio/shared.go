package fileio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"name-matcher/internal/matching/model"
)

// ErrUnsupportedFile is returned for extensions other than .xlsx, .xls and .csv.
var ErrUnsupportedFile = errors.New("unsupported file type")

// ReadDataset picks a parser by extension and returns the first sheet as a Dataset.
// headerRow is 1-based.
func ReadDataset(r io.Reader, filename string, headerRow int) (model.Dataset, error) {
	var (
		rows [][]string
		err  error
	)
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".xls":
		rows, err = readXLS(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return model.Dataset{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}
	if err != nil {
		return model.Dataset{}, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}
	return toDataset(rows, headerRow), nil
}

func toDataset(rows [][]string, headerRow int) model.Dataset {
	if len(rows) == 0 {
		return model.NewDataset(nil, nil)
	}
	h := pickHeader(rows, headerRow)
	return model.NewDataset(h, rowsToMaps(rows, h, headerRow))
}

// pickHeader takes the header line, trims it, fills blanks with "Column N"
// and renames repeats to "Name.1", "Name.2".
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	h := rows[idx]
	out := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		var v string
		if i < len(h) {
			v = normalizeCell(h[i])
		}
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		if n, ok := seen[v]; ok {
			seen[v] = n + 1
			v = v + "." + strconv.Itoa(n+1)
		} else {
			seen[v] = 0
		}
		out[i] = v
	}
	return out
}

// rowsToMaps turns the lines after the header into Rows, skipping fully empty
// lines. Empty cells become nil.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []model.Row {
	start := headerRow
	if start < 1 || start > len(rows) {
		start = 1
	}
	out := make([]model.Row, 0, len(rows)-start)
	for r := start; r < len(rows); r++ {
		rec := rows[r]
		m := make(model.Row, len(headers))
		empty := true
		for c := 0; c < len(headers); c++ {
			var v string
			if c < len(rec) {
				v = rec[c]
			}
			if v == "" {
				m[headers[c]] = nil
				continue
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			m[headers[c]] = v
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}

// normalizeCell trims whitespace (NBSP included) and a UTF-8 BOM.
func normalizeCell(v string) string {
	v = strings.TrimPrefix(v, "\ufeff")
	return strings.TrimSpace(v)
}
