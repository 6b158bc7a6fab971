package model

import (
	"fmt"
	"math"
	"sort"
)

// Row is one spreadsheet line keyed by header name. Values are strings,
// numbers or nil for empty cells.
type Row map[string]any

type Dataset struct {
	Columns []string // header order, already trimmed
	Rows    []Row
	index   map[string]int
}

// NewDataset builds a Dataset with a column lookup index.
func NewDataset(columns []string, rows []Row) Dataset {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return Dataset{Columns: columns, Rows: rows, index: idx}
}

// ColumnIndex returns the position of a column or -1.
func (d Dataset) ColumnIndex(name string) int {
	if d.index != nil {
		if i, ok := d.index[name]; ok {
			return i
		}
		return -1
	}
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (d Dataset) HasColumn(name string) bool { return name != "" && d.ColumnIndex(name) >= 0 }

func (d Dataset) Summary() DatasetSummary {
	return DatasetSummary{Rows: len(d.Rows), Columns: len(d.Columns)}
}

type DatasetSummary struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// Config is the per-run matching configuration.
type Config struct {
	LeftName  string  // name column in the left file
	RightName string  // name column in the right file
	LeftID    string  // optional id column in the left file
	RightID   string  // optional id column in the right file
	Threshold float64 // inclusive, 0..1
}

// ValidateThreshold rejects NaN, infinities and values outside [0, 1].
func (c Config) ValidateThreshold() error {
	t := c.Threshold
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 || t > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, t)
	}
	return nil
}

type Match struct {
	LeftName   any     `json:"leftName"`
	RightName  any     `json:"rightName"`
	Similarity float64 `json:"similarity"` // rounded to 2 decimals
	Score      float64 `json:"-"`          // raw ratio used for the threshold test
	LeftID     any     `json:"leftId,omitempty"`
	RightID    any     `json:"rightId,omitempty"`
}

type Result struct {
	Columns    []string       `json:"columns"`
	Matches    []Match        `json:"-"`
	HasLeftID  bool           `json:"-"`
	HasRightID bool           `json:"-"`
	Threshold  float64        `json:"threshold"`
	Left       DatasetSummary `json:"left"`
	Right      DatasetSummary `json:"right"`
}

func (r Result) Count() int { return len(r.Matches) }

func (r Result) Empty() bool { return len(r.Matches) == 0 }

func (r Result) Values(m Match) []any {
	out := make([]any, 0, len(r.Columns))
	out = append(out, m.LeftName, m.RightName, m.Similarity)
	if r.HasLeftID {
		out = append(out, m.LeftID)
	}
	if r.HasRightID {
		out = append(out, m.RightID)
	}
	return out
}

// Table returns every match laid out by Values.
func (r Result) Table() [][]any {
	rows := make([][]any, 0, len(r.Matches))
	for _, m := range r.Matches {
		rows = append(rows, r.Values(m))
	}
	return rows
}

// Sorted returns a copy ordered by descending similarity, then left and right name.
func (r Result) Sorted() Result {
	out := r
	out.Matches = append([]Match(nil), r.Matches...)
	sort.SliceStable(out.Matches, func(i, j int) bool {
		a, b := out.Matches[i], out.Matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		// names may come in as numbers
		if la, lb := fmt.Sprint(a.LeftName), fmt.Sprint(b.LeftName); la != lb {
			return la < lb
		}
		return fmt.Sprint(a.RightName) < fmt.Sprint(b.RightName)
	})
	return out
}

// SimilarityColumn is the header of the score column in every result table.
const SimilarityColumn = "Similarity"

// OutputColumns builds the result header. Names that collide get a
// _left or _right suffix depending on the side they come from. An id column
// named like the name column of its own side is left out.
func OutputColumns(cfg Config, withLeftID, withRightID bool) []string {
	withLeftID = withLeftID && cfg.LeftID != cfg.LeftName
	withRightID = withRightID && cfg.RightID != cfg.RightName

	type col struct {
		name string
		side string
	}
	cols := []col{{cfg.LeftName, "_left"}, {cfg.RightName, "_right"}, {SimilarityColumn, ""}}
	if withLeftID {
		cols = append(cols, col{cfg.LeftID, "_left"})
	}
	if withRightID {
		cols = append(cols, col{cfg.RightID, "_right"})
	}

	seen := make(map[string]int, len(cols))
	for _, c := range cols {
		seen[c.name]++
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
		if seen[c.name] > 1 && c.side != "" {
			out[i] = c.name + c.side
		}
	}
	return out
}
