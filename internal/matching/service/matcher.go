package service

import (
	"math"

	"github.com/rs/zerolog"

	"name-matcher/internal/matching/model"
)

// Matcher compares the name columns of two datasets. It keeps no state
// between runs, so one value can serve concurrent requests.
type Matcher struct {
	score Scorer
	log   zerolog.Logger
}

type Option func(*Matcher)

// WithScorer replaces the default Ratio scorer.
func WithScorer(s Scorer) Option {
	return func(m *Matcher) {
		if s != nil {
			m.score = s
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Matcher) { m.log = l }
}

func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{score: Ratio, log: zerolog.Nop()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// FindMatches runs the default Matcher.
func FindMatches(left, right model.Dataset, cfg model.Config) (model.Result, error) {
	return NewMatcher().FindMatches(left, right, cfg)
}

// FindMatches returns every left/right pair sharing a block whose score is at
// least cfg.Threshold. Pairs come out block by block (blocks in ascending key
// order), then in left row order, then in right row order. A row may appear in
// several matches.
func (m *Matcher) FindMatches(left, right model.Dataset, cfg model.Config) (model.Result, error) {
	if err := Validate(left, right, cfg); err != nil {
		return model.Result{}, err
	}

	// an id column equal to its name column would only repeat the name
	withLeftID := cfg.LeftID != cfg.LeftName && left.HasColumn(cfg.LeftID)
	withRightID := cfg.RightID != cfg.RightName && right.HasColumn(cfg.RightID)

	// 1) normalization, empty keys dropped
	a := collect(left, cfg.LeftName, cfg.LeftID, withLeftID)
	b := collect(right, cfg.RightName, cfg.RightID, withRightID)

	// 2) blocking
	blocksA := buildBlocks(a)
	blocksB := buildBlocks(b)
	shared := sharedBlocks(blocksA, blocksB)

	res := model.Result{
		Columns:    model.OutputColumns(cfg, withLeftID, withRightID),
		Matches:    make([]model.Match, 0),
		HasLeftID:  withLeftID,
		HasRightID: withRightID,
		Threshold:  cfg.Threshold,
		Left:       left.Summary(),
		Right:      right.Summary(),
	}

	// 3) full cross product inside every shared block
	comparisons := 0
	for _, key := range shared {
		for _, ra := range blocksA[key] {
			for _, rb := range blocksB[key] {
				comparisons++
				s := m.score(ra.key, rb.key)
				if s < cfg.Threshold {
					continue
				}
				match := model.Match{
					LeftName:   ra.name,
					RightName:  rb.name,
					Similarity: round2(s),
					Score:      s,
				}
				if withLeftID {
					match.LeftID = ra.id
				}
				if withRightID {
					match.RightID = rb.id
				}
				res.Matches = append(res.Matches, match)
			}
		}
	}

	m.log.Debug().
		Int("left_records", len(a)).
		Int("right_records", len(b)).
		Int("left_blocks", len(blocksA)).
		Int("right_blocks", len(blocksB)).
		Int("shared_blocks", len(shared)).
		Int("comparisons", comparisons).
		Int("matches", len(res.Matches)).
		Float64("threshold", cfg.Threshold).
		Msg("name matching done")

	return res, nil
}

// Validate checks the name columns and the threshold. Missing columns are
// reported for both sides at once.
func Validate(left, right model.Dataset, cfg model.Config) error {
	var missing []model.MissingColumn
	if !left.HasColumn(cfg.LeftName) {
		missing = append(missing, missingColumn(model.SideLeft, cfg.LeftName, left))
	}
	if !right.HasColumn(cfg.RightName) {
		missing = append(missing, missingColumn(model.SideRight, cfg.RightName, right))
	}
	if len(missing) > 0 {
		return &model.ConfigError{Missing: missing}
	}
	return cfg.ValidateThreshold()
}

func missingColumn(side, col string, d model.Dataset) model.MissingColumn {
	avail := make([]string, len(d.Columns))
	copy(avail, d.Columns)
	return model.MissingColumn{Dataset: side, Column: col, Available: avail}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
