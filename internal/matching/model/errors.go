package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn is wrapped by ConfigError when a name column is absent.
	ErrMissingColumn = errors.New("name column not found")

	// ErrInvalidThreshold is returned for thresholds outside [0, 1].
	ErrInvalidThreshold = errors.New("similarity threshold must be within [0, 1]")
)

const (
	SideLeft  = "left"
	SideRight = "right"
)

// MissingColumn describes one dataset lacking its configured name column.
type MissingColumn struct {
	Dataset   string   `json:"dataset"`
	Column    string   `json:"column"`
	Available []string `json:"available"`
}

// ConfigError is returned before any matching work when a configured name
// column does not exist.
type ConfigError struct {
	Missing []MissingColumn
}

func (e *ConfigError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		parts = append(parts, fmt.Sprintf("%s dataset has no column %q (available: %s)",
			m.Dataset, m.Column, strings.Join(m.Available, ", ")))
	}
	return "columns not found: " + strings.Join(parts, "; ")
}

func (e *ConfigError) Unwrap() error { return ErrMissingColumn }
