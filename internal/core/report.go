package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Percentage is a share of valid values in the range 0-100, rounded to two
// decimals. It is NaN when a column has no data rows.
type Percentage float64

// NewPercentage computes round(valid/total*100, 2), or NaN for total == 0.
func NewPercentage(valid, total int) Percentage {
	if total == 0 {
		return Percentage(math.NaN())
	}
	return Percentage(math.Round(float64(valid)/float64(total)*10000) / 100)
}

// Defined reports whether the percentage has a value.
func (p Percentage) Defined() bool {
	return !math.IsNaN(float64(p))
}

// String formats the percentage with two decimals, or "NaN".
func (p Percentage) String() string {
	if !p.Defined() {
		return "NaN"
	}
	return strconv.FormatFloat(float64(p), 'f', 2, 64)
}

// MarshalJSON encodes NaN as null; encoding/json cannot represent NaN.
func (p Percentage) MarshalJSON() ([]byte, error) {
	if !p.Defined() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(p))
}

// UnmarshalJSON reads null back as NaN.
func (p *Percentage) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = Percentage(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*p = Percentage(f)
	return nil
}

// MarshalYAML encodes NaN as null.
func (p Percentage) MarshalYAML() (interface{}, error) {
	if !p.Defined() {
		return nil, nil
	}
	return float64(p), nil
}

// ColumnQualityResult is the analysis outcome for one column.
type ColumnQualityResult struct {
	Column            string     `json:"column" yaml:"column"`
	Index             int        `json:"index" yaml:"index"`
	FieldType         FieldType  `json:"fieldType" yaml:"fieldType"`
	ValidCount        int        `json:"validCount" yaml:"validCount"`
	TotalCount        int        `json:"totalCount" yaml:"totalCount"`
	InvalidRows       []int      `json:"invalidRows" yaml:"invalidRows"` // 1-based data row positions, header excluded
	CorrectPercentage Percentage `json:"correctPercentage" yaml:"correctPercentage"`
}

// InvalidCount returns the number of invalid or empty values.
func (r ColumnQualityResult) InvalidCount() int {
	return len(r.InvalidRows)
}

// Report is the per-column result set of one analysis run. It is derived
// entirely from the grid and schema, so equal inputs give equal reports.
type Report struct {
	Columns []ColumnQualityResult `json:"columns" yaml:"columns"`

	byName map[string]int
}

func newReport(cols []ColumnQualityResult) *Report {
	r := &Report{
		Columns: cols,
		byName:  make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		// First column wins when headers repeat.
		if _, dup := r.byName[c.Column]; !dup {
			r.byName[c.Column] = i
		}
	}
	return r
}

// Detail returns the result for the named column.
func (r *Report) Detail(column string) (ColumnQualityResult, error) {
	if r == nil {
		return ColumnQualityResult{}, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	if r.byName == nil {
		// Decoded reports carry no index.
		for _, c := range r.Columns {
			if c.Column == column {
				return c, nil
			}
		}
		return ColumnQualityResult{}, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	i, ok := r.byName[column]
	if !ok {
		return ColumnQualityResult{}, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	return r.Columns[i], nil
}

// DetailAt returns the result for the column at index.
func (r *Report) DetailAt(index int) (ColumnQualityResult, error) {
	if r == nil || index < 0 || index >= len(r.Columns) {
		return ColumnQualityResult{}, fmt.Errorf("%w: index %d", ErrColumnNotFound, index)
	}
	return r.Columns[index], nil
}

// ReportSummary aggregates a report across all columns.
type ReportSummary struct {
	Columns           int        `json:"columns" yaml:"columns"`
	TypedColumns      int        `json:"typedColumns" yaml:"typedColumns"`
	ValidValues       int        `json:"validValues" yaml:"validValues"`
	TotalValues       int        `json:"totalValues" yaml:"totalValues"`
	CorrectPercentage Percentage `json:"correctPercentage" yaml:"correctPercentage"`
}

// Summary totals valid and total values over every column.
func (r *Report) Summary() ReportSummary {
	var s ReportSummary
	if r == nil {
		s.CorrectPercentage = NewPercentage(0, 0)
		return s
	}
	for _, c := range r.Columns {
		s.Columns++
		if c.FieldType != FieldNone {
			s.TypedColumns++
		}
		s.ValidValues += c.ValidCount
		s.TotalValues += c.TotalCount
	}
	s.CorrectPercentage = NewPercentage(s.ValidValues, s.TotalValues)
	return s
}
