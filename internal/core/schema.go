package core

import (
	"fmt"
	"strings"
)

// ColumnType is one entry of a SchemaAssignment.
type ColumnType struct {
	Index    int       `json:"index" yaml:"index"`
	Column   string    `json:"column" yaml:"column"`
	Type     FieldType `json:"type" yaml:"type"`
	Detected FieldType `json:"detected" yaml:"detected"`
}

// Overridden reports whether the assigned type differs from the detected one.
func (c ColumnType) Overridden() bool {
	return c.Type != c.Detected
}

// SchemaAssignment maps each column of a loaded file to a FieldType.
// It has value semantics: OverrideColumnType returns a new assignment and
// never modifies the one passed in.
type SchemaAssignment struct {
	columns []ColumnType
}

// DetectSchema assigns every header its detected field type, or FieldNone
// when no keyword matches.
func DetectSchema(headers []string) SchemaAssignment {
	cols := make([]ColumnType, len(headers))
	for i, h := range headers {
		t := DetectFieldType(h)
		cols[i] = ColumnType{Index: i, Column: h, Type: t, Detected: t}
	}
	return SchemaAssignment{columns: cols}
}

// OverrideColumnType returns a copy of a with column index set to t. The
// prior value for that column is fully replaced; passing FieldNone clears it.
func OverrideColumnType(a SchemaAssignment, index int, t FieldType) (SchemaAssignment, error) {
	if index < 0 || index >= len(a.columns) {
		return a, fmt.Errorf("%w: %d (file has %d columns)", ErrColumnOutOfRange, index, len(a.columns))
	}
	if !t.Valid() {
		return a, fmt.Errorf("%w: %d", ErrUnknownFieldType, uint8(t))
	}

	cols := make([]ColumnType, len(a.columns))
	copy(cols, a.columns)
	cols[index].Type = t

	return SchemaAssignment{columns: cols}, nil
}

// Len returns the number of columns.
func (a SchemaAssignment) Len() int {
	return len(a.columns)
}

// TypeAt returns the type assigned to column index, or FieldNone when the
// index is out of range.
func (a SchemaAssignment) TypeAt(index int) FieldType {
	if index < 0 || index >= len(a.columns) {
		return FieldNone
	}
	return a.columns[index].Type
}

// IndexOf returns the index of the first column whose header equals name,
// ignoring case and surrounding whitespace.
func (a SchemaAssignment) IndexOf(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for _, c := range a.columns {
		if strings.EqualFold(strings.TrimSpace(c.Column), name) {
			return c.Index, true
		}
	}
	return -1, false
}

// Columns returns a copy of the per-column assignments in column order.
func (a SchemaAssignment) Columns() []ColumnType {
	out := make([]ColumnType, len(a.columns))
	copy(out, a.columns)
	return out
}
