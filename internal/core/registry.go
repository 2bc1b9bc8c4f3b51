package core

import (
	"regexp"
	"strings"
)

// typeRule pairs the header keyword that detects a field type with the
// validator for its values.
type typeRule struct {
	Type     FieldType
	Keyword  string
	Validate func(value string) bool
}

var (
	emailRegex        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipRegex          = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	alphanumericRegex = regexp.MustCompile(`^[A-Za-z0-9\s]+$`)
	numericRegex      = regexp.MustCompile(`^[0-9]+$`)
	charactersRegex   = regexp.MustCompile(`^[A-Za-z\s]+$`)
)

// detectionOrder is the fixed priority used by DetectFieldType. A header that
// contains several keywords resolves to the earliest rule, so "Birth Date Name"
// is a Date column.
var detectionOrder = []typeRule{
	{Type: FieldPhone, Keyword: "phone", Validate: validatePhone},
	{Type: FieldDate, Keyword: "date", Validate: validateDate},
	{Type: FieldEmail, Keyword: "email", Validate: emailRegex.MatchString},
	{Type: FieldZipCode, Keyword: "zip", Validate: zipRegex.MatchString},
	{Type: FieldCharactersOnly, Keyword: "name", Validate: charactersRegex.MatchString},
	{Type: FieldNumericOnly, Keyword: "number", Validate: numericRegex.MatchString},
	{Type: FieldAlphanumericOnly, Keyword: "code", Validate: alphanumericRegex.MatchString},
}

// rules is the dispatch table from field type to rule. FieldNone has no entry.
var rules [fieldTypeCount]*typeRule

func init() {
	for i := range detectionOrder {
		r := &detectionOrder[i]
		if rules[r.Type] != nil {
			panic("field type registered twice: " + r.Type.String())
		}
		rules[r.Type] = r
	}
}

// DetectFieldType guesses a column's type from its header name by
// case-insensitive keyword match. Returns FieldNone when nothing matches.
func DetectFieldType(header string) FieldType {
	h := strings.ToLower(header)
	for _, r := range detectionOrder {
		if strings.Contains(h, r.Keyword) {
			return r.Type
		}
	}
	return FieldNone
}

// Validate reports whether value satisfies the field type's pattern.
// The value is expected to be trimmed and non-empty; the analyzer handles
// empty cells itself. FieldNone and unknown types never validate here.
func Validate(t FieldType, value string) bool {
	if !t.Valid() || rules[t] == nil {
		return false
	}
	return rules[t].Validate(value)
}

// FieldTypeInfo describes a field type for listing endpoints and the CLI.
type FieldTypeInfo struct {
	Type     FieldType `json:"type" yaml:"type"`
	Keyword  string    `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Priority int       `json:"priority" yaml:"priority"`
}

// FieldTypes lists the assignable field types in detection priority order.
func FieldTypes() []FieldTypeInfo {
	out := make([]FieldTypeInfo, len(detectionOrder))
	for i, r := range detectionOrder {
		out[i] = FieldTypeInfo{Type: r.Type, Keyword: r.Keyword, Priority: i + 1}
	}
	return out
}

func validatePhone(s string) bool {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n == 10
}
