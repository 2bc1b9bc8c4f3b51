package core

import (
	"fmt"
	"strings"
)

// FieldType is the semantic category assigned to a column for validation.
// The zero value, FieldNone, means no type is assigned.
type FieldType uint8

const (
	FieldNone FieldType = iota
	FieldPhone
	FieldDate
	FieldEmail
	FieldZipCode
	FieldAlphanumericOnly
	FieldNumericOnly
	FieldCharactersOnly

	fieldTypeCount
)

var fieldTypeNames = [fieldTypeCount]string{
	FieldNone:             "None",
	FieldPhone:            "Phone",
	FieldDate:             "Date",
	FieldEmail:            "Email",
	FieldZipCode:          "Zip Code",
	FieldAlphanumericOnly: "Alphanumeric Only",
	FieldNumericOnly:      "Numeric Only",
	FieldCharactersOnly:   "Characters Only",
}

// String returns the display name of the field type.
func (t FieldType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("FieldType(%d)", uint8(t))
	}
	return fieldTypeNames[t]
}

// Valid reports whether t is one of the declared field types.
func (t FieldType) Valid() bool {
	return t < fieldTypeCount
}

// MarshalText implements encoding.TextMarshaler. JSON and YAML both use it.
func (t FieldType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFieldType, uint8(t))
	}
	return []byte(fieldTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *FieldType) UnmarshalText(b []byte) error {
	ft, err := ParseFieldType(string(b))
	if err != nil {
		return err
	}
	*t = ft
	return nil
}

// ParseFieldType resolves a field type from its display name or a compact
// spelling. Matching ignores case, spaces, dashes and underscores, so
// "Zip Code", "zip_code" and "ZIPCODE" all resolve to FieldZipCode.
// An empty string resolves to FieldNone.
func ParseFieldType(name string) (FieldType, error) {
	key := compactName(name)
	if key == "" {
		return FieldNone, nil
	}

	for i, n := range fieldTypeNames {
		if compactName(n) == key {
			return FieldType(i), nil
		}
	}

	switch key {
	case "zip", "postal", "postalcode":
		return FieldZipCode, nil
	case "alphanumeric":
		return FieldAlphanumericOnly, nil
	case "numeric", "number", "digits":
		return FieldNumericOnly, nil
	case "characters", "letters", "text":
		return FieldCharactersOnly, nil
	}

	return FieldNone, fmt.Errorf("%w: %q", ErrUnknownFieldType, name)
}

func compactName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
