package core

import (
	"errors"
	"testing"
)

func TestDetectFieldType(t *testing.T) {
	tests := []struct {
		header string
		want   FieldType
	}{
		{"Phone", FieldPhone},
		{"Mobile phone number", FieldPhone},
		{"Birth Date", FieldDate},
		{"EMAIL", FieldEmail},
		{"Zip", FieldZipCode},
		{"First Name", FieldCharactersOnly},
		{"Account Number", FieldNumericOnly},
		{"Product code", FieldAlphanumericOnly},
		{"Birth Date Name", FieldDate},
		{"Email Phone", FieldPhone},
		{"Company Name Code", FieldCharactersOnly},
		{"Notes", FieldNone},
		{"", FieldNone},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := DetectFieldType(tt.header); got != tt.want {
				t.Errorf("DetectFieldType(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		typ   FieldType
		value string
		want  bool
	}{
		{"phone ten digits", FieldPhone, "5551234567", true},
		{"phone with punctuation", FieldPhone, "555-123-4567", true},
		{"phone formatted", FieldPhone, "(555) 123-4567", true},
		{"phone too short", FieldPhone, "12345", false},
		{"phone too long", FieldPhone, "+1 555 123 4567", false},

		{"email valid", FieldEmail, "a@b.co", true},
		{"email no dot", FieldEmail, "a@b", false},
		{"email embedded space", FieldEmail, "a b@c.com", false},
		{"email two ats", FieldEmail, "a@@b.co", false},

		{"zip five", FieldZipCode, "90210", true},
		{"zip plus four", FieldZipCode, "90210-1234", true},
		{"zip four digits", FieldZipCode, "9021", false},
		{"zip letters", FieldZipCode, "9021A", false},

		{"date iso", FieldDate, "2024-01-15", true},
		{"date us", FieldDate, "1/15/2024", true},
		{"date long", FieldDate, "Jan 15, 2024", true},
		{"date impossible", FieldDate, "2024-02-30", false},
		{"date garbage", FieldDate, "yesterday", false},

		{"numeric digits", FieldNumericOnly, "00123", true},
		{"numeric decimal", FieldNumericOnly, "1.5", false},
		{"numeric negative", FieldNumericOnly, "-1", false},

		{"characters with space", FieldCharactersOnly, "Mary Ann", true},
		{"characters digit", FieldCharactersOnly, "R2D2", false},
		{"characters accent", FieldCharactersOnly, "José", false},

		{"alphanumeric mixed", FieldAlphanumericOnly, "AB 12", true},
		{"alphanumeric dash", FieldAlphanumericOnly, "AB-12", false},

		{"none never validates", FieldNone, "anything", false},
		{"unknown type", fieldTypeCount, "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.typ, tt.value); got != tt.want {
				t.Errorf("Validate(%v, %q) = %v, want %v", tt.typ, tt.value, got, tt.want)
			}
		})
	}
}

func TestFieldTypes(t *testing.T) {
	types := FieldTypes()
	if len(types) != int(fieldTypeCount)-1 {
		t.Fatalf("FieldTypes() returned %d entries, want %d", len(types), fieldTypeCount-1)
	}
	if types[0].Type != FieldPhone || types[0].Priority != 1 {
		t.Errorf("first entry = %+v, want Phone with priority 1", types[0])
	}
	for _, info := range types {
		if info.Type == FieldNone {
			t.Error("FieldNone must not be listed")
		}
	}
}

func TestParseFieldType(t *testing.T) {
	tests := []struct {
		in      string
		want    FieldType
		wantErr bool
	}{
		{"Email", FieldEmail, false},
		{"zip code", FieldZipCode, false},
		{"ZipCode", FieldZipCode, false},
		{"Zip Code", FieldZipCode, false},
		{"numeric_only", FieldNumericOnly, false},
		{"Alphanumeric-Only", FieldAlphanumericOnly, false},
		{"letters", FieldCharactersOnly, false},
		{"none", FieldNone, false},
		{"", FieldNone, false},
		{"currency", FieldNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFieldType(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFieldType) {
					t.Errorf("ParseFieldType(%q) err = %v, want ErrUnknownFieldType", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFieldType(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFieldType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFieldTypeText(t *testing.T) {
	for ft := FieldNone; ft < fieldTypeCount; ft++ {
		b, err := ft.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", ft, err)
		}
		var back FieldType
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if back != ft {
			t.Errorf("text round trip of %v gave %v", ft, back)
		}
	}
}
