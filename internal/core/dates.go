package core

// dates.go holds the date parsing used by the Date validator.
//
// Uploaded files carry dates in whatever shape the exporting tool chose, so
// a value is accepted when it parses under any of a fixed set of layouts.
// The layouts never depend on the process locale or time zone, which keeps
// validation deterministic across machines. time.Parse rejects impossible
// calendar dates such as 2024-02-30, so a successful parse is a real date.

import (
	"strings"
	"time"
)

var (
	// dateLayouts are tried first; they cover the common spreadsheet exports.
	dateLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "1-2-2006", "1.2.2006",
		"1/2/06", "1-2-06", "1.2.06",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006",
		"Jan 2 2006", "02-Jan-2006",
		"20060102",
	}

	// dateTimeLayouts accept values that carry a time of day as well.
	dateTimeLayouts = []string{
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
		"1/2/2006 15:04",
		"1/2/2006 15:04:05",
		"1/2/2006 3:04 PM",
		time.RFC1123,
		time.RFC1123Z,
	}
)

// ParseDate parses s as a calendar date or date-time. The second return is
// false when no layout matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func validateDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}
