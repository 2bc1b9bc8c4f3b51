package core

import "errors"

// Sentinel errors returned by the core. Callers match them with errors.Is;
// MapError turns them into user-facing messages.
var (
	// ErrColumnOutOfRange is returned when an override names a column index
	// the loaded file does not have. The existing assignment is untouched.
	ErrColumnOutOfRange = errors.New("column index out of range")

	// ErrColumnNotFound is returned by drill-down for a column absent from
	// the report.
	ErrColumnNotFound = errors.New("column not found")

	// ErrUnknownFieldType is returned for field type names or values outside
	// the declared set.
	ErrUnknownFieldType = errors.New("unknown field type")

	// ErrEmptyFile is returned when the uploaded text has no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotAnalyzed is returned when a report is requested before the
	// session has been analyzed.
	ErrNotAnalyzed = errors.New("session not analyzed")
)
