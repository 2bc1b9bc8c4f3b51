// Package core provides column data-quality scoring.
//
// This package holds all domain logic independent of any UI or transport
// layer. It is used by the web handlers, the dqscore CLI and tests without
// modification.
//
// # Pipeline
//
// A file goes through four steps:
//
//  1. [Parse] tokenizes decoded text into a [Grid]: one header row and any
//     number of data rows. Quoted cells may contain the separator.
//  2. [DetectSchema] assigns each header a [FieldType] by keyword, using the
//     fixed priority of the type registry. [OverrideColumnType] replaces the
//     type of a single column.
//  3. [Analyze] checks every cell of every column against its assigned type
//     and counts valid values. Empty cells are always invalid.
//  4. The resulting [Report] answers per-column drill-down through
//     [Report.Detail].
//
// Parsing and analysis never fail on data. Only requests that name a column
// the file does not have return an error.
//
// # Field Types
//
// Detection matches header keywords in this order, first match wins:
//
//	phone   -> Phone            exactly 10 digits after removing other characters
//	date    -> Date             parses under one of the known date layouts
//	email   -> Email            local@domain.tld with no whitespace
//	zip     -> Zip Code         12345 or 12345-6789
//	name    -> Characters Only  ASCII letters and whitespace
//	number  -> Numeric Only     ASCII digits
//	code    -> Alphanumeric Only ASCII letters, digits and whitespace
//
// A column with no type passes any non-empty value.
//
// # Sessions
//
// [Service] keeps loaded files in memory as sessions. Each session owns one
// grid, its schema and its latest report; loading a new file replaces all
// three. Idle sessions expire after the configured TTL, and every operation
// is recorded through an [AuditStore].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - COL001-COL003: Column errors (bad index, unknown name, unknown type)
//   - SES001-SES002: Session errors (expired, not analyzed)
//   - FILE001-FILE005: File errors (size, encoding, empty)
//   - UPL002-UPL005: Load errors (busy, cancelled, timeout)
package core
