// Package core provides column data-quality scoring.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Column Errors (COL001-COL099)
//
// Errors related to schema overrides and drill-down:
//
//	COL001 - Column out of range: The file has no column at that position
//	         Action: Choose a column from the loaded file's header
//	         Sentinel: ErrColumnOutOfRange
//
//	COL002 - Column not found: The report has no column with that name
//	         Action: Check the column name against the report
//	         Sentinel: ErrColumnNotFound
//
//	COL003 - Unknown field type: The type is not one of the supported types
//	         Action: Pick a type from the field type list
//	         Sentinel: ErrUnknownFieldType
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session not found: The session does not exist or has expired
//	         Action: Upload the file again to start a new session
//	         Sentinel: ErrSessionNotFound
//
//	SES002 - Not analyzed: No report exists for this session yet
//	         Action: Run the analysis first
//	         Sentinel: ErrNotAnalyzed
//
// # File Errors (FILE001-FILE099)
//
// Errors related to file handling and parsing:
//
//	FILE001 - File too large: File exceeds maximum size limit
//	          Action: Split the file into smaller chunks
//	          Sentinel: ErrFileTooLarge
//
//	FILE003 - Encoding error: File contains invalid characters
//	          Action: Save file as UTF-8 encoding
//	          Patterns: "encoding error"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV file to upload
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The uploaded file has no header row
//	          Action: Please upload a file with a header line
//	          Sentinel: ErrEmptyFile
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads in progress
//	         Action: Please wait a moment and try again
//	         Sentinel: ErrTooManyUploads
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Sentinel: context.Canceled
//
//	UPL005 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Sentinel: context.DeadlineExceeded
//
// # Database Errors (DB001-DB099)
//
// Only reachable when the audit log is stored in Postgres:
//
//	DB004 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused"
//
//	DB006 - Timeout: Operation timed out
//	        Patterns: "timeout"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Sentinel errors are matched first with errors.Is, so wrapping keeps the
// code. Errors without a sentinel fall back to case-insensitive substring
// patterns. In both tables the first match wins.
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. Check the associated sentinel or patterns to understand what triggered it
//  3. Review the suggested action to guide the user
//  4. If ERR000, check application logs for the original technical error
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorSentinel maps an error matched with errors.Is to its user message.
type errorSentinel struct {
	target error
	msg    UserMessage
}

var errorSentinels = []errorSentinel{
	{
		target: ErrColumnOutOfRange,
		msg: UserMessage{
			Message: "The file has no column at that position",
			Action:  "Choose a column from the loaded file's header",
			Code:    "COL001",
		},
	},
	{
		target: ErrColumnNotFound,
		msg: UserMessage{
			Message: "Column not found in the report",
			Action:  "Check the column name against the report",
			Code:    "COL002",
		},
	},
	{
		target: ErrUnknownFieldType,
		msg: UserMessage{
			Message: "Unknown field type",
			Action:  "Pick a type from the field type list",
			Code:    "COL003",
		},
	},
	{
		target: ErrSessionNotFound,
		msg: UserMessage{
			Message: "Session not found",
			Action:  "The session may have expired. Please upload the file again",
			Code:    "SES001",
		},
	},
	{
		target: ErrNotAnalyzed,
		msg: UserMessage{
			Message: "This file has not been analyzed yet",
			Action:  "Run the analysis first",
			Code:    "SES002",
		},
	},
	{
		target: ErrFileTooLarge,
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		target: ErrEmptyFile,
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a file with a header line",
			Code:    "FILE005",
		},
	},
	{
		target: ErrTooManyUploads,
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages
// for errors that carry no sentinel: transport errors and database errors
// from the audit store. The first matching pattern wins.
var errorPatterns = []errorPattern{
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// This is the fallback for unexpected errors. Support staff should check
// application logs for the original technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Sentinels are checked first, then the text patterns (case-insensitive).
// If nothing matches, a generic fallback message with code ERR000 is returned.
//
// Example:
//
//	err := fmt.Errorf("load: %w", ErrEmptyFile)
//	msg := MapError(err)
//	// msg.Code == "FILE005"
//	// msg.Message == "The uploaded file is empty"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, es := range errorSentinels {
		if errors.Is(err, es.target) {
			return es.msg
		}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "The uploaded file is empty (Code: FILE005). Please upload a file with a header line"
//
// This is the primary function for displaying errors to end users.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
// Use this to decide whether to show the raw error or the mapped user message.
//
// Example:
//
//	if IsUserFacing(err) {
//	    showToUser(FormatUserError(err))
//	} else {
//	    log.Error(err) // Log technical error
//	    showToUser("An error occurred. Please try again.")
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message. Error
// returns the user message; Unwrap keeps the original for errors.Is and logs.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// The returned UserError preserves the original technical error for logging via Unwrap(),
// while providing a clean user message via Error().
//
// Returns nil if err is nil.
//
// Example:
//
//	ue := NewUserError(err)
//	log.Error(ue.Technical)          // Log original error
//	fmt.Println(ue.Error())           // Show "Session not found"
//	fmt.Println(ue.User.Code)         // Show "SES001"
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
