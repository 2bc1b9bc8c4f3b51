package core

import (
	"sync"
	"sync/atomic"
	"time"
)

// Session owns the state of one loaded file: its grid, the current schema
// assignment and the latest report. Loading a new file into a session
// replaces all three; nothing is merged.
type Session struct {
	mu sync.RWMutex

	id         string
	fileName   string
	loadedAt   time.Time
	lastUsed   atomic.Int64 // unix nanos; read without mu by eviction
	grid       *Grid
	schema     SchemaAssignment
	report     *Report
	analyzedAt time.Time
	stale      bool // schema changed since the report was computed
}

func newSession(id, fileName string, grid *Grid, now time.Time) *Session {
	s := &Session{
		id:       id,
		fileName: fileName,
		loadedAt: now,
		grid:     grid,
		schema:   DetectSchema(grid.Headers),
	}
	s.touch(now)
	return s
}

// replace swaps in a new file. Caller holds s.mu.
func (s *Session) replace(fileName string, grid *Grid, now time.Time) {
	s.fileName = fileName
	s.loadedAt = now
	s.touch(now)
	s.grid = grid
	s.schema = DetectSchema(grid.Headers)
	s.report = nil
	s.analyzedAt = time.Time{}
	s.stale = false
}

// touch records activity for expiry.
func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

// idleSince returns the last activity time. It never takes s.mu, so the
// service can scan sessions while one of them is busy analyzing.
func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

// view snapshots the session. Caller holds s.mu.
func (s *Session) view() *SessionView {
	v := &SessionView{
		ID:          s.id,
		FileName:    s.fileName,
		LoadedAt:    s.loadedAt,
		Headers:     append([]string(nil), s.grid.Headers...),
		RowCount:    s.grid.RowCount(),
		ColumnCount: s.grid.ColumnCount(),
		Schema:      s.schema.Columns(),
		Warnings:    append([]ParseWarning(nil), s.grid.Warnings...),
		Analyzed:    s.report != nil,
		ReportStale: s.stale,
	}
	if s.report != nil {
		at := s.analyzedAt
		v.AnalyzedAt = &at
	}
	return v
}

// SessionView is a read-only snapshot of a session for transports.
type SessionView struct {
	ID          string         `json:"id"`
	FileName    string         `json:"fileName"`
	LoadedAt    time.Time      `json:"loadedAt"`
	AnalyzedAt  *time.Time     `json:"analyzedAt,omitempty"`
	Headers     []string       `json:"headers"`
	RowCount    int            `json:"rowCount"`
	ColumnCount int            `json:"columnCount"`
	Schema      []ColumnType   `json:"schema"`
	Warnings    []ParseWarning `json:"warnings,omitempty"`
	Analyzed    bool           `json:"analyzed"`
	ReportStale bool           `json:"reportStale,omitempty"`
}

// Preview is the first rows of a loaded file for table rendering.
type Preview struct {
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"totalRows"`
}

// InvalidRow is one failing data row of a drill-down export.
type InvalidRow struct {
	Row    int      `json:"row"` // 1-based data row, header excluded
	Value  string   `json:"value"`
	Values []string `json:"values"`
}

// InvalidRowsExport carries the full rows behind a column's invalid indices.
type InvalidRowsExport struct {
	Column    string       `json:"column"`
	FieldType FieldType    `json:"fieldType"`
	Headers   []string     `json:"headers"`
	Rows      []InvalidRow `json:"rows"`
}
