package core

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/JonMunkholm/dataquality/internal/config"
	"github.com/JonMunkholm/dataquality/internal/logging"
	"github.com/google/uuid"
)

// Service owns the live sessions and runs every operation on them. It is
// safe for concurrent use by the HTTP handlers.
type Service struct {
	cfg     *config.Config
	audit   AuditStore
	limiter *UploadLimiter
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a Service. A nil audit store falls back to an
// in-memory one sized by cfg.Audit.MemoryCapacity.
func NewService(cfg *config.Config, audit AuditStore) *Service {
	if audit == nil {
		audit = NewMemoryAuditStore(cfg.Audit.MemoryCapacity)
	}
	return &Service{
		cfg:      cfg,
		audit:    audit,
		limiter:  NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Limiter exposes the load limiter for health reporting.
func (s *Service) Limiter() *UploadLimiter {
	return s.limiter
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Load reads a file into a new session with a detected schema.
func (s *Service) Load(ctx context.Context, fileName string, r io.Reader) (*SessionView, error) {
	grid, err := s.parseInput(ctx, r)
	if err != nil {
		return nil, err
	}

	sess := newSession(uuid.NewString(), fileName, grid, s.now())

	s.mu.Lock()
	s.sessions[sess.id] = sess
	evicted := s.evictLocked(sess.id)
	s.mu.Unlock()

	log := logging.WithFields(ctx, "session_id", sess.id, "file", fileName)
	for _, id := range evicted {
		log.Info("session evicted", "evicted_id", id)
	}
	log.Info("file loaded",
		"rows", grid.RowCount(),
		"columns", grid.ColumnCount(),
		"warnings", len(grid.Warnings),
	)

	entry := newAuditEntry(ctx, sess.id, ActionFileLoaded)
	entry.FileName = fileName
	entry.Detail = fmt.Sprintf("%d rows, %d columns", grid.RowCount(), grid.ColumnCount())
	s.record(ctx, entry)

	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return sess.view(), nil
}

// Reload replaces the file of an existing session. Schema and report are
// discarded and the schema is detected again from the new headers.
func (s *Service) Reload(ctx context.Context, id, fileName string, r io.Reader) (*SessionView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	grid, err := s.parseInput(ctx, r)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.replace(fileName, grid, s.now())
	view := sess.view()
	sess.mu.Unlock()

	logging.WithFields(ctx, "session_id", id, "file", fileName).Info("file replaced",
		"rows", grid.RowCount(),
		"columns", grid.ColumnCount(),
	)

	entry := newAuditEntry(ctx, id, ActionFileReplaced)
	entry.FileName = fileName
	entry.Detail = fmt.Sprintf("%d rows, %d columns", grid.RowCount(), grid.ColumnCount())
	s.record(ctx, entry)

	return view, nil
}

// parseInput decodes and tokenizes r while holding a limiter slot.
func (s *Service) parseInput(ctx context.Context, r io.Reader) (*Grid, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	text, err := ReadText(r, s.cfg.Upload.MaxFileSize)
	if err != nil {
		return nil, err
	}

	grid := Parse(text, ParseOptions{Separator: s.cfg.Analysis.SeparatorRune()})
	if grid.ColumnCount() == 0 {
		return nil, ErrEmptyFile
	}
	return grid, nil
}

// evictLocked drops the least recently used sessions other than keep until
// the map fits MaxSessions. Caller holds s.mu for writing.
func (s *Service) evictLocked(keep string) []string {
	var evicted []string
	for len(s.sessions) > s.cfg.Session.MaxSessions {
		var (
			oldestID string
			oldestAt time.Time
		)
		for id, sess := range s.sessions {
			if id == keep {
				continue
			}
			if at := sess.idleSince(); oldestID == "" || at.Before(oldestAt) {
				oldestID, oldestAt = id, at
			}
		}
		if oldestID == "" {
			break
		}
		delete(s.sessions, oldestID)
		evicted = append(evicted, oldestID)
	}
	return evicted
}

func (s *Service) get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Session returns a snapshot of the session.
func (s *Service) Session(id string) (*SessionView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch(s.now())
	return sess.view(), nil
}

// Preview returns the header and the first n data rows. n <= 0 uses the
// configured preview size.
func (s *Service) Preview(id string, n int) (*Preview, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.cfg.Analysis.PreviewRows
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch(s.now())
	return &Preview{
		Headers:   append([]string(nil), sess.grid.Headers...),
		Rows:      sess.grid.Head(n),
		TotalRows: sess.grid.RowCount(),
	}, nil
}

// Schema returns the current per-column assignment.
func (s *Service) Schema(id string) ([]ColumnType, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch(s.now())
	return sess.schema.Columns(), nil
}

// OverrideType sets the type of column index. A failed override leaves the
// schema unchanged. An existing report is kept but marked stale.
func (s *Service) OverrideType(ctx context.Context, id string, index int, t FieldType) (*SessionView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	next, err := OverrideColumnType(sess.schema, index, t)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	prev := sess.schema.TypeAt(index)
	column := sess.grid.Headers[index]
	sess.schema = next
	if sess.report != nil && prev != t {
		sess.stale = true
	}
	sess.touch(s.now())
	view := sess.view()
	sess.mu.Unlock()

	logging.WithFields(ctx, "session_id", id).Info("column type overridden",
		"column", column,
		"index", index,
		"from", prev.String(),
		"to", t.String(),
	)

	entry := newAuditEntry(ctx, id, ActionTypeOverride)
	entry.Column = column
	entry.FieldType = t.String()
	entry.Detail = "was " + prev.String()
	s.record(ctx, entry)

	return view, nil
}

// ResetType restores the detected type of column index.
func (s *Service) ResetType(ctx context.Context, id string, index int) (*SessionView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.RLock()
	cols := sess.schema.Columns()
	sess.mu.RUnlock()
	if index < 0 || index >= len(cols) {
		return nil, fmt.Errorf("%w: %d (file has %d columns)", ErrColumnOutOfRange, index, len(cols))
	}

	return s.OverrideType(ctx, id, index, cols[index].Detected)
}

// OverrideTypeByName resolves column by header name and typeName through
// ParseFieldType, then behaves like OverrideType.
func (s *Service) OverrideTypeByName(ctx context.Context, id, column, typeName string) (*SessionView, error) {
	t, err := ParseFieldType(typeName)
	if err != nil {
		return nil, err
	}

	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.RLock()
	index, ok := sess.schema.IndexOf(column)
	sess.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}

	return s.OverrideType(ctx, id, index, t)
}

// Analyze scores the session's grid under its current schema and stores the
// report, replacing any previous one.
func (s *Service) Analyze(ctx context.Context, id string) (*Report, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	start := time.Now()
	report, err := AnalyzeParallel(ctx, sess.grid, sess.schema, s.cfg.Analysis.Workers)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess.report = report
	sess.analyzedAt = now
	sess.stale = false
	sess.touch(now)

	summary := report.Summary()
	logging.WithFields(ctx, "session_id", id).Info("analysis completed",
		"columns", summary.Columns,
		"rows", sess.grid.RowCount(),
		"correct_pct", summary.CorrectPercentage.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	entry := newAuditEntry(ctx, id, ActionAnalysisRun)
	entry.FileName = sess.fileName
	entry.Detail = fmt.Sprintf("%d/%d values valid", summary.ValidValues, summary.TotalValues)
	s.record(ctx, entry)

	return report, nil
}

// Report returns the latest report, or ErrNotAnalyzed.
func (s *Service) Report(id string) (*Report, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.report == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAnalyzed, id)
	}
	sess.touch(s.now())
	return sess.report, nil
}

// Detail returns the latest result for one column.
func (s *Service) Detail(id, column string) (ColumnQualityResult, error) {
	report, err := s.Report(id)
	if err != nil {
		return ColumnQualityResult{}, err
	}
	return report.Detail(column)
}

// InvalidRows returns the full rows behind a column's invalid indices, for
// export. Rows are padded to the header width.
func (s *Service) InvalidRows(id, column string) (*InvalidRowsExport, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.report == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAnalyzed, id)
	}
	res, err := sess.report.Detail(column)
	if err != nil {
		return nil, err
	}
	sess.touch(s.now())

	g := sess.grid
	out := &InvalidRowsExport{
		Column:    res.Column,
		FieldType: res.FieldType,
		Headers:   append([]string(nil), g.Headers...),
		Rows:      make([]InvalidRow, 0, len(res.InvalidRows)),
	}
	for _, row := range res.InvalidRows {
		values := make([]string, len(g.Headers))
		for c := range values {
			values[c] = g.Cell(row-1, c)
		}
		out.Rows = append(out.Rows, InvalidRow{
			Row:    row,
			Value:  g.Cell(row-1, res.Index),
			Values: values,
		})
	}
	return out, nil
}

// Delete removes a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	logging.WithFields(ctx, "session_id", id).Info("session deleted")
	s.record(ctx, newAuditEntry(ctx, id, ActionSessionDeleted))
	return nil
}

// AuditLog returns the newest audit entries for a session, including ones
// recorded before it was deleted or expired.
func (s *Service) AuditLog(ctx context.Context, id string, limit int) ([]AuditEntry, error) {
	entries, err := s.audit.List(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

// record writes an audit entry. Audit failures are logged and never fail
// the operation that produced them.
func (s *Service) record(ctx context.Context, entry AuditEntry) {
	if err := s.audit.Record(ctx, entry); err != nil {
		logging.FromContext(ctx).Error("audit record failed",
			"action", entry.Action,
			"session_id", entry.SessionID,
			"error", err,
		)
	}
}
