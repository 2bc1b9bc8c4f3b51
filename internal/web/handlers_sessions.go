package web

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/JonMunkholm/dataquality/internal/logging"
)

// handleCreateSession loads an uploaded file into a new session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.load(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+view.ID)
	writeJSON(w, http.StatusCreated, view)
}

// handleGetSession returns the session snapshot.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Session(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleReplaceFile loads a new file into an existing session.
func (s *Server) handleReplaceFile(w http.ResponseWriter, r *http.Request) {
	file, name, err := s.formFile(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer file.Close()

	view, err := s.service.Reload(WithRequestMetadata(r.Context(), r), sessionID(r), name, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleDeleteSession drops a session.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(WithRequestMetadata(r.Context(), r), sessionID(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePreview returns the first ?rows=N data rows.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	rows := parseIntParam(r, "rows", s.cfg.Analysis.PreviewRows)
	preview, err := s.service.Preview(sessionID(r), rows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleGetSchema returns the per-column type assignment.
func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.service.Schema(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

// OverrideRequest is the body of PUT /api/sessions/{id}/schema/{index}.
type OverrideRequest struct {
	Type string `json:"type"`
}

// handleOverrideType sets the type of one column.
func (s *Server) handleOverrideType(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	t, err := core.ParseFieldType(req.Type)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	view, err := s.service.OverrideType(WithRequestMetadata(r.Context(), r), sessionID(r), index, t)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleResetType restores the detected type of one column.
func (s *Server) handleResetType(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	view, err := s.service.ResetType(WithRequestMetadata(r.Context(), r), sessionID(r), index)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ReportResponse is a report with its aggregate and freshness.
type ReportResponse struct {
	SessionID  string                     `json:"sessionId"`
	AnalyzedAt *time.Time                 `json:"analyzedAt,omitempty"`
	Stale      bool                       `json:"stale"`
	Summary    core.ReportSummary         `json:"summary"`
	Columns    []core.ColumnQualityResult `json:"columns"`
}

func (s *Server) reportResponse(id string, report *core.Report) (*ReportResponse, error) {
	view, err := s.service.Session(id)
	if err != nil {
		return nil, err
	}
	return &ReportResponse{
		SessionID:  id,
		AnalyzedAt: view.AnalyzedAt,
		Stale:      view.ReportStale,
		Summary:    report.Summary(),
		Columns:    report.Columns,
	}, nil
}

// handleAnalyze runs the analysis and returns the new report.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	report, err := s.service.Analyze(WithRequestMetadata(r.Context(), r), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	resp, err := s.reportResponse(id, report)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReport returns the latest report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	report, err := s.service.Report(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	resp, err := s.reportResponse(id, report)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleColumnDetail returns the drill-down for one column.
func (s *Server) handleColumnDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.service.Detail(sessionID(r), columnParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleExportInvalidRows streams a column's invalid rows as CSV, with the
// data row number prepended.
func (s *Server) handleExportInvalidRows(w http.ResponseWriter, r *http.Request) {
	export, err := s.service.InvalidRows(sessionID(r), columnParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invalid_"+export.Column+".csv"))

	cw := csv.NewWriter(w)
	cw.Write(append([]string{"Row"}, export.Headers...))
	for _, row := range export.Rows {
		cw.Write(append([]string{strconv.Itoa(row.Row)}, row.Values...))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.FromContext(r.Context()).Error("csv export failed", "error", err)
	}
}

// handleAuditLog lists the newest audit entries for a session.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 100)
	entries, err := s.service.AuditLog(r.Context(), sessionID(r), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleFieldTypes lists the assignable field types in detection order.
func (s *Server) handleFieldTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.FieldTypes())
}

// HealthResponse reports liveness and load.
type HealthResponse struct {
	Status   string                   `json:"status"`
	Sessions int                      `json:"sessions"`
	Uploads  core.UploadLimiterStatus `json:"uploads"`
}

// handleHealth returns service status for load balancers and monitoring.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Sessions: s.service.SessionCount(),
		Uploads:  s.service.Limiter().Status(),
	})
}
