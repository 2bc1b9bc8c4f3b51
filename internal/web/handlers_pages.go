package web

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/JonMunkholm/dataquality/internal/logging"
	"github.com/JonMunkholm/dataquality/internal/web/templates"
	"github.com/a-h/templ"
)

// render writes an HTML component, logging render failures.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

func sessionURL(id string) string {
	return "/sessions/" + url.PathEscape(id)
}

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	render(w, r, templates.UploadPage(s.cfg.Upload.MaxFileSize))
}

// handleCreateSessionPage loads the uploaded file and redirects to its page.
func (s *Server) handleCreateSessionPage(w http.ResponseWriter, r *http.Request) {
	view, err := s.load(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, sessionURL(view.ID), http.StatusSeeOther)
}

// handleSessionPage renders schema, report and preview. ?column=NAME adds
// the drill-down for that column.
func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	view, err := s.service.Session(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	preview, err := s.service.Preview(id, s.cfg.Analysis.PreviewRows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	params := templates.SessionPageParams{
		Session:    view,
		Preview:    preview,
		FieldTypes: core.FieldTypes(),
	}

	if view.Analyzed {
		report, err := s.service.Report(id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		params.Report = report

		if col := r.URL.Query().Get("column"); col != "" {
			detail, err := report.Detail(col)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
			params.Detail = &detail
		}
	}

	render(w, r, templates.SessionPage(params))
}

// handleOverridePage applies a type change from the schema form.
func (s *Server) handleOverridePage(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		s.respondError(w, r, errBadRequest)
		return
	}
	t, err := core.ParseFieldType(r.FormValue("type"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if _, err := s.service.OverrideType(WithRequestMetadata(r.Context(), r), id, index, t); err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, sessionURL(id), http.StatusSeeOther)
}

// handleAnalyzePage runs the analysis and shows the report.
func (s *Server) handleAnalyzePage(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if _, err := s.service.Analyze(WithRequestMetadata(r.Context(), r), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, sessionURL(id), http.StatusSeeOther)
}
