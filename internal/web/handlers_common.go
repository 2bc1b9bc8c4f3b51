package web

// handlers_common.go holds request parsing helpers shared by the API and
// page handlers.

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead allows for form boundaries and headers on top of the
// file itself.
const multipartOverhead = 1 << 20

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// sessionID returns the {sessionID} URL parameter.
func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}

// columnParam returns the {column} URL parameter. chi matches on RawPath
// when the request has one, leaving the parameter escaped; otherwise it is
// already decoded and must not be unescaped again.
func columnParam(r *http.Request) string {
	raw := chi.URLParam(r, "column")
	if r.URL.RawPath == "" {
		return raw
	}
	if col, err := url.PathUnescape(raw); err == nil {
		return col
	}
	return raw
}

// indexParam parses the {index} URL parameter.
func indexParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: column index %q", errBadRequest, raw)
	}
	return i, nil
}

// formFile reads the "file" field of a multipart upload. The caller must
// close the returned file.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, string, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", fmt.Errorf("%w: exceeds %d bytes", core.ErrFileTooLarge, maxSize)
		}
		return nil, "", fmt.Errorf("%w: %v", errBadRequest, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", errNoFile
	}
	return file, header.Filename, nil
}

// load starts a new session from the uploaded file.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (*core.SessionView, error) {
	file, name, err := s.formFile(w, r)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return s.service.Load(WithRequestMetadata(r.Context(), r), name, io.Reader(file))
}
