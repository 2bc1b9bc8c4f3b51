// Package templates renders the HTML pages of the web UI as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/a-h/templ"
)

// htmlWriter writes escaped HTML and keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// layout wraps body in the page chrome.
func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(` · Data Quality</title><style>`)
		h.raw(pageCSS)
		h.raw(`</style></head><body><header><a href="/">Data Quality</a></header><main>`)
		h.component(ctx, body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

const pageCSS = `body{font-family:system-ui,sans-serif;margin:0;color:#1f2937}
header{background:#111827;padding:.75rem 1.5rem}header a{color:#fff;text-decoration:none;font-weight:600}
main{max-width:72rem;margin:1.5rem auto;padding:0 1.5rem}
table{border-collapse:collapse;width:100%;margin:1rem 0}th,td{border:1px solid #e5e7eb;padding:.35rem .6rem;text-align:left;font-size:.9rem}
th{background:#f9fafb}.alert{border:1px solid #fca5a5;background:#fef2f2;padding:.75rem;border-radius:.375rem}
.muted{color:#6b7280}.good{color:#047857}.bad{color:#b91c1c}.stale{background:#fffbeb;border:1px solid #fcd34d;padding:.5rem}.overridden td{background:#eff6ff}`

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<p class="muted">Code: `)
			h.text(code)
			h.raw(`</p>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// ErrorPage renders ErrorAlert as a full page.
func ErrorPage(message, action, code string) templ.Component {
	return layout("Error", ErrorAlert(message, action, code))
}

// UploadPage renders the file upload form.
func UploadPage(maxFileSize int64) templ.Component {
	return layout("Upload", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Check a file</h1>`)
		h.raw(`<p class="muted">Upload a delimited text file with a header row. `)
		h.rawf(`Maximum size %s.</p>`, templ.EscapeString(formatBytes(maxFileSize)))
		h.raw(`<form method="post" action="/sessions" enctype="multipart/form-data">`)
		h.raw(`<input type="file" name="file" required> <button type="submit">Load</button></form>`)
		return h.err
	}))
}

// SessionPageParams carries everything the session page shows.
type SessionPageParams struct {
	Session    *core.SessionView
	Preview    *core.Preview
	Report     *core.Report // nil before the first analysis
	FieldTypes []core.FieldTypeInfo
	Detail     *core.ColumnQualityResult // selected drill-down column, if any
}

// SessionPage renders a loaded file: schema editor, preview and report.
func SessionPage(p SessionPageParams) templ.Component {
	return layout(p.Session.FileName, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		id := url.PathEscape(p.Session.ID)

		h.raw(`<h1>`)
		h.text(p.Session.FileName)
		h.raw(`</h1><p class="muted">`)
		h.rawf(`%d rows, %d columns`, p.Session.RowCount, p.Session.ColumnCount)
		h.raw(`</p>`)

		for _, warn := range p.Session.Warnings {
			h.raw(`<p class="stale">`)
			h.text(warn.String())
			h.raw(`</p>`)
		}

		h.component(ctx, schemaTable(id, p.Session.Schema, p.FieldTypes))

		h.rawf(`<form method="post" action="/sessions/%s/analyze"><button type="submit">Analyze</button></form>`, id)

		if p.Report != nil {
			if p.Session.ReportStale {
				h.raw(`<p class="stale">Column types changed since this report was computed. Analyze again to refresh it.</p>`)
			}
			h.component(ctx, reportTable(id, p.Report))
		}

		if p.Detail != nil {
			h.component(ctx, detailBlock(id, *p.Detail))
		}

		if p.Preview != nil {
			h.component(ctx, previewTable(p.Preview))
		}
		return h.err
	}))
}

func schemaTable(id string, cols []core.ColumnType, types []core.FieldTypeInfo) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h2>Column types</h2><table><thead><tr><th>#</th><th>Column</th><th>Detected</th><th>Assigned</th></tr></thead><tbody>`)
		for _, c := range cols {
			if c.Overridden() {
				h.raw(`<tr class="overridden"><td>`)
			} else {
				h.raw(`<tr><td>`)
			}
			h.raw(strconv.Itoa(c.Index + 1))
			h.raw(`</td><td>`)
			h.text(c.Column)
			h.raw(`</td><td>`)
			h.text(c.Detected.String())
			h.raw(`</td><td>`)
			h.rawf(`<form method="post" action="/sessions/%s/schema"><input type="hidden" name="index" value="%d"><select name="type">`, id, c.Index)
			h.component(ctx, typeOption(core.FieldNone, c.Type))
			for _, t := range types {
				h.component(ctx, typeOption(t.Type, c.Type))
			}
			h.raw(`</select> <button type="submit">Set</button></form>`)
			if c.Overridden() {
				h.raw(` <span class="muted">changed</span>`)
			}
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

func typeOption(t, selected core.FieldType) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<option value="`)
		h.text(t.String())
		h.raw(`"`)
		if t == selected {
			h.raw(` selected`)
		}
		h.raw(`>`)
		h.text(t.String())
		h.raw(`</option>`)
		return h.err
	})
}

func reportTable(id string, r *core.Report) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		sum := r.Summary()
		h.raw(`<h2>Quality report</h2><p>Overall `)
		h.text(formatPercentage(sum.CorrectPercentage))
		h.rawf(` valid (%d of %d values)</p>`, sum.ValidValues, sum.TotalValues)
		h.raw(`<table><thead><tr><th>Column</th><th>Type</th><th>Valid</th><th>Invalid</th><th>Correct</th><th></th></tr></thead><tbody>`)
		for _, c := range r.Columns {
			h.raw(`<tr><td>`)
			h.text(c.Column)
			h.raw(`</td><td>`)
			h.text(c.FieldType.String())
			h.rawf(`</td><td>%d</td><td>%d</td><td class="%s">`, c.ValidCount, c.InvalidCount(), scoreClass(c))
			h.text(formatPercentage(c.CorrectPercentage))
			h.raw(`</td><td>`)
			if c.InvalidCount() > 0 {
				h.rawf(`<a href="/sessions/%s?column=%s">Details</a>`, id, templ.EscapeString(url.QueryEscape(c.Column)))
			}
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

func detailBlock(id string, d core.ColumnQualityResult) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h2>Invalid values in `)
		h.text(d.Column)
		h.raw(`</h2><p class="muted">`)
		h.text(d.FieldType.String())
		h.rawf(`, %d of %d rows invalid. `, d.InvalidCount(), d.TotalCount)
		h.rawf(`<a href="/api/sessions/%s/report/%s/invalid.csv">Download rows</a></p>`,
			id, templ.EscapeString(url.PathEscape(d.Column)))
		h.raw(`<p>Rows: `)
		for i, row := range d.InvalidRows {
			if i > 0 {
				h.raw(`, `)
			}
			h.raw(strconv.Itoa(row))
		}
		h.raw(`</p>`)
		return h.err
	})
}

func previewTable(p *core.Preview) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.rawf(`<h2>Preview</h2><p class="muted">First %d of %d rows</p><table><thead><tr>`, len(p.Rows), p.TotalRows)
		for _, col := range p.Headers {
			h.raw(`<th>`)
			h.text(col)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, row := range p.Rows {
			h.raw(`<tr>`)
			for _, cell := range row {
				h.raw(`<td>`)
				h.text(cell)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

func scoreClass(c core.ColumnQualityResult) string {
	if c.CorrectPercentage.Defined() && c.InvalidCount() == 0 {
		return "good"
	}
	return "bad"
}

func formatPercentage(p core.Percentage) string {
	if !p.Defined() {
		return "n/a"
	}
	return p.String() + "%"
}

func formatBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return strconv.FormatInt(n/mb, 10) + " MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
