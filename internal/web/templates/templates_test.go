package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestErrorAlert_Escapes(t *testing.T) {
	out := render(t, ErrorAlert("<b>bad</b>", "retry", "SES001"))

	assert.Contains(t, out, "&lt;b&gt;bad&lt;/b&gt;")
	assert.NotContains(t, out, "<b>bad</b>")
	assert.Contains(t, out, "Code: SES001")
}

func TestUploadPage(t *testing.T) {
	out := render(t, UploadPage(20<<20))

	assert.Contains(t, out, `action="/sessions"`)
	assert.Contains(t, out, "20 MB")
}

func TestSessionPage(t *testing.T) {
	grid := core.Parse("Name,Email\nAnn,ann@x.io\n<script>,bad\n", core.ParseOptions{})
	schema := core.DetectSchema(grid.Headers)
	report := core.Analyze(grid, schema)
	detail, err := report.Detail("Email")
	require.NoError(t, err)

	out := render(t, SessionPage(SessionPageParams{
		Session: &core.SessionView{
			ID:          "abc",
			FileName:    "people.csv",
			RowCount:    2,
			ColumnCount: 2,
			Schema:      schema.Columns(),
			Analyzed:    true,
			ReportStale: true,
		},
		Preview: &core.Preview{
			Headers:   grid.Headers,
			Rows:      grid.Head(5),
			TotalRows: grid.RowCount(),
		},
		Report:     report,
		FieldTypes: core.FieldTypes(),
		Detail:     &detail,
	}))

	assert.Contains(t, out, "<title>people.csv")
	assert.Contains(t, out, `action="/sessions/abc/analyze"`)
	assert.Contains(t, out, `<option value="Email" selected>`)
	assert.Contains(t, out, "50.00%")
	assert.Contains(t, out, "Analyze again")
	assert.Contains(t, out, "/api/sessions/abc/report/Email/invalid.csv")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
}

func TestSchemaTable_MarksChangedColumns(t *testing.T) {
	schema := core.DetectSchema([]string{"Name", "Notes"})
	schema, err := core.OverrideColumnType(schema, 1, core.FieldNumericOnly)
	require.NoError(t, err)

	out := render(t, schemaTable("abc", schema.Columns(), core.FieldTypes()))

	assert.Equal(t, 1, strings.Count(out, `<tr class="overridden">`))
	assert.Equal(t, 1, strings.Count(out, `<span class="muted">changed</span>`))
	assert.Contains(t, out, `<tr class="overridden"><td>2</td><td>Notes</td>`)
	assert.Contains(t, out, `<tr><td>1</td><td>Name</td>`)
}
