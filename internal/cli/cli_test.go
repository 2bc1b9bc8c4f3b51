package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const customersCSV = `Name,Email,Phone,Zip Code,Notes
John Smith,john@example.com,555-123-4567,12345,ok
Jane Doe,not-an-email,5551234,1234,
Bob,bob@test.org,(555) 987-6543,12345-6789,x
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func runJSON(t *testing.T, args ...string) analysisOutput {
	t.Helper()
	out, err := run(t, append(args, "--format", "json")...)
	require.NoError(t, err)

	var got analysisOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	return got
}

func TestAnalyzeText(t *testing.T) {
	path := writeFile(t, "customers.csv", customersCSV)

	out, err := run(t, "analyze", path)
	require.NoError(t, err)

	assert.Contains(t, out, "customers.csv: 3 rows, 5 columns")
	assert.Contains(t, out, "Zip Code")
	assert.Contains(t, out, "66.67%")
	assert.Contains(t, out, "overall: 11/15 values valid (73.33%)")
}

func TestAnalyzeJSON(t *testing.T) {
	path := writeFile(t, "customers.csv", customersCSV)
	got := runJSON(t, "analyze", path)

	assert.Equal(t, 3, got.RowCount)
	assert.Equal(t, 11, got.Summary.ValidValues)
	assert.Equal(t, 15, got.Summary.TotalValues)
	require.Len(t, got.Columns, 5)

	wantTypes := []core.FieldType{
		core.FieldCharactersOnly, core.FieldEmail, core.FieldPhone, core.FieldZipCode, core.FieldNone,
	}
	for i, c := range got.Columns {
		assert.Equal(t, wantTypes[i], c.FieldType, c.Column)
	}
	assert.Equal(t, []int{2}, got.Columns[1].InvalidRows)
	assert.Equal(t, core.Percentage(66.67), got.Columns[1].CorrectPercentage)
	assert.Nil(t, got.Detail)
}

func TestAnalyzeYAML(t *testing.T) {
	path := writeFile(t, "customers.csv", customersCSV)

	out, err := run(t, "analyze", path, "-f", "yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "customers.csv", doc["file"])
	assert.Len(t, doc["columns"], 5)
}

func TestAnalyzeTypeFlag(t *testing.T) {
	path := writeFile(t, "customers.csv", customersCSV)
	got := runJSON(t, "analyze", path, "--type", "Notes=Numeric Only", "-t", "email=none")

	assert.Equal(t, core.FieldNumericOnly, got.Columns[4].FieldType)
	assert.Equal(t, 0, got.Columns[4].ValidCount)
	assert.Equal(t, []int{1, 2, 3}, got.Columns[4].InvalidRows)

	assert.Equal(t, core.FieldNone, got.Columns[1].FieldType)
	assert.Equal(t, 3, got.Columns[1].ValidCount)
}

func TestAnalyzeSchemaFile(t *testing.T) {
	path := writeFile(t, "customers.csv", customersCSV)
	schema := writeFile(t, "overrides.yaml", "columns:\n  Zip Code: None\n  Notes: Characters Only\n")

	got := runJSON(t, "analyze", path, "--schema", schema)
	assert.Equal(t, core.FieldNone, got.Columns[3].FieldType)
	assert.Equal(t, 3, got.Columns[3].ValidCount)
	assert.Equal(t, core.FieldCharactersOnly, got.Columns[4].FieldType)
	assert.Equal(t, []int{2}, got.Columns[4].InvalidRows)
}

func TestAnalyzeFlagBeatsSchemaFile(t *testing.T) {
	path := writeFile(t, "customers.csv", customersCSV)
	schema := writeFile(t, "overrides.yaml", "columns:\n  Notes: Characters Only\n")

	got := runJSON(t, "analyze", path, "--schema", schema, "--type", "Notes=None")
	assert.Equal(t, core.FieldNone, got.Columns[4].FieldType)
}

func TestAnalyzeDetail(t *testing.T) {
	path := writeFile(t, "customers.csv", customersCSV)
	got := runJSON(t, "analyze", path, "--detail", "Email")

	require.NotNil(t, got.Detail)
	assert.Equal(t, "Email", got.Detail.Column)
	require.Len(t, got.Detail.Rows, 1)
	assert.Equal(t, 2, got.Detail.Rows[0].Row)
	assert.Equal(t, "not-an-email", got.Detail.Rows[0].Value)
	assert.Equal(t, "Jane Doe", got.Detail.Rows[0].Values[0])

	out, err := run(t, "analyze", path, "--detail", "Email")
	require.NoError(t, err)
	assert.Contains(t, out, "Email (Email): 1 invalid rows")
	assert.Contains(t, out, `"not-an-email"`)
}

func TestAnalyzeErrors(t *testing.T) {
	path := writeFile(t, "customers.csv", customersCSV)
	empty := writeFile(t, "empty.csv", "\n\n")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown detail column", []string{"analyze", path, "--detail", "Missing"}, core.ErrColumnNotFound},
		{"unknown override column", []string{"analyze", path, "--type", "Missing=Email"}, core.ErrColumnNotFound},
		{"unknown type", []string{"analyze", path, "--type", "Notes=Currency"}, core.ErrUnknownFieldType},
		{"malformed type flag", []string{"analyze", path, "--type", "Notes"}, errBadTypeFlag},
		{"unknown format", []string{"analyze", path, "--format", "xml"}, errUnknownFormat},
		{"empty file", []string{"analyze", empty}, core.ErrEmptyFile},
		{"too large", []string{"analyze", path, "--max-file-size", "10"}, core.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, exitError, exitCode(err))
		})
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	_, err := run(t, "analyze", filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAnalyzeFailUnder(t *testing.T) {
	path := writeFile(t, "customers.csv", customersCSV)

	out, err := run(t, "analyze", path, "--fail-under", "90")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBelowThreshold)
	assert.Equal(t, exitThreshold, exitCode(err))
	assert.Contains(t, out, "overall:", "report is still printed")

	_, err = run(t, "analyze", path, "--fail-under", "50")
	assert.NoError(t, err)
}

func TestAnalyzeSeparatorFromEnv(t *testing.T) {
	path := writeFile(t, "semi.csv", "Name;Phone\nAnn;5551234567\nBo;12\n")
	t.Setenv("DQSCORE_SEPARATOR", ";")

	got := runJSON(t, "analyze", path)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, []int{2}, got.Columns[1].InvalidRows)
}

func TestAnalyzeTabSeparator(t *testing.T) {
	path := writeFile(t, "export.tsv", "Name\tEmail\nAnn\ta@b.co\n")

	got := runJSON(t, "analyze", path, "--separator", "tab")
	require.Len(t, got.Columns, 2)
	assert.Equal(t, 1, got.Columns[1].ValidCount)
}

func TestAnalyzeConfigFile(t *testing.T) {
	path := writeFile(t, "customers.csv", customersCSV)
	cfg := writeFile(t, "dqscore.yaml", "format: json\nworkers: 2\n")

	out, err := run(t, "--config", cfg, "analyze", path)
	require.NoError(t, err)

	var got analysisOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Columns, 5)
}

func TestAnalyzeBadSeparator(t *testing.T) {
	path := writeFile(t, "customers.csv", customersCSV)
	_, err := run(t, "analyze", path, "--separator", "ab")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single character")
}

func TestTypes(t *testing.T) {
	out, err := run(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "Zip Code")
	assert.Contains(t, out, "zip")
	assert.Contains(t, out, "(no match)")

	out, err = run(t, "types", "--format", "json")
	require.NoError(t, err)
	var types []core.FieldTypeInfo
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	require.Len(t, types, 7)
	assert.Equal(t, core.FieldPhone, types[0].Type)
	assert.Equal(t, 1, types[0].Priority)
}

func TestParseTypeFlags(t *testing.T) {
	got, err := parseTypeFlags([]string{"a=b=Email", "Zip=zip"})
	require.NoError(t, err)
	assert.Equal(t, []override{{Column: "a=b", Type: "Email"}, {Column: "Zip", Type: "zip"}}, got)

	_, err = parseTypeFlags([]string{"=Email"})
	assert.ErrorIs(t, err, errBadTypeFlag)
}

func TestPrintError(t *testing.T) {
	path := writeFile(t, "customers.csv", customersCSV)
	_, err := run(t, "analyze", path, "--detail", "Missing")
	require.Error(t, err)

	var ue *core.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "COL002", ue.User.Code)

	var buf bytes.Buffer
	printError(&buf, err)
	assert.Equal(t,
		"Error: detail \"Missing\": Column not found in the report\n"+
			"  Column not found in the report (Code: COL002). Check the column name against the report\n",
		buf.String())
}

func TestPrintErrorUnknown(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errUnknownFormat)
	assert.Equal(t, "Error: unknown output format\n", buf.String())
}
