package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/dataquality/internal/core"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validFormat(f string) bool {
	switch f {
	case formatText, formatJSON, formatYAML:
		return true
	}
	return false
}

// analysisOutput is the document printed by analyze in every format.
type analysisOutput struct {
	File        string                     `json:"file" yaml:"file"`
	RowCount    int                        `json:"rowCount" yaml:"rowCount"`
	ColumnCount int                        `json:"columnCount" yaml:"columnCount"`
	Warnings    []core.ParseWarning        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Summary     core.ReportSummary         `json:"summary" yaml:"summary"`
	Columns     []core.ColumnQualityResult `json:"columns" yaml:"columns"`
	Detail      *core.InvalidRowsExport    `json:"detail,omitempty" yaml:"detail,omitempty"`
}

func writeAnalysis(w io.Writer, format string, out analysisOutput) error {
	switch format {
	case formatJSON:
		return writeJSON(w, out)
	case formatYAML:
		return writeYAML(w, out)
	default:
		return writeAnalysisText(w, out)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeAnalysisText(w io.Writer, out analysisOutput) error {
	fmt.Fprintf(w, "%s: %d rows, %d columns\n", out.File, out.RowCount, out.ColumnCount)
	for _, warn := range out.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tVALID\tTOTAL\tCORRECT")
	for _, c := range out.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			c.Column, c.FieldType, c.ValidCount, c.TotalCount, percent(c.CorrectPercentage))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := out.Summary
	fmt.Fprintf(w, "\noverall: %d/%d values valid (%s)\n", s.ValidValues, s.TotalValues, percent(s.CorrectPercentage))

	if out.Detail != nil {
		writeDetailText(w, out.Detail)
	}
	return nil
}

func writeDetailText(w io.Writer, d *core.InvalidRowsExport) {
	fmt.Fprintf(w, "\n%s (%s): %d invalid rows\n", d.Column, d.FieldType, len(d.Rows))
	if len(d.Rows) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tVALUE\tRECORD")
	for _, r := range d.Rows {
		fmt.Fprintf(tw, "%d\t%q\t%s\n", r.Row, r.Value, strings.Join(r.Values, " | "))
	}
	tw.Flush()
}

func percent(p core.Percentage) string {
	if !p.Defined() {
		return "n/a"
	}
	return p.String() + "%"
}
