package core

// tokenizer.go turns decoded text into a Grid.
//
// The tokenizer is line oriented: the text is split on line breaks first and
// every line becomes one row. Within a line, the separator splits cells
// unless it falls inside a double-quoted span. Quoted cells lose their
// surrounding quotes, and both \" and "" inside them collapse to a single
// quote character.
//
// Parsing never fails. A line with an unterminated quote keeps everything
// after the opening quote as the final cell and records a ParseWarning so
// callers can surface it next to the results.

import (
	"fmt"
	"strings"
)

// DefaultSeparator is the field separator used when ParseOptions leaves it unset.
const DefaultSeparator = ','

// ParseOptions controls tokenizing.
type ParseOptions struct {
	// Separator splits cells. Zero means DefaultSeparator.
	Separator rune
}

// ParseWarning records a line that could only be tokenized best-effort.
type ParseWarning struct {
	Line    int    `json:"line" yaml:"line"` // 1-based line in the source text
	Message string `json:"message" yaml:"message"`
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Grid is the parsed rows × cells representation of an uploaded file.
// Headers holds the first line; Rows holds every following line in order.
type Grid struct {
	Headers  []string
	Rows     [][]string
	Warnings []ParseWarning
}

// RowCount returns the number of data rows, excluding the header.
func (g *Grid) RowCount() int {
	return len(g.Rows)
}

// ColumnCount returns the number of header columns.
func (g *Grid) ColumnCount() int {
	return len(g.Headers)
}

// Cell returns the value at data row r (0-based) and column c. Rows shorter
// than the header read as empty for the missing trailing cells.
func (g *Grid) Cell(r, c int) string {
	if r < 0 || r >= len(g.Rows) || c < 0 {
		return ""
	}
	row := g.Rows[r]
	if c >= len(row) {
		return ""
	}
	return row[c]
}

// Column returns column c across all data rows, padding short rows with "".
func (g *Grid) Column(c int) []string {
	out := make([]string, len(g.Rows))
	for r := range g.Rows {
		out[r] = g.Cell(r, c)
	}
	return out
}

// Head returns up to n data rows for preview rendering, each padded or
// truncated to the header width.
func (g *Grid) Head(n int) [][]string {
	if n < 0 || n > len(g.Rows) {
		n = len(g.Rows)
	}
	out := make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(g.Headers))
		for c := range row {
			row[c] = g.Cell(r, c)
		}
		out[r] = row
	}
	return out
}

// Parse tokenizes text into a Grid. An empty text yields a Grid with no
// headers and no rows. Trailing empty lines are dropped; a whitespace-only
// line is data and is kept. Empty lines between data rows are kept as rows
// with a single empty cell.
func Parse(text string, opts ParseOptions) *Grid {
	sep := opts.Separator
	if sep == 0 {
		sep = DefaultSeparator
	}

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	g := &Grid{}
	if len(lines) == 0 {
		return g
	}

	for i, line := range lines {
		cells, ok := splitLine(line, sep)
		if !ok {
			g.Warnings = append(g.Warnings, ParseWarning{
				Line:    i + 1,
				Message: "unterminated quoted field",
			})
		}
		if i == 0 {
			g.Headers = cells
			continue
		}
		g.Rows = append(g.Rows, cells)
	}

	return g
}

// splitLine splits one line on sep, honoring double-quoted spans. The bool
// is false when a quote opened on this line was never closed.
func splitLine(line string, sep rune) ([]string, bool) {
	var (
		cells  []string
		cell   strings.Builder
		quoted bool // inside a quoted span
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if quoted {
			switch {
			case r == '\\' && i+1 < len(runes) && runes[i+1] == '"':
				cell.WriteRune('"')
				i++
			case r == '"' && i+1 < len(runes) && runes[i+1] == '"':
				cell.WriteRune('"')
				i++
			case r == '"':
				quoted = false
			default:
				cell.WriteRune(r)
			}
			continue
		}

		switch {
		case r == sep:
			cells = append(cells, cell.String())
			cell.Reset()
		case r == '"' && strings.TrimSpace(cell.String()) == "":
			// Opening quote; whitespace before it is not part of the value.
			cell.Reset()
			quoted = true
		default:
			cell.WriteRune(r)
		}
	}

	cells = append(cells, cell.String())
	return cells, !quoted
}
