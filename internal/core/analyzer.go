package core

// analyzer.go scores every column of a grid against its assigned field type.
//
// Each value is trimmed first. Empty values are handled here, once, for all
// types:
//  1. No type assigned: a value is valid iff it is non-empty (presence check)
//  2. Type assigned: an empty value is invalid; otherwise the type's
//     validator decides
//
// Columns are independent, so AnalyzeParallel can score them concurrently.
// Results are slotted by column index, which keeps the report identical to
// the sequential Analyze.

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Analyze scores every column of g under schema. Columns beyond the schema's
// width are scored as FieldNone.
func Analyze(g *Grid, schema SchemaAssignment) *Report {
	cols := make([]ColumnQualityResult, g.ColumnCount())
	for c := range cols {
		cols[c] = analyzeColumn(g, c, schema.TypeAt(c))
	}
	return newReport(cols)
}

// AnalyzeParallel is Analyze with columns spread over at most workers
// goroutines. workers <= 1 runs sequentially. It returns ctx.Err() if the
// context ends before every column is scored.
func AnalyzeParallel(ctx context.Context, g *Grid, schema SchemaAssignment, workers int) (*Report, error) {
	if workers <= 1 || g.ColumnCount() <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Analyze(g, schema), nil
	}

	cols := make([]ColumnQualityResult, g.ColumnCount())

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for c := range cols {
		c := c
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cols[c] = analyzeColumn(g, c, schema.TypeAt(c))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return newReport(cols), nil
}

func analyzeColumn(g *Grid, c int, t FieldType) ColumnQualityResult {
	res := ColumnQualityResult{
		Column:      g.Headers[c],
		Index:       c,
		FieldType:   t,
		TotalCount:  g.RowCount(),
		InvalidRows: make([]int, 0),
	}

	for r, v := range g.Column(c) {
		if checkValue(t, v) {
			res.ValidCount++
		} else {
			res.InvalidRows = append(res.InvalidRows, r+1)
		}
	}

	res.CorrectPercentage = NewPercentage(res.ValidCount, res.TotalCount)
	return res
}

// checkValue applies the empty-value policy and then the type validator.
func checkValue(t FieldType, raw string) bool {
	v := strings.TrimSpace(raw)
	if v == "" {
		return false
	}
	if t == FieldNone {
		return true
	}
	return Validate(t, v)
}
