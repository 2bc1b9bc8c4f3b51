package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/dataquality/internal/config"
	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/spf13/cobra"
)

// analyzeSettings are the analyze options after flag, env and config file
// resolution.
type analyzeSettings struct {
	Separator   string
	Format      string
	Workers     int
	MaxFileSize int64
	FailUnder   float64
}

func (a *app) analyzeSettings() analyzeSettings {
	return analyzeSettings{
		Separator:   a.v.GetString("separator"),
		Format:      a.v.GetString("format"),
		Workers:     a.v.GetInt("workers"),
		MaxFileSize: a.v.GetInt64("max_file_size"),
		FailUnder:   a.v.GetFloat64("fail_under"),
	}
}

func newAnalyzeCommand(a *app) *cobra.Command {
	var (
		typeFlags  []string
		schemaPath string
		detail     string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Score every column of a delimited file",
		Long: `Analyze loads the file, detects a field type per column from its header,
applies any overrides and prints the share of valid values per column.

Overrides from --schema are applied first, then --type flags in order, so a
flag wins over the file for the same column.`,
		Example: `  dqscore analyze customers.csv
  dqscore analyze export.tsv --separator tab --type "Ref=Alphanumeric Only"
  dqscore analyze customers.csv --schema overrides.yaml --format json
  dqscore analyze customers.csv --detail Email --fail-under 95`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := collectOverrides(schemaPath, typeFlags)
			if err != nil {
				return err
			}
			return a.runAnalyze(cmd.Context(), args[0], overrides, detail)
		},
	}

	f := cmd.Flags()
	f.String("separator", ",", `field separator; "tab" or \t for tabs`)
	f.StringP("format", "f", formatText, "output format: text, json, yaml")
	f.Int("workers", 4, "columns scored concurrently")
	f.Int64("max-file-size", 20<<20, "largest accepted file in bytes")
	f.Float64("fail-under", 0, "exit with status 2 when the overall score is below this percentage")
	f.StringArrayVarP(&typeFlags, "type", "t", nil, "override a column type as COLUMN=TYPE (repeatable)")
	f.StringVar(&schemaPath, "schema", "", "yaml file of column type overrides")
	f.StringVar(&detail, "detail", "", "list the invalid rows of this column")

	a.v.BindPFlag("separator", f.Lookup("separator"))
	a.v.BindPFlag("format", f.Lookup("format"))
	a.v.BindPFlag("workers", f.Lookup("workers"))
	a.v.BindPFlag("max_file_size", f.Lookup("max-file-size"))
	a.v.BindPFlag("fail_under", f.Lookup("fail-under"))

	return cmd
}

func collectOverrides(schemaPath string, typeFlags []string) ([]override, error) {
	var out []override
	if schemaPath != "" {
		fromFile, err := readSchemaFile(schemaPath)
		if err != nil {
			return nil, err
		}
		out = append(out, fromFile...)
	}
	fromFlags, err := parseTypeFlags(typeFlags)
	if err != nil {
		return nil, err
	}
	return append(out, fromFlags...), nil
}

// serviceConfig builds a service configuration for a single local run.
func serviceConfig(s analyzeSettings) (*config.Config, error) {
	cfg := config.Defaults()
	cfg.Analysis.Separator = s.Separator
	cfg.Analysis.Workers = s.Workers
	cfg.Upload.MaxFileSize = s.MaxFileSize
	cfg.Session.MaxSessions = 1
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) runAnalyze(ctx context.Context, path string, overrides []override, detailColumn string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s := a.analyzeSettings()
	if !validFormat(s.Format) {
		return fmt.Errorf("%w: %q", errUnknownFormat, s.Format)
	}
	cfg, err := serviceConfig(s)
	if err != nil {
		return err
	}
	service := core.NewService(cfg, nil)

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	view, err := service.Load(ctx, filepath.Base(path), file)
	if err != nil {
		return fmt.Errorf("%s: %w", path, describe(err))
	}

	for _, o := range overrides {
		if view, err = service.OverrideTypeByName(ctx, view.ID, o.Column, o.Type); err != nil {
			return fmt.Errorf("override %q: %w", o.Column, describe(err))
		}
	}

	report, err := service.Analyze(ctx, view.ID)
	if err != nil {
		return err
	}

	result := analysisOutput{
		File:        view.FileName,
		RowCount:    view.RowCount,
		ColumnCount: view.ColumnCount,
		Warnings:    view.Warnings,
		Summary:     report.Summary(),
		Columns:     report.Columns,
	}
	if detailColumn != "" {
		export, err := service.InvalidRows(view.ID, detailColumn)
		if err != nil {
			return fmt.Errorf("detail %q: %w", detailColumn, describe(err))
		}
		result.Detail = export
	}

	if err := writeAnalysis(a.out, s.Format, result); err != nil {
		return err
	}

	if s.FailUnder > 0 {
		pct := result.Summary.CorrectPercentage
		if !pct.Defined() || float64(pct) < s.FailUnder {
			return fmt.Errorf("%w: %s%% < %.2f%%", errBelowThreshold, pct, s.FailUnder)
		}
	}
	return nil
}
