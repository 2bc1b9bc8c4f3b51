// Package cli implements the dqscore command line tool. It drives the same
// core.Service as the web server, so a file scored from the terminal gets
// exactly the report the UI would show.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/JonMunkholm/dataquality/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. DQSCORE_SEPARATOR.
const envPrefix = "DQSCORE"

// app carries state shared by the subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	out     io.Writer
	errOut  io.Writer
}

// NewRootCommand builds the dqscore command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		out:    out,
		errOut: errOut,
	}

	root := &cobra.Command{
		Use:   "dqscore",
		Short: "Score the data quality of delimited text files",
		Long: `dqscore infers a field type for every column of a CSV or TSV file from its
header, validates each value against that type and reports the share of
correct values per column.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "settings file (yaml)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	a.v.BindPFlag("log_level", pf.Lookup("log-level"))

	root.AddCommand(newAnalyzeCommand(a))
	root.AddCommand(newTypesCommand(a))
	return root
}

// initConfig wires env vars and the optional settings file into viper, then
// routes service logs to errOut so stdout carries only the report.
// Precedence: flags > env > config file > defaults.
func (a *app) initConfig(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", a.cfgFile, err)
		}
	}

	slog.SetDefault(logging.New(a.errOut, a.v.GetString("log_level"), "text"))
	return nil
}

// Execute runs the CLI against the process arguments and exits non-zero on
// failure.
func Execute() {
	if err := NewRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
