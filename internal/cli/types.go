package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/spf13/cobra"
)

func newTypesCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List field types and the header keywords that select them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types := core.FieldTypes()

			switch format {
			case formatJSON:
				return writeJSON(a.out, types)
			case formatYAML:
				return writeYAML(a.out, types)
			case formatText:
			default:
				return fmt.Errorf("%w: %q", errUnknownFormat, format)
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PRIORITY\tTYPE\tHEADER KEYWORD")
			for _, t := range types {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", t.Priority, t.Type, t.Keyword)
			}
			fmt.Fprintf(tw, "-\t%s\t(no match)\n", core.FieldNone)
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, yaml")
	return cmd
}
