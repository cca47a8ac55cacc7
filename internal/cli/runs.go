package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs recorded in an artifacts directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("artifacts-dir")
		runs, err := pipeline.NewStore(dir).List()
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			return writeJSON(cmd, runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tCREATED\tSTATE\tREADY\tDESCRIPTION")
		for _, r := range runs {
			desc := r.Request.Description
			if len(desc) > 50 {
				desc = desc[:47] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", shortRunID(r.RunID), r.CreatedAt, r.State, r.Ready, desc)
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().String("artifacts-dir", "", "Artifacts directory written by generate or batch")
	runsCmd.Flags().String("format", "text", "Output format: text or json")
	_ = runsCmd.MarkFlagRequired("artifacts-dir")
}
