package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/puzzlefactory/internal/metrics"
	"github.com/lucasnoah/puzzlefactory/internal/orchestrator"
	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch <description>...",
	Short: "Generate one game per description, several at a time",
	Long: `Each argument is a separate request with default settings. Runs are
independent; one failing does not stop the others. Results are printed in
argument order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(cmd)
		if err != nil {
			return err
		}

		var opts []orchestrator.Option
		if dir, _ := cmd.Flags().GetString("artifacts-dir"); dir != "" {
			opts = append(opts, orchestrator.WithStore(pipeline.NewStore(dir)))
		}
		orch, err := newOrchestrator(cmd.Context(), cfg, metrics.NewRecorder(), opts...)
		if err != nil {
			return err
		}

		reqs := make([]pipeline.GameRequest, len(args))
		for i, a := range args {
			reqs[i] = pipeline.FromText(a)
		}
		parallel, _ := cmd.Flags().GetInt("parallel")
		results := orch.ExecuteBatch(cmd.Context(), reqs, parallel)

		failed := 0
		for _, res := range results {
			if !res.Success {
				failed++
			}
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			if err := writeJSON(cmd, results); err != nil {
				return err
			}
		} else {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTATE\tREADY\tTHEME\tTITLE\tERROR")
			for _, res := range results {
				theme, title := "", ""
				if res.Game != nil {
					theme = res.Game.Metadata.Theme
					title = res.Game.Content.Title
				}
				msg := res.Error
				if len(msg) > 60 {
					msg = msg[:57] + "..."
				}
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\t%s\n", shortRunID(res.RunID), res.State, res.ReadyForPublication, theme, title, msg)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d run(s) failed", failed, len(results))
		}
		return nil
	},
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	batchCmd.Flags().Int("parallel", 2, "Maximum concurrent runs (0 = unbounded)")
	batchCmd.Flags().Bool("offline", false, "Use the scripted generator instead of the model")
	batchCmd.Flags().String("format", "text", "Output format: text or json")
	batchCmd.Flags().String("artifacts-dir", "", "Directory to write run artifacts to (not saved when empty)")
}
