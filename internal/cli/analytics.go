package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/puzzlefactory/internal/analytics"
	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Summarize recorded runs: stage timings, failures and gate checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("artifacts-dir")
		runs, err := pipeline.NewStore(dir).List()
		if err != nil {
			return err
		}

		var since time.Time
		if s, _ := cmd.Flags().GetString("since"); s != "" {
			since, err = time.Parse("2006-01-02", s)
			if err != nil {
				return fmt.Errorf("invalid --since %q: want YYYY-MM-DD", s)
			}
		}
		summary := analytics.Summarize(analytics.Since(runs, since))

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			return writeJSON(cmd, summary)
		}
		return printSummary(cmd.OutOrStdout(), summary)
	},
}

func printSummary(out io.Writer, s analytics.Summary) error {
	fmt.Fprintf(out, "Runs: %d  completed: %d (%.1f%%)  ready: %d (%.1f%%)\n\n",
		s.Runs, s.Completed, s.SuccessPct, s.Ready, s.ReadyPct)
	if s.Runs == 0 {
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tCOUNT\tAVG_MS\tP50_MS\tP95_MS")
	for _, d := range s.Stages {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%.1f\n", d.Stage, d.Count, d.Avg, d.P50, d.P95)
	}
	fmt.Fprintln(w)

	if len(s.Failures) > 0 {
		fmt.Fprintln(w, "FAILED_AT\tRUNS\tPCT")
		for _, f := range s.Failures {
			fmt.Fprintf(w, "%s\t%d\t%.1f\n", f.Stage, f.Failures, f.Pct)
		}
		fmt.Fprintln(w)
	}
	if len(s.Checks) > 0 {
		fmt.Fprintln(w, "GATE_CHECK\tFAILURES\tFAIL_RATE")
		for _, c := range s.Checks {
			fmt.Fprintf(w, "%s\t%d\t%.1f\n", c.Check, c.Failures, c.FailRate)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "WEEK\tRUNS\tCOMPLETED\tREADY\tFAILED\tAVG_S")
	for _, t := range s.Throughput {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.1f\n", t.Period, t.Runs, t.Completed, t.Ready, t.Failed, t.AvgDuration)
	}
	return w.Flush()
}

func init() {
	analyticsCmd.Flags().String("artifacts-dir", "", "Artifacts directory written by generate or batch")
	analyticsCmd.Flags().String("since", "", "Only include runs created on or after this date (YYYY-MM-DD)")
	analyticsCmd.Flags().String("format", "text", "Output format: text or json")
	_ = analyticsCmd.MarkFlagRequired("artifacts-dir")
}
