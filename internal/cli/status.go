package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/puzzlefactory/internal/metrics"
	"github.com/lucasnoah/puzzlefactory/internal/orchestrator"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pipeline readiness and the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(cmd)
		if err != nil {
			return err
		}

		rec := metrics.NewRecorder()
		orch, genErr := newOrchestrator(cmd.Context(), cfg, rec)
		if genErr != nil {
			// Still report the rest of the pipeline.
			orch = orchestrator.NewFromConfig(cfg, nil, orchestrator.WithLogger(logger), orchestrator.WithRecorder(rec))
		}
		info := orch.Status()
		if genErr != nil {
			info.Issues = append(info.Issues, genErr.Error())
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			return writeJSON(cmd, info)
		}

		w := cmd.OutOrStdout()
		ready := "yes"
		if !info.Ready {
			ready = "no"
		}
		stages := make([]string, len(info.Stages))
		for i, s := range info.Stages {
			stages[i] = string(s)
		}
		fmt.Fprintf(w, "%-10s %s\n", "Ready:", ready)
		fmt.Fprintf(w, "%-10s %s\n", "Provider:", info.Provider)
		if info.Model != "" {
			fmt.Fprintf(w, "%-10s %s\n", "Model:", info.Model)
		}
		fmt.Fprintf(w, "%-10s %s\n", "Stages:", strings.Join(stages, " → "))
		fmt.Fprintf(w, "%-10s %d-%d\n", "Words:", info.MinWords, info.MaxWords)
		fmt.Fprintf(w, "%-10s content %.0f, theme %.0f, overall %.0f\n", "Quality:",
			info.Quality.ContentThreshold, info.Quality.ThemeThreshold, info.Quality.OverallThreshold)
		if len(info.Issues) > 0 {
			fmt.Fprintln(w, "Issues:")
			for _, issue := range info.Issues {
				fmt.Fprintf(w, "  - %s\n", issue)
			}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().String("format", "text", "Output format: text or json")
	statusCmd.Flags().Bool("offline", false, "Report on the scripted generator")
}
