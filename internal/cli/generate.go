package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/puzzlefactory/internal/game"
	"github.com/lucasnoah/puzzlefactory/internal/metrics"
	"github.com/lucasnoah/puzzlefactory/internal/orchestrator"
	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
	"github.com/lucasnoah/puzzlefactory/internal/publish"
	"github.com/lucasnoah/puzzlefactory/internal/words"
)

var generateCmd = &cobra.Command{
	Use:   "generate [description]",
	Short: "Generate one word game from a description",
	Long: `Runs a single request through concept, word_selection and assembly.

Progress lines go to stderr; the finished game (or the JSON result with
--format json) goes to stdout. With --publish the rendered HTML is sent to
the console publisher after a successful run.`,
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
		orch.SetProgress(cmd.ErrOrStderr())

		req, err := requestFromFlags(cmd, strings.Join(args, " "))
		if err != nil {
			return err
		}
		res := orch.Execute(cmd.Context(), req)

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			if err := writeJSON(cmd, res); err != nil {
				return err
			}
		} else {
			printResult(cmd, res)
		}
		if !res.Success {
			return fmt.Errorf("run %s failed at %s: %s", res.RunID, res.FailedStage, res.Error)
		}

		if pub, _ := cmd.Flags().GetBool("publish"); pub {
			return publishGame(cmd, res.Game)
		}
		return nil
	},
}

func requestFromFlags(cmd *cobra.Command, description string) (pipeline.GameRequest, error) {
	theme, _ := cmd.Flags().GetString("theme")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("words")
	gameType, _ := cmd.Flags().GetString("type")
	audience, _ := cmd.Flags().GetString("audience")

	req := pipeline.GameRequest{
		Description:    description,
		Theme:          theme,
		Difficulty:     words.Level(strings.ToLower(difficulty)),
		WordCount:      count,
		TargetAudience: audience,
	}
	if gameType != "" {
		t, ok := game.ParseType(gameType)
		if !ok {
			return req, fmt.Errorf("unknown game type %q", gameType)
		}
		req.GameType = t
	}
	return req, nil
}

func printResult(cmd *cobra.Command, res *orchestrator.Result) {
	w := cmd.OutOrStdout()
	if !res.Success {
		fmt.Fprintf(w, "Run %s failed at %s: %s\n", res.RunID, res.FailedStage, res.Error)
		return
	}
	fmt.Fprintln(w, res.FinalGame)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run:      %s\n", res.RunID)
	fmt.Fprintf(w, "Theme:    %s (%s, %s)\n", res.Game.Metadata.Theme, res.Game.Metadata.GameType.DisplayName(), res.Game.Metadata.Difficulty)
	fmt.Fprintf(w, "Quality:  %.0f  Consistency: %.0f\n", res.Game.Metadata.QualityScore, res.Game.Metadata.ConsistencyScore)
	fmt.Fprintf(w, "Ready:    %t\n", res.ReadyForPublication)
	if res.Gate != nil && !res.Gate.Passed {
		for _, c := range res.Gate.Checks {
			if !c.Passed {
				fmt.Fprintf(w, "  - %s: %s\n", c.Check, c.Summary)
			}
		}
	}
	if a := res.Assessment; a != nil {
		fmt.Fprintf(w, "Overall:  %.1f (threshold %.0f)\n", a.OverallRating, a.OverallThreshold)
		for _, r := range a.Recommendations {
			fmt.Fprintf(w, "  * %s\n", r)
		}
	}
	fmt.Fprintf(w, "Elapsed:  %.2fs, %d events\n", res.ExecutionTime, res.EventCount)
}

func publishGame(cmd *cobra.Command, g *game.CompleteGame) error {
	if !g.ReadyForPublication {
		return fmt.Errorf("game is not ready for publication")
	}
	html, err := publish.RenderHTML(g)
	if err != nil {
		return err
	}
	res, err := publish.NewConsole(cmd.OutOrStdout()).Publish(cmd.Context(), g.Metadata.Difficulty, html)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Published to %d recipients.\n", res.Deliveries)
	return nil
}

func init() {
	generateCmd.Flags().String("theme", "", "Theme override (otherwise taken from the concept stage)")
	generateCmd.Flags().String("difficulty", "medium", "Difficulty: easy, medium or hard")
	generateCmd.Flags().Int("words", pipeline.DefaultWordCount, "Target word count")
	generateCmd.Flags().String("type", "", "Game type override (word_search, crossword, ...)")
	generateCmd.Flags().String("audience", "general", "Target audience")
	generateCmd.Flags().Bool("offline", false, "Use the scripted generator instead of the model")
	generateCmd.Flags().String("format", "text", "Output format: text or json")
	generateCmd.Flags().Bool("publish", false, "Publish the rendered HTML after a successful run")
	generateCmd.Flags().String("artifacts-dir", "", "Directory to write run artifacts to (not saved when empty)")
}
