package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/puzzlefactory/internal/words"
)

var wordCmd = &cobra.Command{
	Use:   "word",
	Short: "Validate, score and balance candidate words",
}

func newAnalyzer() (*words.Analyzer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return words.New(cfg.Words), nil
}

var wordValidateCmd = &cobra.Command{
	Use:   "validate <word>...",
	Short: "Validate each word against the length and alphabet rules",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer()
		if err != nil {
			return err
		}

		results := make([]words.ValidationResult, len(args))
		invalid := 0
		for i, w := range args {
			results[i] = a.Validate(w)
			if !results[i].Valid {
				invalid++
			}
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			type row struct {
				words.ValidationResult
				Error string `json:"error,omitempty"`
			}
			rows := make([]row, len(results))
			for i, r := range results {
				rows[i] = row{r, r.Error()}
			}
			if err := writeJSON(cmd, rows); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				if r.Valid {
					fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", r.Word)
					continue
				}
				if cleaned, ok := a.Cleanup(r.Input); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "✗ %q: %s (cleanup: %s)\n", r.Input, r.Error(), cleaned)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✗ %q: %s\n", r.Input, r.Error())
			}
		}

		if invalid > 0 {
			return fmt.Errorf("%d of %d word(s) invalid", invalid, len(results))
		}
		return nil
	},
}

var wordScoreCmd = &cobra.Command{
	Use:   "score <word>...",
	Short: "Score the difficulty of each word",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer()
		if err != nil {
			return err
		}

		scores := make([]words.DifficultyScore, len(args))
		for i, w := range args {
			scores[i] = a.ScoreDifficulty(w)
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			return writeJSON(cmd, scores)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WORD\tSCORE\tLEVEL\tVOWELS\tCONSONANTS")
		for _, s := range scores {
			fmt.Fprintf(w, "%s\t%.2f\t%s\t%d\t%d\n", s.Word, s.Score, s.Level, s.Vowels, s.Consonants)
		}
		return w.Flush()
	},
}

var wordVarietyCmd = &cobra.Command{
	Use:   "variety <word>...",
	Short: "Check a word list for duplicates and difficulty spread",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer()
		if err != nil {
			return err
		}

		rep := a.CheckVariety(args)
		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			if err := writeJSON(cmd, rep); err != nil {
				return err
			}
		} else {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Words:    %d (%d unique)\n", rep.TotalWords, rep.UniqueWords)
			d := rep.Distribution
			fmt.Fprintf(out, "Spread:   easy=%d medium=%d hard=%d\n", d.Easy, d.Medium, d.Hard)
		}
		if rep.Err != nil {
			return rep.Err
		}
		return nil
	},
}

var wordBalanceCmd = &cobra.Command{
	Use:   "balance <word>...",
	Short: "Regroup words by difficulty using selection.difficulty_balance",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a := words.New(cfg.Words)
		balanced := a.Balance(args, cfg.Selection.DifficultyBalance)

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			return writeJSON(cmd, balanced)
		}
		for _, w := range balanced {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", w, a.ScoreDifficulty(w).Level)
		}
		if dropped := len(args) - len(balanced); dropped > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d word(s) left out to keep the balance\n", dropped)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{wordValidateCmd, wordScoreCmd, wordVarietyCmd, wordBalanceCmd} {
		c.Flags().String("format", "text", "Output format: text or json")
		wordCmd.AddCommand(c)
	}
}
