package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/puzzlefactory/internal/quality"
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Score game content against the quality thresholds",
}

var qualityContentCmd = &cobra.Command{
	Use:   "content <word>...",
	Short: "Score a title, word list and instructions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		instructions, _ := cmd.Flags().GetString("instructions")

		rep := quality.New(cfg.Quality).ScoreContent(title, args, instructions)
		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			return writeJSON(cmd, rep)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Score: %.0f (threshold %.0f)\n", rep.Score, cfg.Quality.ContentThreshold)
		for _, issue := range rep.Issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
		return nil
	},
}

var qualityThemeCmd = &cobra.Command{
	Use:   "theme <word>...",
	Short: "Score how consistently a theme is carried by the description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		theme, _ := cmd.Flags().GetString("theme")
		description, _ := cmd.Flags().GetString("description")

		rep := quality.New(cfg.Quality).ScoreThemeConsistency(theme, args, description)
		if rep.Err != nil {
			return rep.Err
		}
		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			return writeJSON(cmd, rep)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Score: %.0f (theme mentioned: %t, threshold %.0f)\n",
			rep.Score, rep.ThemeMentioned, cfg.Quality.ThemeThreshold)
		return nil
	},
}

func init() {
	qualityContentCmd.Flags().String("title", "", "Game title")
	qualityContentCmd.Flags().String("instructions", "", "Player instructions")
	qualityThemeCmd.Flags().String("theme", "", "Theme to check")
	qualityThemeCmd.Flags().String("description", "", "Request description")
	for _, c := range []*cobra.Command{qualityContentCmd, qualityThemeCmd} {
		c.Flags().String("format", "text", "Output format: text or json")
		qualityCmd.AddCommand(c)
	}
}
