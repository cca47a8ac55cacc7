package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucasnoah/puzzlefactory/internal/logging"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var (
	configFile string
	verbose    bool
	logJSON    bool

	// logger is replaced in PersistentPreRunE once flags are parsed.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "puzzlefactory",
	Short: "puzzlefactory — generate themed word puzzles",
	Long: `puzzlefactory turns a short description into a complete, checked word game.

Each run moves through three stages (concept, word_selection, assembly) backed by a
text-generation model. Use --offline to run with the built-in scripted generator.

Configuration is read from ./puzzlefactory.yaml, ~/.puzzlefactory/config.yaml or --config.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(logging.Options{Verbose: verbose, JSON: logJSON})
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON instead of console text")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(wordCmd)
	rootCmd.AddCommand(qualityCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(serveCmd)
}
