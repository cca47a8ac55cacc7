package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/puzzlefactory/internal/prompt"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect and export the stage prompt templates",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in prompt templates",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range prompt.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

var promptsExportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the built-in templates to dir for editing (existing files are kept)",
	Long: `Writes every built-in template into dir. Point templates.dir at the
directory to have the pipeline use the edited copies.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		written, err := prompt.Export(args[0])
		if err != nil {
			return err
		}
		for _, name := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", name)
		}
		if len(written) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "All templates already present.")
		}
		return nil
	},
}

func init() {
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsExportCmd)
}
