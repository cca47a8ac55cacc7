package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/puzzlefactory/internal/config"
	"github.com/lucasnoah/puzzlefactory/internal/prompt"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate and inspect configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		errs := config.Validate(cfg)
		if len(errs) == 0 {
			cmd.Println("Configuration is valid.")
			return nil
		}

		cmd.Println("Validation errors:")
		for _, e := range errs {
			cmd.Printf("  - %s\n", e)
		}
		return fmt.Errorf("config has %d validation error(s)", len(errs))
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration and where each prompt template comes from",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		redacted := *cfg
		if redacted.Generation.APIKey != "" {
			redacted.Generation.APIKey = "<redacted>"
		}
		data, err := config.Marshal(&redacted)
		if err != nil {
			return fmt.Errorf("marshalling config: %w", err)
		}

		cmd.Print(string(data))

		// Stage templates resolve per file, so an override dir may be partial.
		lib := prompt.NewLibrary(cfg.Templates.Dir)
		cmd.Println()
		cmd.Println("# prompt templates")
		for _, name := range prompt.Names() {
			cmd.Printf("#   %-18s %s\n", name, lib.Source(name))
		}
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.LoadDefault()
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
