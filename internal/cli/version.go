package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/puzzlefactory/internal/orchestrator"
	"github.com/lucasnoah/puzzlefactory/internal/prompt"
)

type versionInfo struct {
	Version   string   `json:"version"`
	Go        string   `json:"go"`
	Stages    []string `json:"stages"`
	Templates []string `json:"templates"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the puzzlefactory version and pipeline layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{Version: version, Go: runtime.Version(), Templates: prompt.Names()}
		for _, s := range orchestrator.StageOrder {
			info.Stages = append(info.Stages, string(s))
		}

		if format, _ := cmd.Flags().GetString("format"); format == "json" {
			return writeJSON(cmd, info)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "puzzlefactory version %s (%s)\n", info.Version, info.Go)
		fmt.Fprintf(w, "pipeline: %s\n", strings.Join(info.Stages, " → "))
		return nil
	},
}

func init() {
	versionCmd.Flags().String("format", "text", "Output format: text or json")
}
