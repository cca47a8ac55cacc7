package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/puzzlefactory/internal/config"
	"github.com/lucasnoah/puzzlefactory/internal/generate"
	"github.com/lucasnoah/puzzlefactory/internal/metrics"
	"github.com/lucasnoah/puzzlefactory/internal/orchestrator"
)

// newGenerator builds the configured generator. Every attempt it makes,
// retries included, is reported to rec.
func newGenerator(ctx context.Context, cfg *config.Config, rec *metrics.Recorder) (generate.Generator, error) {
	provider := cfg.Generation.Provider
	gen, err := generate.New(ctx, cfg.Generation,
		generate.WithLogger(logger.Named("generate")),
		generate.WithAttemptHook(func(err error) {
			rec.RecordGenerationAttempt(provider, err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	return gen, nil
}

// newOrchestrator wires the three stages around the configured generator.
func newOrchestrator(ctx context.Context, cfg *config.Config, rec *metrics.Recorder, opts ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	gen, err := newGenerator(ctx, cfg, rec)
	if err != nil {
		return nil, err
	}
	base := []orchestrator.Option{
		orchestrator.WithLogger(logger.Named("orchestrator")),
		orchestrator.WithRecorder(rec),
	}
	return orchestrator.NewFromConfig(cfg, gen, append(base, opts...)...), nil
}

// loadRunConfig loads config and applies --offline.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		cfg.Generation.Provider = "scripted"
	}
	return cfg, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
