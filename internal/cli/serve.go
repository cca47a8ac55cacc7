package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucasnoah/puzzlefactory/internal/metrics"
	"github.com/lucasnoah/puzzlefactory/internal/orchestrator"
	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
	"github.com/lucasnoah/puzzlefactory/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve game generation over HTTP",
	Long: `Starts an HTTP server with:

  GET  /healthz     readiness (503 when the generator is not configured)
  GET  /api/status  configuration snapshot
  POST /api/games   run one GameRequest (JSON body); ?format=html renders the game
  GET  /metrics     Prometheus exposition, when telemetry.enabled is set

Stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rec, handler, shutdown, err := metrics.Setup(ctx, cfg.Telemetry)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("metrics shutdown", zap.Error(err))
			}
		}()

		var opts []orchestrator.Option
		if dir, _ := cmd.Flags().GetString("artifacts-dir"); dir != "" {
			opts = append(opts, orchestrator.WithStore(pipeline.NewStore(dir)))
		}
		orch, err := newOrchestrator(ctx, cfg, rec, opts...)
		if err != nil {
			return err
		}

		port, _ := cmd.Flags().GetInt("port")
		return web.NewServer(orch, rec, handler, logger.Named("web"), port).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().Bool("offline", false, "Use the scripted generator instead of the model")
	serveCmd.Flags().String("artifacts-dir", "", "Directory to write run artifacts to (not saved when empty)")
}
