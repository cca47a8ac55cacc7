// Package web serves the game pipeline over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lucasnoah/puzzlefactory/internal/metrics"
	"github.com/lucasnoah/puzzlefactory/internal/orchestrator"
	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
	"github.com/lucasnoah/puzzlefactory/internal/publish"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 3 * time.Minute // a run may wait on generation retries
	idleTimeout  = 60 * time.Second
	maxBodyBytes = 64 << 10
)

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second

// Server exposes health, metrics and game generation endpoints.
type Server struct {
	orch     *orchestrator.Orchestrator
	recorder *metrics.Recorder
	metrics  http.Handler
	logger   *zap.Logger
	port     int
}

// NewServer creates a Server. metricsHandler may be nil when telemetry is
// disabled, in which case /metrics is not routed.
func NewServer(orch *orchestrator.Orchestrator, recorder *metrics.Recorder, metricsHandler http.Handler, logger *zap.Logger, port int) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		orch:     orch,
		recorder: recorder,
		metrics:  metricsHandler,
		logger:   logger,
		port:     port,
	}
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/games", s.handleGenerate)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return loggingMiddleware(s.logger, s.recorder, mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.orch.Status()
	code := http.StatusOK
	body := map[string]any{"status": "ok"}
	if !status.Ready {
		code = http.StatusServiceUnavailable
		body = map[string]any{"status": "not_ready", "issues": status.Issues}
	}
	writeJSON(w, code, body)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.Status())
}

// handleGenerate runs one request. The response code reflects the run:
// 200 on success, 422 when the run failed. ?format=html returns the
// rendered game instead of the JSON result.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req pipeline.GameRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	res := s.orch.Execute(r.Context(), req)
	if !res.Success {
		writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		html, err := publish.RenderHTML(res.Game)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Run-ID", res.RunID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
