package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lucasnoah/puzzlefactory/internal/config"
	"github.com/lucasnoah/puzzlefactory/internal/generate"
	"github.com/lucasnoah/puzzlefactory/internal/metrics"
	"github.com/lucasnoah/puzzlefactory/internal/orchestrator"
)

func newTestServer(t *testing.T, gen generate.Generator) (*Server, *metrics.Recorder) {
	t.Helper()
	cfg := config.Default()
	cfg.Generation.Provider = "scripted"
	rec := metrics.NewRecorder()
	orch := orchestrator.NewFromConfig(cfg, gen, orchestrator.WithRecorder(rec))
	return NewServer(orch, rec, nil, nil, 0), rec
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, generate.NewScripted())
	w := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestHealthzNotReady(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not_ready") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGenerateGame(t *testing.T) {
	s, rec := newTestServer(t, generate.NewScripted())
	w := do(t, s.Handler(), http.MethodPost, "/api/games", `{"description": "A word game about space", "word_count": 6}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res orchestrator.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success || res.RunID == "" {
		t.Errorf("result = %+v", res)
	}
	if res.Game == nil || res.Game.Metadata.WordCount != 6 || res.Game.Metadata.Theme != "space" {
		t.Errorf("game = %+v", res.Game)
	}
	if snap := rec.Snapshot(); snap.Runs != 1 {
		t.Errorf("recorder runs = %d, want 1", snap.Runs)
	}
}

func TestGenerateGameHTML(t *testing.T) {
	s, _ := newTestServer(t, generate.NewScripted())
	w := do(t, s.Handler(), http.MethodPost, "/api/games?format=html", `{"description": "music quiz"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<h1>Music Word Hunt</h1>") {
		t.Errorf("body missing title:\n%s", w.Body.String())
	}
}

func TestGenerateGameBadRequest(t *testing.T) {
	s, _ := newTestServer(t, generate.NewScripted())
	for _, body := range []string{"not json", `{"description": "x", "colour": "red"}`} {
		w := do(t, s.Handler(), http.MethodPost, "/api/games", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestGenerateGameFailedRun(t *testing.T) {
	s, _ := newTestServer(t, generate.NewScripted())
	w := do(t, s.Handler(), http.MethodPost, "/api/games", `{"description": "x", "difficulty": "brutal"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"failed_stage": "init"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestMetricsRoutedOnlyWhenEnabled(t *testing.T) {
	s, _ := newTestServer(t, generate.NewScripted())
	if w := do(t, s.Handler(), http.MethodGet, "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("disabled: status = %d, want 404", w.Code)
	}

	rec, handler, shutdown, err := metrics.Setup(context.Background(), config.Telemetry{Enabled: true})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer shutdown(context.Background())

	cfg := config.Default()
	cfg.Generation.Provider = "scripted"
	orch := orchestrator.NewFromConfig(cfg, generate.NewScripted(), orchestrator.WithRecorder(rec))
	h := NewServer(orch, rec, handler, nil, 0).Handler()
	do(t, h, http.MethodGet, "/healthz", "")

	w := do(t, h, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Errorf("metrics missing http_requests_total")
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	orig := shutdownTimeout
	shutdownTimeout = time.Second
	t.Cleanup(func() { shutdownTimeout = orig })

	s, _ := newTestServer(t, generate.NewScripted())
	s.port = 0
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
