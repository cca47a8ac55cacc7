package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/lucasnoah/puzzlefactory/internal/config"
)

func TestSetupDisabledReturnsNoHandler(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), config.Telemetry{Enabled: false})
	if err != nil {
		t.Fatalf("expected no error when disabled, got %v", err)
	}
	if rec == nil {
		t.Fatalf("expected recorder")
	}
	if handler != nil {
		t.Fatalf("expected nil handler when disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetupEnabledExportsPrometheus(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), config.Telemetry{
		Enabled:     true,
		ServiceName: "puzzlefactory-test",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer shutdown(context.Background())
	if handler == nil {
		t.Fatalf("expected handler when enabled")
	}

	rec.RecordRun("done", true, true, 7, 20*time.Millisecond)
	rec.RecordStage("concept", time.Millisecond, nil)
	rec.RecordGenerationAttempt("scripted", nil)
	rec.RecordQuality("content_quality", 100)
	rec.RecordHTTPRequest("GET", "/healthz", 200, time.Millisecond)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	for _, name := range []string{"pipeline_runs_total", "generation_attempts_total", "stage_duration_ms"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in exposition", name)
		}
	}
}

func TestSetupPropagatesFactoryErrors(t *testing.T) {
	orig := promReaderFactory
	t.Cleanup(func() { promReaderFactory = orig })
	promReaderFactory = func() (sdkmetric.Reader, http.Handler, error) {
		return nil, nil, errors.New("registry exploded")
	}

	_, _, _, err := Setup(context.Background(), config.Telemetry{Enabled: true})
	if err == nil || !strings.Contains(err.Error(), "registry exploded") {
		t.Fatalf("expected factory error, got %v", err)
	}
}

func TestMetricFieldKeysAreStable(t *testing.T) {
	if AttrStage == "" || AttrProvider == "" || AttrState == "" || AttrCheck == "" {
		t.Fatalf("expected metric attribute keys to be non-empty")
	}
}
