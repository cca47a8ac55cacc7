package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/lucasnoah/puzzlefactory/internal/config"
)

const meterName = "puzzlefactory"

var (
	promReaderFactory = prometheusComponents
	otlpReaderFactory = buildOTLPReader
	instrumentFactory = newOtelInstruments
)

// Setup wires a Prometheus exporter and, when an endpoint is configured,
// an OTLP exporter. It returns the Recorder, the /metrics handler (nil when
// telemetry is disabled) and a shutdown function.
func Setup(ctx context.Context, cfg config.Telemetry) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = meterName
	}

	promReader, promHandler, err := promReaderFactory()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []sdkmetric.Option{sdkmetric.WithReader(promReader)}

	if cfg.OtlpEndpoint != "" {
		otlpReader, err := otlpReaderFactory(ctx, cfg.OtlpEndpoint, cfg.OtlpInsecure)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, sdkmetric.WithReader(otlpReader))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)

	inst, err := instrumentFactory(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	return newRecorder(inst), promHandler, provider.Shutdown, nil
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	exp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(15*time.Second)), nil
}

func prometheusComponents() (sdkmetric.Reader, http.Handler, error) {
	reg := prometheus.NewRegistry()
	exp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return exp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

type otelInstruments struct {
	ctx context.Context

	runs              metric.Int64Counter
	runFailures       metric.Int64Counter
	runDurationMs     metric.Float64Histogram
	events            metric.Int64Counter
	stageDurationMs   metric.Float64Histogram
	stageErrors       metric.Int64Counter
	genAttempts       metric.Int64Counter
	genErrors         metric.Int64Counter
	qualityScore      metric.Float64Histogram
	requests          metric.Int64Counter
	requestDurationMs metric.Float64Histogram
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	meter := provider.Meter(meterName)
	o := &otelInstruments{ctx: context.Background()}

	counters := []struct {
		name string
		dst  *metric.Int64Counter
	}{
		{"pipeline_runs_total", &o.runs},
		{"pipeline_failures_total", &o.runFailures},
		{"pipeline_events_total", &o.events},
		{"stage_errors_total", &o.stageErrors},
		{"generation_attempts_total", &o.genAttempts},
		{"generation_errors_total", &o.genErrors},
		{"http_requests_total", &o.requests},
	}
	for _, c := range counters {
		v, err := meter.Int64Counter(c.name)
		if err != nil {
			return nil, err
		}
		*c.dst = v
	}

	histograms := []struct {
		name string
		dst  *metric.Float64Histogram
	}{
		{"pipeline_run_duration_ms", &o.runDurationMs},
		{"stage_duration_ms", &o.stageDurationMs},
		{"quality_score", &o.qualityScore},
		{"http_request_duration_ms", &o.requestDurationMs},
	}
	for _, h := range histograms {
		v, err := meter.Float64Histogram(h.name)
		if err != nil {
			return nil, err
		}
		*h.dst = v
	}
	return o, nil
}

func (o *otelInstruments) recordRun(state string, success bool, events int, d time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrState, state)}
	o.recordCounter(o.runs, 1, attrs...)
	o.recordHistogram(o.runDurationMs, float64(d.Milliseconds()), attrs...)
	if !success {
		o.recordCounter(o.runFailures, 1, attrs...)
	}
	if events > 0 {
		o.recordCounter(o.events, int64(events))
	}
}

func (o *otelInstruments) recordStage(stage string, d time.Duration, err error) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrStage, stage)}
	o.recordHistogram(o.stageDurationMs, float64(d.Milliseconds()), attrs...)
	if err != nil {
		o.recordCounter(o.stageErrors, 1, attrs...)
	}
}

func (o *otelInstruments) recordAttempt(provider string, err error) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrProvider, provider)}
	o.recordCounter(o.genAttempts, 1, attrs...)
	if err != nil {
		o.recordCounter(o.genErrors, 1, attrs...)
	}
}

func (o *otelInstruments) recordQuality(check string, score float64) {
	if o == nil {
		return
	}
	o.recordHistogram(o.qualityScore, score, attribute.String(AttrCheck, check))
}

func (o *otelInstruments) recordHTTPRequest(method, path string, status int, d time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrMethod, method),
		attribute.String(AttrPath, path),
		attribute.Int(AttrStatus, status),
	}
	o.recordCounter(o.requests, 1, attrs...)
	o.recordHistogram(o.requestDurationMs, float64(d.Milliseconds()), attrs...)
}

func (o *otelInstruments) recordCounter(counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	counter.Add(o.ctx, value, metric.WithAttributes(attrs...))
}

func (o *otelInstruments) recordHistogram(hist metric.Float64Histogram, value float64, attrs ...attribute.KeyValue) {
	hist.Record(o.ctx, value, metric.WithAttributes(attrs...))
}
