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
)

const defaultServiceName = "poll-position"

var (
	promReaderFactory = prometheusComponents
	otlpReaderFactory = buildOTLPReader
	instrumentFactory = newOtelInstruments
)

// TelemetryConfig controls how metrics are exported.
type TelemetryConfig struct {
	Enabled      bool
	Port         string
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter and optional OTLP exporter.
// It returns a Recorder, the Prometheus HTTP handler, and a shutdown function.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
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

	otelInst, err := instrumentFactory(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	rec := newRecorder(otelInst)
	shutdown := func(c context.Context) error {
		return provider.Shutdown(c)
	}

	return rec, promHandler, shutdown, nil
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	otlpExp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(otlpExp, sdkmetric.WithInterval(15*time.Second)), nil
}

type otelInstruments struct {
	ctx            context.Context
	requests       metric.Int64Counter
	requestLatency metric.Float64Histogram
	sourceAttempts metric.Int64Counter
	sourceErrors   metric.Int64Counter
	sourceLatency  metric.Float64Histogram
	seasonFetches  metric.Int64Counter
	cacheLookups   metric.Int64Counter
	loads          metric.Int64Counter
	loadLatency    metric.Float64Histogram
	datasetRows    metric.Int64Histogram
}

func prometheusComponents() (sdkmetric.Reader, http.Handler, error) {
	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return promExp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	meter := provider.Meter(defaultServiceName)
	inst := &otelInstruments{ctx: context.Background()}

	var err error
	if inst.requests, err = meter.Int64Counter("http_requests_total"); err != nil {
		return nil, err
	}
	if inst.requestLatency, err = meter.Float64Histogram("http_request_duration_ms"); err != nil {
		return nil, err
	}
	if inst.sourceAttempts, err = meter.Int64Counter("source_attempts_total"); err != nil {
		return nil, err
	}
	if inst.sourceErrors, err = meter.Int64Counter("source_errors_total"); err != nil {
		return nil, err
	}
	if inst.sourceLatency, err = meter.Float64Histogram("source_duration_ms"); err != nil {
		return nil, err
	}
	if inst.seasonFetches, err = meter.Int64Counter("season_fetch_total"); err != nil {
		return nil, err
	}
	if inst.cacheLookups, err = meter.Int64Counter("cache_lookups_total"); err != nil {
		return nil, err
	}
	if inst.loads, err = meter.Int64Counter("loader_runs_total"); err != nil {
		return nil, err
	}
	if inst.loadLatency, err = meter.Float64Histogram("loader_duration_ms"); err != nil {
		return nil, err
	}
	if inst.datasetRows, err = meter.Int64Histogram("dataset_rows"); err != nil {
		return nil, err
	}
	return inst, nil
}

func (o *otelInstruments) recordHTTPRequest(method, path string, status int, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrMethod, method),
		attribute.String(AttrPath, path),
		attribute.Int(AttrStatus, status),
	)
	o.requests.Add(o.ctx, 1, attrs)
	o.requestLatency.Record(o.ctx, float64(duration.Milliseconds()), attrs)
}

func (o *otelInstruments) recordSourceAttempt(endpoint string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrEndpoint, endpoint))
	o.sourceAttempts.Add(o.ctx, 1, attrs)
	o.sourceLatency.Record(o.ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		o.sourceErrors.Add(o.ctx, 1, attrs)
	}
}

func (o *otelInstruments) recordSeasonFetch(outcome string) {
	if o == nil {
		return
	}
	o.seasonFetches.Add(o.ctx, 1, metric.WithAttributes(attribute.String(AttrOutcome, outcome)))
}

func (o *otelInstruments) recordCacheLookup(name string, hit bool) {
	if o == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	o.cacheLookups.Add(o.ctx, 1, metric.WithAttributes(
		attribute.String(AttrCache, name),
		attribute.String(AttrResult, result),
	))
}

func (o *otelInstruments) recordLoad(duration time.Duration, rows int) {
	if o == nil {
		return
	}
	o.loads.Add(o.ctx, 1)
	o.loadLatency.Record(o.ctx, float64(duration.Milliseconds()))
	o.datasetRows.Record(o.ctx, int64(rows))
}
