// OpenTelemetry provider and the engine's instrument set. The instruments
// are the engine's own vocabulary (scans, findings, probes, feed lookups),
// not a generic request/response surface: a scan is a long-lived batch
// operation whose interesting dimensions are mode, risk outcome, and
// per-domain finding volume.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config configures the OpenTelemetry providers.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string        // e.g. "localhost:4317" for gRPC
	SampleRate     float64       // 0.0 to 1.0; 1.0 samples every scan
	BatchTimeout   time.Duration // span batch flush interval
	MetricInterval time.Duration // metric export interval
	Enabled        bool
	Insecure       bool // plaintext OTLP, dev only
}

// DefaultConfig returns defaults suitable for a development deployment.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "scan-engine",
		ServiceVersion: "1.0.0",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4317",
		SampleRate:     1.0,
		BatchTimeout:   5 * time.Second,
		MetricInterval: 15 * time.Second,
		Enabled:        true,
	}
}

// Provider owns the trace/metric pipelines and the engine's instruments.
// A disabled Provider is fully usable: every Record method becomes a no-op
// so callers never branch on whether telemetry is on.
type Provider struct {
	config         *Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter
	logger         *slog.Logger

	scansTotal    metric.Int64Counter     // by scan mode
	scanErrors    metric.Int64Counter     // by mode and error type
	scanDuration  metric.Float64Histogram // seconds, scan-scale buckets
	activeScans   metric.Int64UpDownCounter
	findingsTotal metric.Int64Counter // by domain and severity
	probeRequests metric.Int64Counter // by probe module and outcome
	feedLookups   metric.Int64Counter // by feed source
}

// New creates a Provider. With Enabled false no exporter is built and the
// returned Provider's methods all no-op.
func New(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Provider{
		config: config,
		logger: slog.Default().With("component", "observability"),
	}

	if !config.Enabled {
		p.logger.InfoContext(ctx, "observability disabled")
		return p, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			semconv.DeploymentEnvironment(config.Environment),
			attribute.String("scanengine.component", "core"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := p.initTraceProvider(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to init trace provider: %w", err)
	}
	if err := p.initMetricProvider(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to init metric provider: %w", err)
	}

	p.tracer = otel.Tracer("scanengine.core",
		trace.WithInstrumentationVersion(config.ServiceVersion),
	)
	p.meter = otel.Meter("scanengine.core",
		metric.WithInstrumentationVersion(config.ServiceVersion),
	)

	if err := p.initInstruments(); err != nil {
		return nil, fmt.Errorf("failed to init instruments: %w", err)
	}

	p.logger.InfoContext(ctx, "observability initialized",
		"service", config.ServiceName,
		"environment", config.Environment,
		"endpoint", config.OTLPEndpoint,
		"sample_rate", config.SampleRate,
	)
	return p, nil
}

func (p *Provider) initTraceProvider(ctx context.Context, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case p.config.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case p.config.SampleRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(p.config.SampleRate)
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(p.config.BatchTimeout)),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(p.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return nil
}

func (p *Provider) initMetricProvider(ctx context.Context, res *resource.Resource) error {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create metric exporter: %w", err)
	}

	interval := p.config.MetricInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(p.meterProvider)
	return nil
}

// initInstruments builds the scan-domain instrument set. Duration buckets
// run from sub-second static scans out to the 300-second probe deadline,
// since a dynamic scan legitimately takes minutes.
func (p *Provider) initInstruments() error {
	var err error

	if p.scansTotal, err = p.meter.Int64Counter("scanengine.scans.total",
		metric.WithDescription("Completed scans by mode"),
		metric.WithUnit("{scan}"),
	); err != nil {
		return err
	}
	if p.scanErrors, err = p.meter.Int64Counter("scanengine.scans.errors",
		metric.WithDescription("Scans that ended in an error, by mode and error type"),
		metric.WithUnit("{error}"),
	); err != nil {
		return err
	}
	if p.scanDuration, err = p.meter.Float64Histogram("scanengine.scan.duration",
		metric.WithDescription("Scan wall-clock duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.25, 1, 5, 15, 60, 120, 300),
	); err != nil {
		return err
	}
	if p.activeScans, err = p.meter.Int64UpDownCounter("scanengine.scans.active",
		metric.WithDescription("Scans currently in flight"),
		metric.WithUnit("{scan}"),
	); err != nil {
		return err
	}
	if p.findingsTotal, err = p.meter.Int64Counter("scanengine.findings.total",
		metric.WithDescription("Findings reported, by domain and severity"),
		metric.WithUnit("{finding}"),
	); err != nil {
		return err
	}
	if p.probeRequests, err = p.meter.Int64Counter("scanengine.probes.requests",
		metric.WithDescription("Dynamic probe module executions, by module and outcome"),
		metric.WithUnit("{probe}"),
	); err != nil {
		return err
	}
	if p.feedLookups, err = p.meter.Int64Counter("scanengine.feeds.lookups",
		metric.WithDescription("External feed lookups, by source"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return err
	}
	return nil
}

// Shutdown flushes and stops both pipelines.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			p.logger.ErrorContext(ctx, "failed to shutdown trace provider", "error", err)
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			p.logger.ErrorContext(ctx, "failed to shutdown metric provider", "error", err)
		}
	}
	return nil
}

// Tracer returns the configured tracer.
func (p *Provider) Tracer() trace.Tracer {
	if p.tracer == nil {
		return otel.Tracer("scanengine.core")
	}
	return p.tracer
}

// Meter returns the configured meter.
func (p *Provider) Meter() metric.Meter {
	if p.meter == nil {
		return otel.Meter("scanengine.core")
	}
	return p.meter
}

// StartSpan starts a new span with the given name.
func (p *Provider) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return p.Tracer().Start(ctx, name, opts...)
}

// RecordFindings counts findings for one (domain, severity) cell of a
// completed scan.
func (p *Provider) RecordFindings(ctx context.Context, domain, severity string, count int) {
	if p.findingsTotal == nil || count <= 0 {
		return
	}
	p.findingsTotal.Add(ctx, int64(count), metric.WithAttributes(
		AttrFindingDomain.String(domain),
		AttrFindingSeverity.String(severity),
	))
}

// RecordProbe counts one dynamic probe module execution.
func (p *Provider) RecordProbe(ctx context.Context, module, outcome string) {
	if p.probeRequests == nil {
		return
	}
	p.probeRequests.Add(ctx, 1, metric.WithAttributes(
		AttrProbeName.String(module),
		attribute.String("scanengine.probe.outcome", outcome),
	))
}

// RecordFeedLookup counts one CVE/OSV feed lookup and its result volume.
func (p *Provider) RecordFeedLookup(ctx context.Context, source string, results int) {
	if p.feedLookups == nil {
		return
	}
	p.feedLookups.Add(ctx, 1, metric.WithAttributes(
		AttrFeedSource.String(source),
		AttrFeedResultLen.Int(results),
	))
}

// TrackOperation opens a span for one scan-level operation and returns the
// completion hook. The hook stamps duration, counts the scan (or its
// error), and closes the span; pass the operation's final error, nil on
// success.
func (p *Provider) TrackOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()

	ctx, span := p.StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	if p.activeScans != nil {
		p.activeScans.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	return ctx, func(err error) {
		if p.activeScans != nil {
			p.activeScans.Add(ctx, -1, metric.WithAttributes(attrs...))
		}
		if p.scanDuration != nil {
			p.scanDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))
		}
		if err != nil {
			span.RecordError(err)
			if p.scanErrors != nil {
				errAttrs := append(attrs, attribute.String("error.type", fmt.Sprintf("%T", err)))
				p.scanErrors.Add(ctx, 1, metric.WithAttributes(errAttrs...))
			}
		} else if p.scansTotal != nil {
			p.scansTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
		span.End()
	}
}
