// Package observability wires OpenTelemetry tracing and metrics around
// the dispatch pipeline. Disabled by default; when off every call is a
// cheap no-op.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Config controls the telemetry provider.
type Config struct {
	Enabled        bool    `json:"enabled" koanf:"enabled"`
	ServiceName    string  `json:"service_name" koanf:"service_name"`
	ServiceVersion string  `json:"service_version" koanf:"service_version"`
	Environment    string  `json:"environment" koanf:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint" koanf:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate" koanf:"sample_rate"`
}

// DefaultConfig returns a disabled telemetry configuration with local
// collector defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "notifycast",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4318",
		SampleRate:     1.0,
	}
}

// Telemetry provides tracing and metrics for dispatch operations.
type Telemetry struct {
	config        Config
	tracer        trace.Tracer
	meter         metric.Meter
	traceProvider *sdktrace.TracerProvider

	targetsSent   metric.Int64Counter
	targetsFailed metric.Int64Counter
	jobsEnqueued  metric.Int64Counter
	sendDuration  metric.Float64Histogram
}

// New creates a telemetry provider. With cfg.Enabled false the returned
// provider uses the global (no-op unless configured elsewhere) tracer
// and records no metrics.
func New(cfg Config) (*Telemetry, error) {
	t := &Telemetry{
		config: cfg,
		tracer: otel.Tracer("notifycast"),
		meter:  otel.Meter("notifycast"),
	}
	if !cfg.Enabled {
		return t, nil
	}
	if err := t.initTracing(); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	if err := t.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return t, nil
}

func (t *Telemetry) initTracing() error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(t.config.ServiceName),
			semconv.ServiceVersion(t.config.ServiceVersion),
			semconv.DeploymentEnvironment(t.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otlptrace.New(context.Background(),
		otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(t.config.OTLPEndpoint),
		),
	)
	if err != nil {
		return fmt.Errorf("create exporter: %w", err)
	}

	t.traceProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(t.config.SampleRate)),
	)
	otel.SetTracerProvider(t.traceProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.tracer = otel.Tracer("notifycast")
	return nil
}

func (t *Telemetry) initMetrics() error {
	t.meter = otel.Meter("notifycast")

	var err error
	if t.targetsSent, err = t.meter.Int64Counter(
		"notifycast_targets_sent_total",
		metric.WithDescription("Total number of targets notified successfully"),
	); err != nil {
		return err
	}
	if t.targetsFailed, err = t.meter.Int64Counter(
		"notifycast_targets_failed_total",
		metric.WithDescription("Total number of targets that failed or were skipped"),
	); err != nil {
		return err
	}
	if t.jobsEnqueued, err = t.meter.Int64Counter(
		"notifycast_jobs_enqueued_total",
		metric.WithDescription("Total number of dispatch jobs enqueued"),
	); err != nil {
		return err
	}
	if t.sendDuration, err = t.meter.Float64Histogram(
		"notifycast_send_duration_seconds",
		metric.WithDescription("Duration of per-target send operations"),
		metric.WithUnit("s"),
	); err != nil {
		return err
	}
	return nil
}

// StartDispatch opens a span covering one whole dispatch call.
func (t *Telemetry) StartDispatch(ctx context.Context, targets int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "notifycast.dispatch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("dispatch.targets", targets)),
	)
}

// RecordOutcome records the metrics for one finished target.
func (t *Telemetry) RecordOutcome(ctx context.Context, providerName string, sent bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("provider", providerName))
	if t.targetsSent == nil {
		return
	}
	if sent {
		t.targetsSent.Add(ctx, 1, attrs)
	} else {
		t.targetsFailed.Add(ctx, 1, attrs)
	}
	t.sendDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordEnqueue records one job handed to the async queue.
func (t *Telemetry) RecordEnqueue(ctx context.Context, backend string) {
	if t.jobsEnqueued == nil {
		return
	}
	t.jobsEnqueued.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", backend)))
}

// EndSpan closes the span, flagging it as an error when ok is false.
func EndSpan(span trace.Span, ok bool, detail string) {
	if !ok {
		span.SetStatus(codes.Error, detail)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Shutdown flushes and stops the trace provider.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.traceProvider == nil {
		return nil
	}
	return t.traceProvider.Shutdown(ctx)
}
