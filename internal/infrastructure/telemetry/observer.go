package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"sandtimer.dev/mcp/internal/core/apperr"
	"sandtimer.dev/mcp/internal/core/tool"
)

const instrumentationName = "sandtimer.dev/mcp"

// Observer records tool calls and bridge deliveries as spans and metrics
type Observer struct {
	tracer trace.Tracer

	calls    metric.Int64Counter
	failures metric.Int64Counter
	latency  metric.Float64Histogram
}

// NewObserver creates an observer bound to the given providers. Nil providers
// fall back to no-op implementations.
func NewObserver(tp trace.TracerProvider, mp metric.MeterProvider) (*Observer, error) {
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	calls, err := meter.Int64Counter(
		"sandtimer.tool.calls",
		metric.WithDescription("Number of tool calls handled"),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter(
		"sandtimer.bridge.failures",
		metric.WithDescription("Number of bridge commands that could not be delivered"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"sandtimer.bridge.latency",
		metric.WithDescription("Bridge delivery latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Observer{
		tracer:   tp.Tracer(instrumentationName),
		calls:    calls,
		failures: failures,
		latency:  latency,
	}, nil
}

// NewGlobalObserver creates an observer on the globally registered providers
func NewGlobalObserver() (*Observer, error) {
	return NewObserver(otel.GetTracerProvider(), otel.GetMeterProvider())
}

// NewNopObserver returns an observer that records nothing
func NewNopObserver() *Observer {
	o, _ := NewObserver(tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	return o
}

// StartToolCall opens the span covering one tools/call
func (o *Observer) StartToolCall(ctx context.Context, toolName string) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, "tools/call",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("tool.name", toolName)),
	)
}

// EndToolCall records the outcome of a tool call and ends its span
func (o *Observer) EndToolCall(ctx context.Context, span trace.Span, toolName string, failure *apperr.Error) {
	outcome := "ok"
	if failure != nil {
		outcome = failure.Code()
		span.SetStatus(codes.Error, failure.Message)
	}
	span.SetAttributes(attribute.String("tool.outcome", outcome))
	span.End()

	o.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool_name", toolName),
		attribute.String("outcome", outcome),
	))
}

// StartDelivery opens the span covering one bridge command
func (o *Observer) StartDelivery(ctx context.Context, cmd tool.Command, addr string) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, "bridge.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("bridge.cmd", string(cmd.Action)),
			attribute.String("bridge.addr", addr),
		),
	)
}

// EndDelivery records latency and failure of a bridge command and ends its span
func (o *Observer) EndDelivery(ctx context.Context, span trace.Span, cmd tool.Command, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("cmd", string(cmd.Action)))
	o.latency.Record(ctx, elapsed.Seconds(), attrs)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bridge delivery failed")
		o.failures.Add(ctx, 1, attrs)
	}
	span.End()
}
