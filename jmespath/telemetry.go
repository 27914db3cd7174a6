package jmespath

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName names the tracer and meter used by searches.
const InstrumentationName = "github.com/ardnew/jmes/jmespath"

// Attribute keys recorded on search spans and metrics.
const (
	AttrExpression = "jmespath.expression"
	AttrResultKind = "jmespath.result.kind"
	AttrErrorClass = "jmespath.error.class"
)

// telemetry holds the tracer and metric instruments of a query.
type telemetry struct {
	tracer   trace.Tracer
	searches metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

var noopTelemetry = sync.OnceValue(func() *telemetry {
	return newTelemetry(tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
})

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) *telemetry {
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}

	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}

	meter := mp.Meter(InstrumentationName)
	t := &telemetry{tracer: tp.Tracer(InstrumentationName)}

	// Instrument creation only fails on invalid parameters.
	var err error

	t.searches, err = meter.Int64Counter(
		"jmespath.search.count",
		metric.WithDescription("Number of searches evaluated"),
		metric.WithUnit("{search}"),
	)
	if err != nil {
		t.searches, _ = meter.Int64Counter("jmespath.search.count")
	}

	t.failures, err = meter.Int64Counter(
		"jmespath.search.errors",
		metric.WithDescription("Number of searches that returned an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		t.failures, _ = meter.Int64Counter("jmespath.search.errors")
	}

	t.duration, err = meter.Float64Histogram(
		"jmespath.search.duration",
		metric.WithDescription("Duration of searches in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		t.duration, _ = meter.Float64Histogram("jmespath.search.duration")
	}

	return t
}

// start opens a span for a search of expr.
func (t *telemetry) start(ctx context.Context, expr string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "jmespath.search",
		trace.WithAttributes(attribute.String(AttrExpression, expr)),
	)
}

// finish records the outcome of a search on span and the metric instruments.
func (t *telemetry) finish(
	ctx context.Context,
	span trace.Span,
	expr string,
	result *Value,
	err error,
	elapsed time.Duration,
) {
	attrs := []attribute.KeyValue{attribute.String(AttrExpression, expr)}

	if err != nil {
		class := attribute.String(AttrErrorClass, classOf(err).String())

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(class)

		t.failures.Add(ctx, 1, metric.WithAttributes(append(attrs, class)...))
	} else {
		span.SetAttributes(attribute.String(AttrResultKind, result.Kind().String()))
	}

	t.searches.Add(ctx, 1, metric.WithAttributes(attrs...))
	t.duration.Record(ctx, float64(elapsed.Microseconds())/1e3, metric.WithAttributes(attrs...))
}
