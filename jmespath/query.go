package jmespath

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ardnew/jmes/log"
)

// Query is a compiled expression bound to a [Registry]. It is immutable and
// safe for concurrent use.
type Query struct {
	root      *Node
	registry  *Registry
	telemetry *telemetry
	tracer    trace.TracerProvider
	meter     metric.MeterProvider
	logger    log.Logger
	text      string
}

// Option configures a [Query] at compile time.
type Option func(*Query)

// WithRegistry binds the query to registry instead of a fresh [Builtins]
// registry.
func WithRegistry(registry *Registry) Option {
	return func(q *Query) { q.registry = registry }
}

// WithLogger sets the logger receiving trace records for compilation and
// searches. The zero Logger discards everything.
func WithLogger(logger log.Logger) Option {
	return func(q *Query) { q.logger = logger }
}

// WithTracerProvider sets the provider of the tracer that records a span
// for each search.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(q *Query) { q.tracer = tp }
}

// WithMeterProvider sets the provider of the search count, error count, and
// duration instruments.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(q *Query) { q.meter = mp }
}

// Compile parses expr into a reusable [Query].
func Compile(expr string, opts ...Option) (*Query, error) {
	q := &Query{text: expr}

	for _, opt := range opts {
		opt(q)
	}

	if q.registry == nil {
		q.registry = Builtins()
	}

	if q.tracer != nil || q.meter != nil {
		q.telemetry = newTelemetry(q.tracer, q.meter)
	} else {
		q.telemetry = noopTelemetry()
	}

	root, err := Parse(expr)
	if err != nil {
		q.logger.Trace(
			"compile failed",
			slog.String("expression", expr),
			slog.Any("error", err),
		)

		return nil, err
	}

	q.root = root

	q.logger.Trace(
		"compile complete",
		slog.String("expression", expr),
		slog.Int("nodes", countNodes(root)),
	)

	return q, nil
}

// MustCompile is like [Compile] but panics if expr does not compile.
func MustCompile(expr string, opts ...Option) *Query {
	q, err := Compile(expr, opts...)
	if err != nil {
		panic(err)
	}

	return q
}

// Search compiles expr and searches data with it.
func Search(expr string, data any) (*Value, error) {
	q, err := Compile(expr)
	if err != nil {
		return nil, err
	}

	return q.Search(data)
}

// Search evaluates the query against data, which is first converted with
// [ToValue].
func (q *Query) Search(data any) (*Value, error) {
	return q.SearchContext(context.Background(), data)
}

// SearchContext is like [Query.Search] and records a trace span and metrics
// through the providers configured at compile time. Evaluation itself does
// not observe ctx cancellation.
func (q *Query) SearchContext(ctx context.Context, data any) (*Value, error) {
	start := time.Now()

	ctx, span := q.telemetry.start(ctx, q.text)
	defer span.End()

	result, err := q.search(data)

	q.telemetry.finish(ctx, span, q.text, result, err, time.Since(start))

	if err != nil {
		q.logger.TraceContext(ctx, "search failed",
			slog.String("expression", q.text),
			slog.Any("error", err),
		)

		return nil, err
	}

	q.logger.TraceContext(ctx, "search complete",
		slog.String("expression", q.text),
		slog.String("result", result.Kind().String()),
		slog.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}

func (q *Query) search(data any) (*Value, error) {
	input, err := ToValue(data)
	if err != nil {
		return nil, err
	}

	result, err := NewContext(q.text, q.registry).Evaluate(q.root, input)
	if err != nil {
		return nil, err
	}

	if result == nil {
		return null, nil
	}

	return result, nil
}

// String returns the expression text exactly as compiled.
func (q *Query) String() string { return q.text }

// Expression returns the expression text exactly as compiled.
func (q *Query) Expression() string { return q.text }

// AST returns the root of the expression tree. The tree must not be
// modified.
func (q *Query) AST() *Node { return q.root }

// Registry returns the registry the query resolves functions against.
func (q *Query) Registry() *Registry { return q.registry }

// Equal reports whether q and o were compiled from the same text.
func (q *Query) Equal(o *Query) bool {
	if q == nil || o == nil {
		return q == o
	}

	return q.text == o.text
}
