package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerName is the name of the tracer for resolution operations.
const TracerName = "orgmatch"

// Span attribute keys
const (
	AttrDirectorySize = "directory_size"
	AttrIdentities    = "identities"
	AttrAutoMatched   = "auto_matched"
	AttrNeedsReview   = "needs_resolution"
	AttrCoverage      = "coverage_percent"
	AttrThreshold     = "threshold"
)

// Span names
const (
	SpanBuildDirectory = "orgmatch.build_directory"
	SpanResolve        = "orgmatch.resolve"
	SpanCoverage       = "orgmatch.coverage_report"
)

// Tracer provides tracing for directory builds and resolution runs.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a new resolution tracer.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(TracerName)}
}

// StartBuildSpan starts a span for a directory build.
func (t *Tracer) StartBuildSpan(ctx context.Context) (context.Context, trace.Span) {
	if t == nil {
		return noopSpan(ctx)
	}
	return t.tracer.Start(ctx, SpanBuildDirectory)
}

// StartResolveSpan starts a span for a resolution run.
func (t *Tracer) StartResolveSpan(ctx context.Context, identities, threshold int) (context.Context, trace.Span) {
	if t == nil {
		return noopSpan(ctx)
	}
	return t.tracer.Start(ctx, SpanResolve,
		trace.WithAttributes(
			attribute.Int(AttrIdentities, identities),
			attribute.Int(AttrThreshold, threshold),
		),
	)
}

// StartCoverageSpan starts a span for a coverage report.
func (t *Tracer) StartCoverageSpan(ctx context.Context, directorySize, identities int) (context.Context, trace.Span) {
	if t == nil {
		return noopSpan(ctx)
	}
	return t.tracer.Start(ctx, SpanCoverage,
		trace.WithAttributes(
			attribute.Int(AttrDirectorySize, directorySize),
			attribute.Int(AttrIdentities, identities),
		),
	)
}

// EndResolveSpan records the run outcome on the span and ends it.
func EndResolveSpan(span trace.Span, autoMatched, needsResolution, coverage int) {
	span.SetAttributes(
		attribute.Int(AttrAutoMatched, autoMatched),
		attribute.Int(AttrNeedsReview, needsResolution),
		attribute.Int(AttrCoverage, coverage),
	)
	span.End()
}

// RecordError marks the span failed with the given error.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// noopSpan returns a span that records nothing, for nil tracers.
func noopSpan(ctx context.Context) (context.Context, trace.Span) {
	return noop.NewTracerProvider().Tracer(TracerName).Start(ctx, "noop")
}
