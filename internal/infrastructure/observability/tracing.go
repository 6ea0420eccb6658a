package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "edu-resources"

// GetTracer returns the tracer for the resource service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartUploadSpan starts a span covering one upload workflow.
func StartUploadSpan(ctx context.Context, resourceType, fileName string, size int64) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "resource.upload",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("resource.type", resourceType),
			attribute.String("resource.file_name", fileName),
			attribute.Int64("resource.size", size),
		),
	)
}

// StartStorageSpan starts a span for a storage backend operation.
func StartStorageSpan(ctx context.Context, provider, operation, ref string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "storage."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("storage.provider", provider),
			attribute.String("storage.ref", ref),
		),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
