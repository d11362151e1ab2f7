// Tracing instrumentation for the executor.
package executor

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vinayprograms/vnfagent/internal/telemetry"
)

// startCheckSpan starts a span for one check invocation.
func startCheckSpan(ctx context.Context, callID, tool, fileName string) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, "check."+tool,
		trace.WithAttributes(
			attribute.String("tool.call_id", callID),
			attribute.String("tool.name", tool),
			attribute.String("tool.file_name", fileName),
		),
	)
}

// endCheckSpan ends the check span with its outcome.
func endCheckSpan(span trace.Span, outcome string, err error) {
	span.SetAttributes(attribute.String("tool.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
