// Tracing instrumentation for the agent.
package agent

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vinayprograms/vnfagent/internal/telemetry"
)

// startRunSpan starts the root span of a run.
func (a *Agent) startRunSpan(ctx context.Context, runID, goal string) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, "vnf.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.goal", goal),
			attribute.String("llm.provider", a.providerName),
			attribute.String("llm.model", a.model),
		),
	)
}

// endRunSpan ends the run span with the report kind.
func (a *Agent) endRunSpan(span trace.Span, report *Report) {
	span.SetAttributes(
		attribute.String("run.kind", string(report.Kind)),
		attribute.Int("run.outputs", len(report.Outputs)),
	)
	span.End()
}

// startPhaseSpan starts a span for one phase of the run.
func (a *Agent) startPhaseSpan(ctx context.Context, phase string) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, "phase."+phase,
		trace.WithAttributes(attribute.String("phase.name", phase)),
	)
}

// endPhaseSpan ends the phase span.
func (a *Agent) endPhaseSpan(span trace.Span, attrs map[string]string, err error) {
	for k, v := range attrs {
		span.SetAttributes(attribute.String(k, v))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
