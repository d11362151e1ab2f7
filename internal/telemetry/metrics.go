package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the vnfagent metric instruments.
type Metrics struct {
	Runs      metric.Int64Counter
	Fallbacks metric.Int64Counter
	Checks    metric.Int64Counter
}

// NewMetrics creates all metric instruments on the global meter.
func NewMetrics() (*Metrics, error) {
	meter := Meter()
	m := &Metrics{}
	var err error

	m.Runs, err = meter.Int64Counter("vnfagent.runs",
		metric.WithDescription("Number of validation runs by report kind"))
	if err != nil {
		return nil, err
	}

	m.Fallbacks, err = meter.Int64Counter("vnfagent.plan.fallbacks",
		metric.WithDescription("Number of heuristic plans substituted for a model plan"))
	if err != nil {
		return nil, err
	}

	m.Checks, err = meter.Int64Counter("vnfagent.checks",
		metric.WithDescription("Number of check invocations by tool and outcome"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRun counts a finished run.
func (m *Metrics) RecordRun(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.Runs.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordFallback counts a heuristic plan.
func (m *Metrics) RecordFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.Fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordCheck counts one check invocation. Outcome is pass, fail or error.
func (m *Metrics) RecordCheck(ctx context.Context, tool, outcome string) {
	if m == nil {
		return
	}
	m.Checks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("outcome", outcome),
	))
}
