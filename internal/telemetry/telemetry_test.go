package telemetry

import (
	"context"
	"testing"

	"github.com/vinayprograms/vnfagent/internal/config"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TelemetryConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown failed: %v", err)
	}
}

func TestMetrics_Record(t *testing.T) {
	m, err := NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	ctx := context.Background()
	m.RecordRun(ctx, "summary")
	m.RecordFallback(ctx, "declined")
	m.RecordCheck(ctx, "check_security_compliance", "pass")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordRun(ctx, "summary")
	m.RecordFallback(ctx, "failed")
	m.RecordCheck(ctx, "check_resource_requirements", "error")
}
