package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vinayprograms/vnfagent/internal/checks"
	"github.com/vinayprograms/vnfagent/internal/executor"
	"github.com/vinayprograms/vnfagent/internal/llm"
	"github.com/vinayprograms/vnfagent/internal/planner"
)

const (
	ciscoGoal     = "Please perform a pre-check on the VNF package named 'cisco_firewall_v2.1.zip'"
	newVendorGoal = "I need to validate a new package from a new vendor. The file is 'newvendor_router_highcpu.rar'"
)

func newTestAgent(t *testing.T, provider llm.Provider, tools bool) *Agent {
	t.Helper()
	a, err := New(Options{
		Provider:     provider,
		ProviderName: "mock",
		Model:        "mock-model",
		ToolsEnabled: tools,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.newRunID = func() string { return "run-1" }
	return a
}

func TestNew_RequiresProvider(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected error without provider")
	}
}

func TestRun_EmptyGoal(t *testing.T) {
	a := newTestAgent(t, llm.NewMockProvider(), true)
	if _, err := a.Run(context.Background(), "   "); !errors.Is(err, ErrEmptyGoal) {
		t.Errorf("expected ErrEmptyGoal, got %v", err)
	}
}

func TestRun_FallbackWithoutToolCapability(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetResponse("All three checks failed. Overall: REJECT.")
	a := newTestAgent(t, provider, false)

	report, err := a.Run(context.Background(), newVendorGoal)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if provider.Calls() != 1 {
		t.Fatalf("expected only the summary call, got %d calls", provider.Calls())
	}
	if report.Kind != KindSummary {
		t.Errorf("expected summary kind, got %s", report.Kind)
	}
	if report.PlanSource != planner.SourceFallback {
		t.Errorf("expected fallback plan, got %s", report.PlanSource)
	}
	if report.RunID != "run-1" {
		t.Errorf("unexpected run id %s", report.RunID)
	}
	if len(report.Outputs) != 3 {
		t.Fatalf("expected 3 outputs, got %d", len(report.Outputs))
	}
	for i, c := range checks.All() {
		out := report.Outputs[i]
		if out.Tool != c.Name() {
			t.Errorf("output %d: expected %s, got %s", i, c.Name(), out.Tool)
		}
		if out.Arguments[checks.ArgFileName] != "newvendor_router_highcpu.rar" {
			t.Errorf("output %d: wrong file name %v", i, out.Arguments)
		}
	}
	if report.Passed() {
		t.Error("newvendor package should not pass")
	}

	req := provider.LastRequest()
	if len(req.Tools) != 0 {
		t.Errorf("summary call must not carry tools, got %d", len(req.Tools))
	}
	// system, user, assistant with calls, 3 tool messages
	if len(req.Messages) != 6 {
		t.Fatalf("expected 6 summary messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Content != summarySystemPrompt {
		t.Errorf("unexpected system prompt %q", req.Messages[0].Content)
	}
	if req.Messages[1].Role != llm.RoleUser || req.Messages[1].Content != newVendorGoal {
		t.Errorf("expected goal as user message, got %+v", req.Messages[1])
	}
	assistant := req.Messages[2]
	if assistant.Role != llm.RoleAssistant || len(assistant.ToolCalls) != 3 {
		t.Fatalf("expected assistant message with 3 calls, got %+v", assistant)
	}
	for i, msg := range req.Messages[3:] {
		if msg.Role != llm.RoleTool {
			t.Errorf("message %d: expected tool role, got %s", i, msg.Role)
		}
		if msg.ToolCallID != assistant.ToolCalls[i].ID {
			t.Errorf("message %d: tool_call_id %s does not answer %s", i, msg.ToolCallID, assistant.ToolCalls[i].ID)
		}
	}
}

func TestRun_PlanningRequest(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetResponse("ok")
	a := newTestAgent(t, provider, true)

	if _, err := a.Run(context.Background(), ciscoGoal); err != nil {
		t.Fatalf("Run: %v", err)
	}

	reqs := provider.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected planning and summary calls, got %d", len(reqs))
	}
	planning := reqs[0]
	if len(planning.Tools) != 3 {
		t.Fatalf("expected 3 tool definitions, got %d", len(planning.Tools))
	}
	if planning.Tools[0].Name != checks.NamePackageStructure {
		t.Errorf("unexpected first tool %s", planning.Tools[0].Name)
	}
	if planning.Messages[0].Content != planningSystemPrompt {
		t.Errorf("unexpected planning system prompt")
	}
	if planning.Messages[1].Content != "User goal: "+ciscoGoal {
		t.Errorf("unexpected planning user prompt %q", planning.Messages[1].Content)
	}
}

func TestRun_ModelPlan(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.QueueResponse(&llm.ChatResponse{
		Content: "Validating the package.",
		ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: checks.NameSecurityCompliance, Arguments: `{"file_name":"cisco_firewall_v2.1.zip"}`},
			{ID: "c2", Name: checks.NamePackageStructure, Arguments: `{"file_name":"cisco_firewall_v2.1.zip"}`},
		},
	})
	provider.SetResponse("Both checks passed. Overall: ACCEPT.")
	a := newTestAgent(t, provider, true)

	report, err := a.Run(context.Background(), ciscoGoal)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.PlanSource != planner.SourceModel {
		t.Errorf("expected model plan, got %s", report.PlanSource)
	}
	if len(report.Outputs) != 2 || report.Outputs[0].CallID != "c1" || report.Outputs[1].CallID != "c2" {
		t.Fatalf("unexpected outputs %+v", report.Outputs)
	}
	if !report.Passed() {
		t.Error("cisco package should pass")
	}
	if report.Summary != "Both checks passed. Overall: ACCEPT." {
		t.Errorf("unexpected summary %q", report.Summary)
	}
	assistant := provider.LastRequest().Messages[2]
	if assistant.Content != "Validating the package." {
		t.Errorf("planning content not forwarded: %q", assistant.Content)
	}
}

func TestRun_NothingToValidate(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetResponse("I do not see a package to validate.")
	a := newTestAgent(t, provider, true)

	report, err := a.Run(context.Background(), "Please check the router configuration")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Kind != KindNothing {
		t.Errorf("expected nothing kind, got %s", report.Kind)
	}
	if len(report.Outputs) != 0 {
		t.Errorf("expected no outputs, got %d", len(report.Outputs))
	}
	if provider.Calls() != 1 {
		t.Errorf("expected no summary call, got %d calls", provider.Calls())
	}
}

func TestRun_NothingToValidateWithoutTools(t *testing.T) {
	provider := llm.NewMockProvider()
	a := newTestAgent(t, provider, false)

	report, err := a.Run(context.Background(), "no file here")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Kind != KindNothing || provider.Calls() != 0 {
		t.Errorf("expected nothing with zero backend calls, got %s with %d calls", report.Kind, provider.Calls())
	}
}

func TestRun_PlanningFailureFallsBack(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.QueueError(errors.New("connection refused"))
	provider.SetResponse("summary")
	a := newTestAgent(t, provider, true)

	report, err := a.Run(context.Background(), ciscoGoal)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.PlanSource != planner.SourceFallback || len(report.Outputs) != 3 {
		t.Errorf("expected 3-call fallback, got %s with %d outputs", report.PlanSource, len(report.Outputs))
	}
	if report.Kind != KindSummary {
		t.Errorf("expected summary kind, got %s", report.Kind)
	}
}

func TestRun_MalformedArgumentsReachSummary(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.QueueResponse(&llm.ChatResponse{
		ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: checks.NamePackageStructure, Arguments: `{"file_name": "juniper_srx_1.zip"`},
			{ID: "c2", Name: checks.NameSecurityCompliance, Arguments: `{"file_name":"juniper_srx_1.zip"}`},
		},
	})
	provider.SetResponse("One check errored.")
	a := newTestAgent(t, provider, true)

	// No file name in the goal, so the broken call cannot be repaired.
	report, err := a.Run(context.Background(), "Validate the package the vendor sent")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if provider.Calls() != 2 {
		t.Fatalf("expected summary call, got %d calls", provider.Calls())
	}
	if report.Kind != KindSummary {
		t.Errorf("expected summary kind, got %s", report.Kind)
	}
	if report.Outputs[0].Outcome() != executor.OutcomeError {
		t.Errorf("malformed call should be error-shaped, got %+v", report.Outputs[0])
	}
	if !strings.Contains(report.Outputs[0].Content, `"error"`) {
		t.Errorf("expected error payload, got %s", report.Outputs[0].Content)
	}
	if report.Outputs[1].Outcome() != executor.OutcomePass {
		t.Errorf("second call should pass, got %+v", report.Outputs[1])
	}
}

func TestRun_AllUnknownToolsStillSummarize(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.QueueResponse(&llm.ChatResponse{
		ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: "delete_package", Arguments: `{}`},
			{ID: "c2", Name: "upload_package", Arguments: `{}`},
		},
	})
	provider.SetResponse("No checks were run.")
	a := newTestAgent(t, provider, true)

	report, err := a.Run(context.Background(), ciscoGoal)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Outputs) != 0 || report.Dropped != 2 {
		t.Errorf("expected empty outputs with 2 dropped, got %d outputs, %d dropped", len(report.Outputs), report.Dropped)
	}
	if provider.Calls() != 2 || report.Kind != KindSummary {
		t.Errorf("expected summary with no tool context, got %s after %d calls", report.Kind, provider.Calls())
	}
	// system and user only
	if n := len(provider.LastRequest().Messages); n != 2 {
		t.Errorf("expected 2 summary messages, got %d", n)
	}
}

func TestRun_SummaryFailureDegrades(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.QueueError(errors.New("timeout"))
	a := newTestAgent(t, provider, false)

	report, err := a.Run(context.Background(), ciscoGoal)
	if err != nil {
		t.Fatalf("Run must not fail on summary error: %v", err)
	}
	if report.Kind != KindDegraded {
		t.Fatalf("expected degraded kind, got %s", report.Kind)
	}
	if report.Cause != "timeout" {
		t.Errorf("unexpected cause %q", report.Cause)
	}
	if !strings.HasPrefix(report.Summary, "LLM summary failed: timeout\nRaw tool outputs: [") {
		t.Errorf("unexpected degraded summary %q", report.Summary)
	}
	if !strings.Contains(report.Summary, `"role": "tool"`) {
		t.Errorf("degraded summary should embed tool messages: %s", report.Summary)
	}
	if len(report.Outputs) != 3 {
		t.Errorf("outputs should be kept, got %d", len(report.Outputs))
	}
}

func TestRun_EmptySummaryDegrades(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetResponse("   ")
	a := newTestAgent(t, provider, false)

	report, err := a.Run(context.Background(), ciscoGoal)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Kind != KindDegraded {
		t.Errorf("expected degraded kind, got %s", report.Kind)
	}
	if report.Cause != llm.ErrEmptyResponse.Error() {
		t.Errorf("unexpected cause %q", report.Cause)
	}
}

func TestRun_Callbacks(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetResponse("done")
	a := newTestAgent(t, provider, false)

	var phases []string
	a.OnPhase = func(index, total int, phase string) {
		if total != 3 {
			t.Errorf("expected 3 phases, got %d", total)
		}
		phases = append(phases, phase)
	}
	var tools int
	a.OnToolResult = func(index, total int, out executor.ToolOutput) { tools++ }

	if _, err := a.Run(context.Background(), ciscoGoal); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{PhasePlan, PhaseExecute, PhaseSummarize}
	if strings.Join(phases, ",") != strings.Join(want, ",") {
		t.Errorf("phases = %v, want %v", phases, want)
	}
	if tools != 3 {
		t.Errorf("expected 3 tool callbacks, got %d", tools)
	}
}

func TestRun_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	provider := llm.NewMockProvider()
	provider.SetResponse("done")
	a := newTestAgent(t, provider, false)
	if _, err := a.Run(context.Background(), ciscoGoal); err != nil {
		t.Fatalf("Run: %v", err)
	}

	names := map[string]bool{}
	var root sdktrace.ReadOnlySpan
	for _, s := range sr.Ended() {
		names[s.Name()] = true
		if s.Name() == "vnf.run" {
			root = s
		}
	}
	for _, want := range []string{"vnf.run", "phase.plan", "phase.execute", "phase.summarize", "check.check_vnf_package_structure"} {
		if !names[want] {
			t.Errorf("missing span %s (got %v)", want, names)
		}
	}
	if root == nil {
		t.Fatal("no root span")
	}
	for _, s := range sr.Ended() {
		if s.Name() == "phase.plan" && s.Parent().SpanID() != root.SpanContext().SpanID() {
			t.Error("phase span should be a child of the run span")
		}
	}
}

func TestDegradedSummary_KeepsMarkupLiteral(t *testing.T) {
	out := []executor.ToolOutput{{CallID: "c<1>", Tool: "a&b", Content: `{"reason":"<x>"}`}}
	got := DegradedSummary(errors.New("boom"), out)
	for _, want := range []string{`"c<1>"`, `"a&b"`, `<x>`} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %s in degraded summary:\n%s", want, got)
		}
	}
	if strings.Contains(got, `\u003c`) || strings.Contains(got, `\u0026`) {
		t.Errorf("markup characters escaped:\n%s", got)
	}
}

func TestDegradedSummary_Format(t *testing.T) {
	out := []executor.ToolOutput{{CallID: "fallback_1", Tool: checks.NamePackageStructure, Content: `{"is_valid":true}`}}
	got := DegradedSummary(errors.New("boom"), out)
	want := "LLM summary failed: boom\nRaw tool outputs: [\n  {\n    \"tool_call_id\": \"fallback_1\",\n" +
		"    \"role\": \"tool\",\n    \"name\": \"check_vnf_package_structure\",\n" +
		"    \"content\": \"{\\\"is_valid\\\":true}\"\n  }\n]"
	if got != want {
		t.Errorf("DegradedSummary =\n%s\nwant\n%s", got, want)
	}
}
