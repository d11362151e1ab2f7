package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vinayprograms/vnfagent/internal/agent"
	"github.com/vinayprograms/vnfagent/internal/checks"
	"github.com/vinayprograms/vnfagent/internal/executor"
	"github.com/vinayprograms/vnfagent/internal/llm"
	"github.com/vinayprograms/vnfagent/internal/planner"
)

func sampleReport() *agent.Report {
	return &agent.Report{
		RunID:      "run-1",
		Goal:       "pre-check cisco_firewall_v2.1.zip",
		Provider:   "ollama",
		Model:      "phi3",
		Kind:       agent.KindSummary,
		PlanSource: planner.SourceFallback,
		Outputs: []executor.ToolOutput{
			{
				CallID:    "fallback_1",
				Tool:      checks.NamePackageStructure,
				Arguments: map[string]interface{}{"file_name": "cisco_firewall_v2.1.zip"},
				Verdict:   checks.StructureVerdict{IsValid: true, Reason: "Package structure and naming are valid."},
			},
			{
				CallID:    "fallback_2",
				Tool:      checks.NameSecurityCompliance,
				Arguments: map[string]interface{}{},
				Error:     "check_security_compliance() missing required argument: 'file_name'",
			},
		},
		Summary: "Structure passed. Compliance could not be evaluated. Overall: FAIL.",
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, " yaml ": FormatYAML}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestRenderer_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatText).Report(sampleReport()); err != nil {
		t.Fatalf("Report: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"FINAL REPORT",
		"summary",
		"pre-check cisco_firewall_v2.1.zip",
		"phi3 (ollama)",
		"fallback (2 checks)",
		checks.NamePackageStructure,
		"Package structure and naming are valid.",
		"error: check_security_compliance() missing required argument",
		"Overall: FAIL.",
		"Checks result:",
		"FAIL",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderer_TextNothing(t *testing.T) {
	var buf bytes.Buffer
	rep := &agent.Report{RunID: "run-2", Goal: "hello", Kind: agent.KindNothing}
	if err := New(&buf, FormatText).Report(rep); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !strings.Contains(buf.String(), "nothing to validate") {
		t.Errorf("expected nothing-to-validate line:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "Summary") {
		t.Errorf("nothing report should have no summary section:\n%s", buf.String())
	}
}

func TestRenderer_TextWrapsSummary(t *testing.T) {
	var buf bytes.Buffer
	rep := sampleReport()
	rep.Summary = strings.Repeat("word ", 40)
	r := New(&buf, FormatText)
	r.SetWidth(20)
	if err := r.Report(rep); err != nil {
		t.Fatalf("Report: %v", err)
	}
	summary := buf.String()[strings.Index(buf.String(), "Summary"):]
	for _, line := range strings.Split(summary, "\n") {
		if strings.HasPrefix(line, "word") && len(strings.TrimRight(line, " ")) > 20 {
			t.Errorf("summary line longer than wrap width: %q", line)
		}
	}
}

func TestRenderer_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatJSON).Report(sampleReport()); err != nil {
		t.Fatalf("Report: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["kind"] != "summary" || decoded["plan_source"] != "fallback" {
		t.Errorf("unexpected header fields: %v", decoded)
	}
	outputs := decoded["outputs"].([]interface{})
	first := outputs[0].(map[string]interface{})
	verdict := first["verdict"].(map[string]interface{})
	if verdict["is_valid"] != true {
		t.Errorf("expected verdict shape, got %v", verdict)
	}
	second := outputs[1].(map[string]interface{})
	if _, ok := second["verdict"]; ok {
		t.Errorf("error output should have no verdict: %v", second)
	}
}

func TestRenderer_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatYAML).Report(sampleReport()); err != nil {
		t.Fatalf("Report: %v", err)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if decoded["run_id"] != "run-1" {
		t.Errorf("unexpected run_id %v", decoded["run_id"])
	}
	if strings.Contains(buf.String(), "content:") {
		t.Errorf("raw content should not appear in YAML:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "is_valid: true") {
		t.Errorf("expected verdict fields in YAML:\n%s", buf.String())
	}
}

func TestRenderer_Local(t *testing.T) {
	outputs := []executor.ToolOutput{
		{Tool: checks.NamePackageStructure, Verdict: checks.PackageStructure.Run("acme_fw_1.zip")},
		{Tool: checks.NameSecurityCompliance, Verdict: checks.SecurityCompliance.Run("acme_fw_1.zip")},
	}

	var buf bytes.Buffer
	if err := New(&buf, FormatText).Local("acme_fw_1.zip", outputs); err != nil {
		t.Fatalf("Local: %v", err)
	}
	if !strings.Contains(buf.String(), "Vendor 'acme' is not trusted.") || !strings.Contains(buf.String(), "FAIL") {
		t.Errorf("unexpected local output:\n%s", buf.String())
	}

	buf.Reset()
	if err := New(&buf, FormatJSON).Local("acme_fw_1.zip", outputs); err != nil {
		t.Fatalf("Local: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["passed"] != false || decoded["file_name"] != "acme_fw_1.zip" {
		t.Errorf("unexpected local JSON: %v", decoded)
	}
}

func TestRenderer_Models(t *testing.T) {
	models := []llm.ModelInfo{{ID: "gpt-4o", Provider: "openai", ContextWindow: 128000, CanReason: false}}

	var buf bytes.Buffer
	if err := New(&buf, FormatText).Models(models); err != nil {
		t.Fatalf("Models: %v", err)
	}
	if !strings.Contains(buf.String(), "gpt-4o") || !strings.Contains(buf.String(), "ctx=128000") {
		t.Errorf("unexpected models output:\n%s", buf.String())
	}
}
