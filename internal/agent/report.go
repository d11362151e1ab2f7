package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vinayprograms/vnfagent/internal/executor"
	"github.com/vinayprograms/vnfagent/internal/llm"
	"github.com/vinayprograms/vnfagent/internal/planner"
)

// Kind classifies how a run ended.
type Kind string

const (
	// KindSummary is a model-written summary.
	KindSummary Kind = "summary"
	// KindDegraded is a locally synthesized summary after the summarization call failed.
	KindDegraded Kind = "degraded"
	// KindNothing means the goal named no package; no checks ran.
	KindNothing Kind = "nothing"
)

// Timings records per-phase wall time in milliseconds.
type Timings struct {
	PlanMS      int64 `json:"plan_ms" yaml:"plan_ms"`
	ExecuteMS   int64 `json:"execute_ms" yaml:"execute_ms"`
	SummarizeMS int64 `json:"summarize_ms" yaml:"summarize_ms"`
	TotalMS     int64 `json:"total_ms" yaml:"total_ms"`
}

// Report is the result of one run.
type Report struct {
	RunID      string                `json:"run_id" yaml:"run_id"`
	Goal       string                `json:"goal" yaml:"goal"`
	Provider   string                `json:"provider" yaml:"provider"`
	Model      string                `json:"model" yaml:"model"`
	Kind       Kind                  `json:"kind" yaml:"kind"`
	PlanSource planner.Source        `json:"plan_source,omitempty" yaml:"plan_source,omitempty"`
	Dropped    int                   `json:"dropped_calls,omitempty" yaml:"dropped_calls,omitempty"`
	Outputs    []executor.ToolOutput `json:"outputs" yaml:"outputs"`
	Summary    string                `json:"summary,omitempty" yaml:"summary,omitempty"`
	Cause      string                `json:"degraded_cause,omitempty" yaml:"degraded_cause,omitempty"`
	Timings    Timings               `json:"timings" yaml:"timings"`
}

// Passed reports whether at least one check ran and every check passed.
func (r *Report) Passed() bool {
	if len(r.Outputs) == 0 {
		return false
	}
	for _, out := range r.Outputs {
		if out.Outcome() != executor.OutcomePass {
			return false
		}
	}
	return true
}

// rawToolMessage is one tool message as embedded in a degraded summary.
type rawToolMessage struct {
	ToolCallID string `json:"tool_call_id"`
	Role       string `json:"role"`
	Name       string `json:"name"`
	Content    string `json:"content"`
}

// DegradedSummary renders the raw tool outputs after a failed summarization call.
func DegradedSummary(cause error, outputs []executor.ToolOutput) string {
	raw := make([]rawToolMessage, 0, len(outputs))
	for _, out := range outputs {
		raw = append(raw, rawToolMessage{
			ToolCallID: out.CallID,
			Role:       llm.RoleTool,
			Name:       out.Tool,
			Content:    out.Content,
		})
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	data := "[]"
	if err := enc.Encode(raw); err == nil {
		data = strings.TrimSuffix(buf.String(), "\n")
	}
	return fmt.Sprintf("LLM summary failed: %v\nRaw tool outputs: %s", cause, data)
}

func millis(d time.Duration) int64 {
	return d.Milliseconds()
}
