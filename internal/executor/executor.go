// Package executor runs a normalized plan against the check registry.
package executor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vinayprograms/vnfagent/internal/checks"
	"github.com/vinayprograms/vnfagent/internal/logging"
	"github.com/vinayprograms/vnfagent/internal/planner"
	"github.com/vinayprograms/vnfagent/internal/telemetry"
)

// Check outcomes recorded on spans and counters.
const (
	OutcomePass  = "pass"
	OutcomeFail  = "fail"
	OutcomeError = "error"
)

// ToolOutput binds one planned call to its result.
type ToolOutput struct {
	CallID    string                 `json:"tool_call_id" yaml:"tool_call_id"`
	Tool      string                 `json:"name" yaml:"name"`
	Arguments map[string]interface{} `json:"args" yaml:"args"`
	Verdict   checks.Verdict         `json:"verdict,omitempty" yaml:"verdict,omitempty"`
	Error     string                 `json:"error,omitempty" yaml:"error,omitempty"`
	Content   string                 `json:"content" yaml:"-"`
}

// Outcome reports pass, fail or error.
func (o ToolOutput) Outcome() string {
	switch {
	case o.Verdict == nil:
		return OutcomeError
	case o.Verdict.Passed():
		return OutcomePass
	default:
		return OutcomeFail
	}
}

// errorPayload is the content of a failed invocation.
type errorPayload struct {
	Error string                 `json:"error"`
	Args  map[string]interface{} `json:"args"`
}

// Executor invokes planned checks one at a time, in plan order.
type Executor struct {
	logger  *logging.Logger
	metrics *telemetry.Metrics

	// Callbacks
	OnToolResult func(index, total int, out ToolOutput)
}

// New creates an Executor. Both arguments may be nil.
func New(logger *logging.Logger, metrics *telemetry.Metrics) *Executor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Executor{
		logger:  logger.WithComponent("executor"),
		metrics: metrics,
	}
}

// Execute runs every call in the plan and returns one output per call.
// Invocation errors become error-shaped outputs; Execute never fails.
func (e *Executor) Execute(ctx context.Context, plan *planner.Plan) []ToolOutput {
	if plan == nil {
		return nil
	}

	outputs := make([]ToolOutput, 0, len(plan.Calls))
	for i, call := range plan.Calls {
		out := e.invoke(ctx, call)
		outputs = append(outputs, out)
		if e.OnToolResult != nil {
			e.OnToolResult(i+1, len(plan.Calls), out)
		}
	}

	e.logger.Info("all tool invocations completed", map[string]interface{}{
		"outputs": len(outputs),
	})
	return outputs
}

func (e *Executor) invoke(ctx context.Context, call planner.Call) ToolOutput {
	name := call.Check.Name()
	fileName, _ := call.Arguments[checks.ArgFileName].(string)

	ctx, span := startCheckSpan(ctx, call.ID, name, fileName)
	e.logger.ToolCall(name, fileName)
	start := time.Now()

	out := ToolOutput{
		CallID:    call.ID,
		Tool:      name,
		Arguments: call.Arguments,
	}

	verdict, err := call.Check.Invoke(call.Arguments)
	if err != nil {
		out.Error = err.Error()
		out.Content = marshalContent(errorPayload{Error: out.Error, Args: call.Arguments})
	} else {
		out.Verdict = verdict
		out.Content = marshalContent(verdict)
	}

	e.logger.ToolResult(name, time.Since(start), err)
	e.metrics.RecordCheck(ctx, name, out.Outcome())
	endCheckSpan(span, out.Outcome(), err)
	return out
}

func marshalContent(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(errorPayload{Error: err.Error(), Args: map[string]interface{}{}})
	}
	return string(data)
}
