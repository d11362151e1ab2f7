// Package agent drives the plan, execute and summarize phases of a
// VNF package pre-validation run.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vinayprograms/vnfagent/internal/executor"
	"github.com/vinayprograms/vnfagent/internal/llm"
	"github.com/vinayprograms/vnfagent/internal/logging"
	"github.com/vinayprograms/vnfagent/internal/planner"
	"github.com/vinayprograms/vnfagent/internal/telemetry"
)

// ErrEmptyGoal is returned by Run for a blank goal.
var ErrEmptyGoal = errors.New("goal is empty")

// Phase names, also used as span suffixes.
const (
	PhasePlan      = "plan"
	PhaseExecute   = "execute"
	PhaseSummarize = "summarize"
)

// phaseCount is the number of phases reported through OnPhase.
const phaseCount = 3

// Options configures an Agent.
type Options struct {
	Provider     llm.Provider
	ProviderName string
	Model        string
	ToolsEnabled bool // ask the backend for structured tool calls
	Logger       *logging.Logger
	Metrics      *telemetry.Metrics
}

// Agent runs validation goals against one backend.
type Agent struct {
	provider     llm.Provider
	providerName string
	model        string
	toolsEnabled bool
	logger       *logging.Logger
	metrics      *telemetry.Metrics
	normalizer   *planner.Normalizer
	executor     *executor.Executor
	newRunID     func() string

	// Callbacks
	OnPhase      func(index, total int, phase string)
	OnToolResult func(index, total int, out executor.ToolOutput)
}

// New creates an Agent.
func New(opts Options) (*Agent, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	a := &Agent{
		provider:     opts.Provider,
		providerName: opts.ProviderName,
		model:        opts.Model,
		toolsEnabled: opts.ToolsEnabled,
		logger:       logger.WithComponent("agent"),
		metrics:      opts.Metrics,
		normalizer:   planner.New(logger),
		executor:     executor.New(logger, opts.Metrics),
		newRunID:     uuid.NewString,
	}
	a.executor.OnToolResult = func(index, total int, out executor.ToolOutput) {
		if a.OnToolResult != nil {
			a.OnToolResult(index, total, out)
		}
	}
	return a, nil
}

// Run validates the package named in goal.
// Backend failures never surface as errors; they degrade the report.
func (a *Agent) Run(ctx context.Context, goal string) (*Report, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, ErrEmptyGoal
	}

	start := time.Now()
	report := &Report{
		RunID:    a.newRunID(),
		Goal:     goal,
		Provider: a.providerName,
		Model:    a.model,
		Outputs:  []executor.ToolOutput{},
	}
	logger := a.logger.WithTraceID(report.RunID)

	ctx, span := a.startRunSpan(ctx, report.RunID, goal)
	defer func() {
		report.Timings.TotalMS = millis(time.Since(start))
		a.metrics.RecordRun(ctx, string(report.Kind))
		logger.RunComplete(string(report.Kind), len(report.Outputs), time.Since(start))
		a.endRunSpan(span, report)
	}()

	logger.RunStart(goal, a.model, a.providerName)

	// Plan
	a.phase(1, PhasePlan)
	resp := a.plan(ctx, logger, goal, &report.Timings)

	// Execute
	a.phase(2, PhaseExecute)
	plan, ok := a.execute(ctx, logger, goal, resp, report)
	if !ok {
		report.Kind = KindNothing
		return report, nil
	}

	// Summarize
	a.phase(3, PhaseSummarize)
	a.summarize(ctx, logger, plan, report)
	return report, nil
}

func (a *Agent) phase(index int, name string) {
	if a.OnPhase != nil {
		a.OnPhase(index, phaseCount, name)
	}
}

// plan requests tool selection from the backend, if it can call tools.
func (a *Agent) plan(ctx context.Context, logger *logging.Logger, goal string, timings *Timings) planner.Response {
	ctx, span := a.startPhaseSpan(ctx, PhasePlan)
	logger.PhaseStart(PhasePlan)
	start := time.Now()

	var resp planner.Response
	if a.toolsEnabled {
		chat, err := a.provider.Chat(ctx, llm.ChatRequest{
			Messages: planningMessages(goal),
			Tools:    toolDefinitions(),
		})
		resp = planner.FromChat(chat, err)
		if err != nil {
			logger.Error("planning call failed; falling back", map[string]interface{}{
				"error": err.Error(),
			})
		}
	} else {
		logger.Info("provider lacks tool calling; using heuristic fallback")
		resp = planner.Unavailable()
	}

	elapsed := time.Since(start)
	timings.PlanMS = millis(elapsed)
	logger.PhaseComplete(PhasePlan, elapsed, resp.Kind.String())
	a.endPhaseSpan(span, map[string]string{"plan.response": resp.Kind.String()}, resp.Err)
	return resp
}

// execute normalizes the reply and runs the plan. It reports false when
// there is nothing to validate.
func (a *Agent) execute(ctx context.Context, logger *logging.Logger, goal string, resp planner.Response, report *Report) (*planner.Plan, bool) {
	ctx, span := a.startPhaseSpan(ctx, PhaseExecute)
	logger.PhaseStart(PhaseExecute)
	start := time.Now()

	plan, err := a.normalizer.Normalize(goal, resp)
	if err != nil {
		// ErrNothingToValidate is the only normalization error.
		logger.Info("nothing to validate", map[string]interface{}{"reason": err.Error()})
		elapsed := time.Since(start)
		report.Timings.ExecuteMS = millis(elapsed)
		logger.PhaseComplete(PhaseExecute, elapsed, string(KindNothing))
		a.endPhaseSpan(span, map[string]string{"plan.result": string(KindNothing)}, nil)
		return nil, false
	}

	if plan.Source == planner.SourceFallback {
		a.metrics.RecordFallback(ctx, resp.Kind.String())
	}
	report.PlanSource = plan.Source
	report.Dropped = plan.Dropped

	report.Outputs = a.executor.Execute(ctx, plan)

	elapsed := time.Since(start)
	report.Timings.ExecuteMS = millis(elapsed)
	logger.PhaseComplete(PhaseExecute, elapsed, fmt.Sprintf("%d outputs", len(report.Outputs)))
	a.endPhaseSpan(span, map[string]string{
		"plan.source": string(plan.Source),
		"plan.calls":  fmt.Sprintf("%d", len(plan.Calls)),
	}, nil)
	return plan, true
}

// summarize asks the backend for the final report, degrading on failure.
func (a *Agent) summarize(ctx context.Context, logger *logging.Logger, plan *planner.Plan, report *Report) {
	ctx, span := a.startPhaseSpan(ctx, PhaseSummarize)
	logger.PhaseStart(PhaseSummarize)
	start := time.Now()

	chat, err := a.provider.Chat(ctx, llm.ChatRequest{
		Messages: summaryMessages(report.Goal, plan, report.Outputs),
	})
	if err == nil && (chat == nil || strings.TrimSpace(chat.Content) == "") {
		err = llm.ErrEmptyResponse
	}

	if err != nil {
		logger.Error("summary call failed; reporting raw outputs", map[string]interface{}{
			"error": err.Error(),
		})
		report.Kind = KindDegraded
		report.Cause = err.Error()
		report.Summary = DegradedSummary(err, report.Outputs)
	} else {
		report.Kind = KindSummary
		report.Summary = chat.Content
	}

	elapsed := time.Since(start)
	report.Timings.SummarizeMS = millis(elapsed)
	logger.PhaseComplete(PhaseSummarize, elapsed, string(report.Kind))
	a.endPhaseSpan(span, map[string]string{"summary.kind": string(report.Kind)}, err)
}
