package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"gopkg.in/yaml.v3"

	"github.com/vinayprograms/vnfagent/internal/agent"
	"github.com/vinayprograms/vnfagent/internal/executor"
	"github.com/vinayprograms/vnfagent/internal/report"
)

// phaseLabels are the progress lines printed at the start of each phase.
var phaseLabels = map[string]string{
	agent.PhasePlan:      "Planning...",
	agent.PhaseExecute:   "Executing...",
	agent.PhaseSummarize: "Summarizing...",
}

// Run validates each goal in turn.
func (c *RunCmd) Run(g *Globals) error {
	goals := c.Goals
	if c.GoalsFile != "" {
		fromFile, err := loadGoals(c.GoalsFile)
		if err != nil {
			return err
		}
		goals = append(goals, fromFile...)
	}
	if len(goals) == 0 {
		goals = exampleGoals
	}
	return runGoals(g, goals)
}

// goalsFile is the YAML layout accepted by --goals-file.
type goalsFile struct {
	Goals []string `yaml:"goals"`
}

// loadGoals reads goals from a YAML file with a top-level goals list.
func loadGoals(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read goals file: %w", err)
	}
	var f goalsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse goals file %s: %w", path, err)
	}
	if len(f.Goals) == 0 {
		return nil, fmt.Errorf("goals file %s lists no goals", path)
	}
	return f.Goals, nil
}

// Run validates the example goals.
func (c *ExamplesCmd) Run(g *Globals) error {
	return runGoals(g, exampleGoals)
}

// runGoals runs goals sequentially and renders one report per goal.
// An empty goal is reported and skipped; the other goals still run.
func runGoals(g *Globals, goals []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt, err := setupRuntime(ctx, g)
	if err != nil {
		return err
	}
	defer rt.close()

	a, err := rt.newAgent(ctx)
	if err != nil {
		return err
	}
	attachProgress(a, os.Stderr)

	renderer, err := newRenderer(g, os.Stdout)
	if err != nil {
		return err
	}

	var failed int
	for i, goal := range goals {
		fmt.Fprintf(os.Stderr, "\n=== Goal %d/%d: %s\n", i+1, len(goals), goal)
		rep, err := a.Run(ctx, goal)
		if err != nil {
			if errors.Is(err, agent.ErrEmptyGoal) {
				fmt.Fprintf(os.Stderr, "skipping: %v\n", err)
				failed++
				continue
			}
			return err
		}
		if err := renderer.Report(rep); err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d goals skipped", failed, len(goals))
	}
	return nil
}

// attachProgress prints phase and check progress to w.
func attachProgress(a *agent.Agent, w io.Writer) {
	a.OnPhase = func(index, total int, phase string) {
		fmt.Fprintln(w, phaseLine(index, total, phase))
	}
	a.OnToolResult = func(index, total int, out executor.ToolOutput) {
		fmt.Fprintln(w, progressLine(index, total, out))
	}
}

// phaseLine formats the progress line for the start of a phase.
func phaseLine(index, total int, phase string) string {
	return fmt.Sprintf("[%d/%d] %s", index, total, phaseLabels[phase])
}

// progressLine formats one check result for the progress stream.
func progressLine(index, total int, out executor.ToolOutput) string {
	switch out.Outcome() {
	case executor.OutcomeError:
		return fmt.Sprintf("  (%d/%d) %s: error: %s", index, total, out.Tool, out.Error)
	default:
		return fmt.Sprintf("  (%d/%d) %s: %s - %s", index, total, out.Tool, out.Outcome(), out.Verdict.Explanation())
	}
}

// newRenderer builds the report renderer for the selected format.
func newRenderer(g *Globals, w io.Writer) (*report.Renderer, error) {
	format, err := report.ParseFormat(g.Format)
	if err != nil {
		return nil, err
	}
	r := report.New(w, format)
	r.SetWidth(g.Width)
	return r, nil
}
