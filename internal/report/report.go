// Package report renders run reports as styled text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"gopkg.in/yaml.v3"

	"github.com/vinayprograms/vnfagent/internal/agent"
	"github.com/vinayprograms/vnfagent/internal/executor"
	"github.com/vinayprograms/vnfagent/internal/llm"
)

// Format selects the report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// defaultWidth is the wrap width for summary text.
const defaultWidth = 80

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown format %q (valid: text, json, yaml)", s)
}

// LocalReport is the result of running the checks without a model.
type LocalReport struct {
	FileName string                `json:"file_name" yaml:"file_name"`
	Passed   bool                  `json:"passed" yaml:"passed"`
	Outputs  []executor.ToolOutput `json:"outputs" yaml:"outputs"`
}

// Renderer writes reports to one writer.
type Renderer struct {
	w      io.Writer
	format Format
	width  int
	styles styles
}

// New creates a Renderer. Colors are used only when w is a terminal.
func New(w io.Writer, format Format) *Renderer {
	return &Renderer{
		w:      w,
		format: format,
		width:  defaultWidth,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
}

// SetWidth sets the wrap width for text output.
func (r *Renderer) SetWidth(width int) {
	if width > 0 {
		r.width = width
	}
}

// Report renders the final report of one run.
func (r *Renderer) Report(rep *agent.Report) error {
	switch r.format {
	case FormatJSON:
		return r.encodeJSON(rep)
	case FormatYAML:
		return r.encodeYAML(rep)
	}

	s := r.styles
	var b strings.Builder
	b.WriteString(s.divider + "\n")
	b.WriteString(s.title.Render("FINAL REPORT") + " " + r.kindLabel(rep.Kind) + "\n")
	r.field(&b, "Goal", rep.Goal)
	r.field(&b, "Model", fmt.Sprintf("%s (%s)", rep.Model, rep.Provider))
	r.field(&b, "Run", rep.RunID)

	if rep.Kind == agent.KindNothing {
		b.WriteString("\n" + s.warn.Render("No file detected; nothing to validate.") + "\n")
		b.WriteString(s.divider + "\n")
		_, err := io.WriteString(r.w, b.String())
		return err
	}

	plan := fmt.Sprintf("%s (%d checks)", rep.PlanSource, len(rep.Outputs))
	if rep.Dropped > 0 {
		plan += fmt.Sprintf(", %d unknown tool calls skipped", rep.Dropped)
	}
	r.field(&b, "Plan", plan)

	b.WriteString("\n" + s.title.Render("Checks") + "\n")
	r.writeOutputs(&b, rep.Outputs)
	b.WriteString(s.dim.Render("Checks result: ") + r.decision(rep.Passed()) + "\n")

	b.WriteString("\n" + s.title.Render("Summary") + "\n")
	b.WriteString(wordwrap.String(strings.TrimSpace(rep.Summary), r.width) + "\n")
	b.WriteString(s.divider + "\n")

	_, err := io.WriteString(r.w, b.String())
	return err
}

// Local renders the result of a model-free check run.
func (r *Renderer) Local(fileName string, outputs []executor.ToolOutput) error {
	passed := len(outputs) > 0
	for _, out := range outputs {
		if out.Outcome() != executor.OutcomePass {
			passed = false
		}
	}
	local := LocalReport{FileName: fileName, Passed: passed, Outputs: outputs}

	switch r.format {
	case FormatJSON:
		return r.encodeJSON(local)
	case FormatYAML:
		return r.encodeYAML(local)
	}

	s := r.styles
	var b strings.Builder
	b.WriteString(s.title.Render(fileName) + "\n")
	r.writeOutputs(&b, outputs)
	b.WriteString(s.dim.Render("Overall: ") + r.decision(passed) + "\n")

	_, err := io.WriteString(r.w, b.String())
	return err
}

// Models renders the model catalog.
func (r *Renderer) Models(models []llm.ModelInfo) error {
	switch r.format {
	case FormatJSON:
		return r.encodeJSON(models)
	case FormatYAML:
		return r.encodeYAML(models)
	}

	s := r.styles
	var b strings.Builder
	for _, m := range models {
		line := fmt.Sprintf("%-12s %-40s", m.Provider, m.ID)
		extra := fmt.Sprintf("ctx=%d in=$%.2f out=$%.2f", m.ContextWindow, m.CostPer1MIn, m.CostPer1MOut)
		if m.CanReason {
			extra += " reasoning"
		}
		b.WriteString(s.value.Render(line) + " " + s.dim.Render(extra) + "\n")
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) writeOutputs(b *strings.Builder, outputs []executor.ToolOutput) {
	s := r.styles
	if len(outputs) == 0 {
		b.WriteString("  " + s.dim.Render("(no checks ran)") + "\n")
		return
	}
	for _, out := range outputs {
		var mark, detail string
		switch out.Outcome() {
		case executor.OutcomePass:
			mark = s.success.Render("✓")
			detail = out.Verdict.Explanation()
		case executor.OutcomeFail:
			mark = s.failure.Render("✗")
			detail = out.Verdict.Explanation()
		default:
			mark = s.warn.Render("!")
			detail = "error: " + out.Error
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n", mark, s.tool.Render(fmt.Sprintf("%-30s", out.Tool)), detail))
	}
}

func (r *Renderer) decision(passed bool) string {
	if passed {
		return r.styles.success.Render("PASS")
	}
	return r.styles.failure.Render("FAIL")
}

func (r *Renderer) field(b *strings.Builder, label, value string) {
	b.WriteString(r.styles.dim.Render(fmt.Sprintf("%-7s", label+":")) + " " + r.styles.value.Render(value) + "\n")
}

func (r *Renderer) kindLabel(kind agent.Kind) string {
	switch kind {
	case agent.KindSummary:
		return r.styles.success.Render("[" + string(kind) + "]")
	case agent.KindDegraded:
		return r.styles.failure.Render("[" + string(kind) + "]")
	default:
		return r.styles.warn.Render("[" + string(kind) + "]")
	}
}

func (r *Renderer) encodeJSON(v interface{}) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) encodeYAML(v interface{}) error {
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
