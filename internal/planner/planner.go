// Package planner turns a planning reply into an ordered list of check
// invocations, substituting a heuristic plan when the model gives none.
package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/vinayprograms/vnfagent/internal/checks"
	"github.com/vinayprograms/vnfagent/internal/llm"
	"github.com/vinayprograms/vnfagent/internal/logging"
)

// ErrNothingToValidate ends a run whose goal names no package file.
var ErrNothingToValidate = errors.New("no file detected; nothing to validate")

// packagePattern matches a filename-like token with a known archive extension.
// Word characters include any Unicode letter or digit.
var packagePattern = regexp.MustCompile(`(?i)([\p{L}\p{N}_.-]+\.(zip|rar|tar\.gz))`)

// Source records where a plan came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Call is one normalized check invocation.
type Call struct {
	ID           string
	Check        checks.Check
	RawArguments string
	Arguments    map[string]interface{}
}

// Plan is the ordered list of calls to execute.
type Plan struct {
	Source  Source
	Calls   []Call
	Content string // planning message text, if any
	Dropped int    // calls naming unknown tools
}

// ExtractFileName returns the first package file name found in goal.
func ExtractFileName(goal string) (string, bool) {
	m := packagePattern.FindStringSubmatch(goal)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Normalizer converts planning replies into plans.
type Normalizer struct {
	logger *logging.Logger
	newID  func() string
}

// New creates a Normalizer.
func New(logger *logging.Logger) *Normalizer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Normalizer{
		logger: logger.WithComponent("planner"),
		newID:  func() string { return "call_" + uuid.NewString() },
	}
}

// Normalize builds a plan for goal from a planning reply.
// It returns ErrNothingToValidate when the model gave no calls and no
// package file name can be recovered from the goal.
func (n *Normalizer) Normalize(goal string, resp Response) (*Plan, error) {
	plan := &Plan{Content: resp.Content}

	requests := resp.requests()
	if len(requests) > 0 {
		plan.Source = SourceModel
	} else {
		n.logger.Fallback(resp.fallbackReason())
		fileName, ok := ExtractFileName(goal)
		if !ok {
			return nil, ErrNothingToValidate
		}
		plan.Source = SourceFallback
		requests = fallbackRequests(fileName)
	}

	for _, req := range requests {
		check, ok := checks.Lookup(req.Name)
		if !ok {
			n.logger.Warn("unknown tool returned by model; skipping", map[string]interface{}{
				"tool": req.Name,
				"call": req.ID,
			})
			plan.Dropped++
			continue
		}

		id := req.ID
		if id == "" {
			id = n.newID()
		}

		args := n.parseArguments(req.Arguments)
		if _, has := args[checks.ArgFileName]; !has {
			if fileName, found := ExtractFileName(goal); found {
				args[checks.ArgFileName] = fileName
			}
		}

		plan.Calls = append(plan.Calls, Call{
			ID:           id,
			Check:        check,
			RawArguments: req.Arguments,
			Arguments:    args,
		})
	}

	n.logger.Info("plan created", map[string]interface{}{
		"source":  string(plan.Source),
		"calls":   len(plan.Calls),
		"dropped": plan.Dropped,
	})
	return plan, nil
}

// parseArguments decodes a JSON object payload. Anything else yields an
// empty mapping.
func (n *Normalizer) parseArguments(raw string) map[string]interface{} {
	if strings.TrimSpace(raw) == "" {
		return map[string]interface{}{}
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		if err == nil {
			err = fmt.Errorf("not a JSON object")
		}
		n.logger.Warn("failed to parse tool arguments", map[string]interface{}{
			"error": err.Error(),
			"raw":   raw,
		})
		return map[string]interface{}{}
	}
	return args
}

// fallbackRequests synthesizes one call per registered check.
func fallbackRequests(fileName string) []llm.ToolCall {
	payload, _ := json.Marshal(map[string]string{checks.ArgFileName: fileName})
	all := checks.All()
	requests := make([]llm.ToolCall, 0, len(all))
	for i, c := range all {
		requests = append(requests, llm.ToolCall{
			ID:        fmt.Sprintf("fallback_%d", i+1),
			Name:      c.Name(),
			Arguments: string(payload),
		})
	}
	return requests
}

// ForFile builds the full check plan for an explicit file name, skipping
// goal extraction. It backs model-free checking.
func ForFile(fileName string) *Plan {
	plan := &Plan{Source: SourceFallback}
	for _, req := range fallbackRequests(fileName) {
		check, _ := checks.Lookup(req.Name)
		plan.Calls = append(plan.Calls, Call{
			ID:           req.ID,
			Check:        check,
			RawArguments: req.Arguments,
			Arguments:    map[string]interface{}{checks.ArgFileName: fileName},
		})
	}
	return plan
}
