package agent

import (
	"encoding/json"

	"github.com/vinayprograms/vnfagent/internal/checks"
	"github.com/vinayprograms/vnfagent/internal/executor"
	"github.com/vinayprograms/vnfagent/internal/llm"
	"github.com/vinayprograms/vnfagent/internal/planner"
)

const planningSystemPrompt = "You are a pre-validation agent for Virtual Network Function (VNF) packages. " +
	"Decide which tools to invoke based ONLY on the user goal. " +
	"Always provide tool calls when a file name is present. " +
	"If the package is not a .zip still validate structure, security and resource requirements."

const summarySystemPrompt = "Summarize the validation results concisely with pass/fail per check and an overall decision."

// toolDefinitions returns the schema of every registered check.
func toolDefinitions() []llm.ToolDefinition {
	all := checks.All()
	defs := make([]llm.ToolDefinition, 0, len(all))
	for _, c := range all {
		defs = append(defs, llm.ToolDefinition{
			Name:        c.Name(),
			Description: c.Description(),
			Parameters:  c.Parameters(),
		})
	}
	return defs
}

func planningMessages(goal string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: planningSystemPrompt},
		{Role: llm.RoleUser, Content: "User goal: " + goal},
	}
}

// summaryMessages builds the summarization conversation. The assistant turn
// carries the planning text and the executed calls so every tool message
// answers a call in the same conversation.
func summaryMessages(goal string, plan *planner.Plan, outputs []executor.ToolOutput) []llm.Message {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: summarySystemPrompt},
		{Role: llm.RoleUser, Content: goal},
	}

	if plan != nil && (plan.Content != "" || len(plan.Calls) > 0) {
		assistant := llm.Message{Role: llm.RoleAssistant, Content: plan.Content}
		for _, call := range plan.Calls {
			args, err := json.Marshal(call.Arguments)
			if err != nil {
				args = []byte("{}")
			}
			assistant.ToolCalls = append(assistant.ToolCalls, llm.ToolCall{
				ID:        call.ID,
				Name:      call.Check.Name(),
				Arguments: string(args),
			})
		}
		messages = append(messages, assistant)
	}

	for _, out := range outputs {
		messages = append(messages, llm.Message{
			Role:       llm.RoleTool,
			ToolCallID: out.CallID,
			Name:       out.Tool,
			Content:    out.Content,
		})
	}
	return messages
}
