// Package llm defines the chat-completion boundary to the model backend.
package llm

import (
	"context"
	"errors"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ErrEmptyResponse is returned when the backend produced no usable content.
var ErrEmptyResponse = errors.New("empty response from model")

// Provider sends chat requests to a model backend.
type Provider interface {
	// Chat sends one request and waits for the complete reply.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Message is a role-tagged conversation entry.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a structured tool-call request. Arguments holds the raw,
// possibly malformed payload exactly as the backend produced it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// FunctionCall is the legacy single-function-call form.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition is the LLM-facing tool schema.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ChatRequest is one request to the backend.
type ChatRequest struct {
	Messages  []Message
	Tools     []ToolDefinition
	MaxTokens int
}

// ChatResponse is the backend reply.
type ChatResponse struct {
	Content      string
	ToolCalls    []ToolCall
	FunctionCall *FunctionCall // never set by FantasyAdapter
	StopReason   string
	InputTokens  int
	OutputTokens int
	Model        string
}
