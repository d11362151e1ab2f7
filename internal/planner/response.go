package planner

import (
	"github.com/vinayprograms/vnfagent/internal/llm"
)

// ResponseKind tags the shape of a planning reply.
type ResponseKind int

const (
	// ResponseToolCalls is a non-empty list of structured tool calls.
	ResponseToolCalls ResponseKind = iota
	// ResponseFunctionCall is a single legacy function call.
	ResponseFunctionCall
	// ResponseDeclined is a reply without any tool call.
	ResponseDeclined
	// ResponseUnavailable means no planning call was made.
	ResponseUnavailable
	// ResponseFailed means the planning call returned an error.
	ResponseFailed
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseToolCalls:
		return "tool_calls"
	case ResponseFunctionCall:
		return "function_call"
	case ResponseDeclined:
		return "declined"
	case ResponseUnavailable:
		return "unavailable"
	case ResponseFailed:
		return "failed"
	}
	return "unknown"
}

// Response is the planning reply as seen at the backend boundary.
type Response struct {
	Kind         ResponseKind
	ToolCalls    []llm.ToolCall
	FunctionCall *llm.FunctionCall
	Content      string
	Err          error
}

// FromChat classifies a backend reply.
func FromChat(resp *llm.ChatResponse, err error) Response {
	if err != nil {
		return Response{Kind: ResponseFailed, Err: err}
	}
	if resp == nil {
		return Response{Kind: ResponseFailed, Err: llm.ErrEmptyResponse}
	}
	switch {
	case len(resp.ToolCalls) > 0:
		return Response{Kind: ResponseToolCalls, ToolCalls: resp.ToolCalls, Content: resp.Content}
	case resp.FunctionCall != nil:
		return Response{Kind: ResponseFunctionCall, FunctionCall: resp.FunctionCall, Content: resp.Content}
	default:
		return Response{Kind: ResponseDeclined, Content: resp.Content}
	}
}

// Unavailable is the reply used when the backend cannot call tools.
func Unavailable() Response {
	return Response{Kind: ResponseUnavailable}
}

// requests flattens the reply into raw tool-call requests.
func (r Response) requests() []llm.ToolCall {
	switch r.Kind {
	case ResponseToolCalls:
		return r.ToolCalls
	case ResponseFunctionCall:
		if r.FunctionCall == nil {
			return nil
		}
		return []llm.ToolCall{{Name: r.FunctionCall.Name, Arguments: r.FunctionCall.Arguments}}
	}
	return nil
}

// fallbackReason describes why the model plan was not used.
func (r Response) fallbackReason() string {
	switch r.Kind {
	case ResponseFailed:
		if r.Err != nil {
			return "planning call failed: " + r.Err.Error()
		}
		return "planning call failed"
	case ResponseUnavailable:
		return "provider lacks tool calling"
	default:
		return "no tool calls returned by model"
	}
}
