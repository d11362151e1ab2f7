package llm

import (
	"context"
	"sync"
)

type mockReply struct {
	resp *ChatResponse
	err  error
}

// MockProvider is a scripted Provider for tests.
// Queued replies are consumed in order; once the queue is empty the
// default response is returned.
type MockProvider struct {
	mu       sync.Mutex
	queue    []mockReply
	fallback *ChatResponse
	requests []ChatRequest
}

// NewMockProvider creates a mock that answers with empty content.
func NewMockProvider() *MockProvider {
	return &MockProvider{fallback: &ChatResponse{}}
}

// SetResponse sets the default text reply.
func (m *MockProvider) SetResponse(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &ChatResponse{Content: content}
}

// QueueResponse appends a reply to the queue.
func (m *MockProvider) QueueResponse(resp *ChatResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{resp: resp})
}

// QueueError appends a failing reply to the queue.
func (m *MockProvider) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{err: err})
}

// Chat records the request and returns the next scripted reply.
func (m *MockProvider) Chat(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		if next.err != nil {
			return nil, next.err
		}
		resp := *next.resp
		return &resp, nil
	}
	resp := *m.fallback
	return &resp, nil
}

// Calls returns the number of requests received.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request received.
func (m *MockProvider) Requests() []ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request.
func (m *MockProvider) LastRequest() ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return ChatRequest{}
	}
	return m.requests[len(m.requests)-1]
}
