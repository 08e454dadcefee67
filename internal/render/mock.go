package render

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is an in-memory Client for tests and local runs without a
// rendering backend. Each submission resolves after a configurable
// number of polls.
type MockClient struct {
	mu      sync.Mutex
	nextID  int
	pending map[string]*mockRender

	// PollsUntilDone is how many polls a render stays in progress
	// before resolving. Zero resolves on the first poll.
	PollsUntilDone int

	// FailSubmit makes Submit return an error.
	FailSubmit error

	// FailRender resolves every render as failed with this message.
	FailRender string
}

type mockRender struct {
	req   Request
	polls int
}

// NewMockClient creates a mock rendering backend.
func NewMockClient() *MockClient {
	return &MockClient{pending: make(map[string]*mockRender)}
}

// Submit registers the request and returns a synthetic render ID.
func (m *MockClient) Submit(_ context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSubmit != nil {
		return "", m.FailSubmit
	}
	m.nextID++
	id := fmt.Sprintf("mock-render-%d", m.nextID)
	m.pending[id] = &mockRender{req: req}
	return id, nil
}

// Poll advances the render and reports its status.
func (m *MockClient) Poll(_ context.Context, renderID string) (PollResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.pending[renderID]
	if !ok {
		return PollResult{}, fmt.Errorf("unknown render %s", renderID)
	}

	if r.polls < m.PollsUntilDone {
		r.polls++
		return PollResult{Status: StatusRendering}, nil
	}

	if m.FailRender != "" {
		return PollResult{Status: StatusFailed, Error: m.FailRender}, nil
	}
	return PollResult{
		Status:   StatusDone,
		AssetURL: fmt.Sprintf("https://assets.example.com/%s/%s", r.req.Kind, renderID),
	}, nil
}
