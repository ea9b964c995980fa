package llm

import (
	"context"
	"sync"
)

// MockResponse is one scripted outcome of MockProvider.Generate.
type MockResponse struct {
	Text  string
	Usage Usage
	Err   error
}

// MockProvider replays scripted responses in order and remembers the
// requests it was given. Once the script runs out every call fails as
// unavailable. It backs the "mock" provider setting and tests.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	if len(m.script) == 0 {
		return nil, &Error{Kind: KindUnavailable, Provider: ProviderMock}
	}
	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Text: next.Text, Usage: next.Usage, Model: "mock", Stop: StopEnd}, nil
}

// Queue appends to the script.
func (m *MockProvider) Queue(r ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, r...)
}

// CallCount is len(Calls), read under the lock.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
