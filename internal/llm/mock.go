package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response string
	Err      error

	mu         sync.Mutex
	Calls      int
	LastSystem string
	LastUser   string
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastSystem = systemPrompt
	m.LastUser = userPrompt
	return m.Response, m.Err
}

// CallCount es seguro para usar desde tests concurrentes.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}
