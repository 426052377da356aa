package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/qui-ball/virtualGM/pkg/chat"
)

// MockLLM is a scripted implementation of LLMService for testing.
// Responses are returned in order; ChatFunc, when set, takes precedence.
type MockLLM struct {
	InitModelFunc func(ctx context.Context, modelName string) error
	ChatFunc      func(ctx context.Context, req *chat.ModelRequest) (*chat.ModelResponse, error)

	Responses []*chat.ModelResponse

	// Track calls for testing
	InitModelCalls []string
	ChatCalls      []*chat.ModelRequest

	mu sync.Mutex // protects all fields above
}

// NewMockLLM creates a mock that replays responses in order
func NewMockLLM(responses ...*chat.ModelResponse) *MockLLM {
	return &MockLLM{
		Responses:      responses,
		InitModelCalls: make([]string, 0),
		ChatCalls:      make([]*chat.ModelRequest, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLM) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

// Chat returns the next scripted response
func (m *MockLLM) Chat(ctx context.Context, req *chat.ModelRequest) (*chat.ModelResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChatCalls = append(m.ChatCalls, req)

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}

	n := len(m.ChatCalls)
	if n > len(m.Responses) {
		return nil, fmt.Errorf("mock LLM: no scripted response for call %d", n)
	}
	return m.Responses[n-1], nil
}

// SetChatError sets up the mock to return an error on Chat
func (m *MockLLM) SetChatError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, req *chat.ModelRequest) (*chat.ModelResponse, error) {
		return nil, err
	}
}

// GetCalls returns a copy of the recorded requests
func (m *MockLLM) GetCalls() []*chat.ModelRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]*chat.ModelRequest, len(m.ChatCalls))
	copy(calls, m.ChatCalls)
	return calls
}

// Reset clears all call tracking
func (m *MockLLM) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.ChatCalls = make([]*chat.ModelRequest, 0)
}
