package tools

import (
	"context"
	"io"
	"sync"
)

// MockPlayer is a scripted Player for testing. Ask returns Answers in
// order and io.EOF once they run out.
type MockPlayer struct {
	Answers []string

	// Track calls for testing
	Narrations   []string
	Declarations []string
	Notices      []string
	Prompts      []string

	mu sync.Mutex // protects all fields above
}

// NewMockPlayer creates a player that will give the listed answers.
func NewMockPlayer(answers ...string) *MockPlayer {
	return &MockPlayer{Answers: answers}
}

func (m *MockPlayer) Narrate(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Narrations = append(m.Narrations, text)
}

func (m *MockPlayer) Declare(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Declarations = append(m.Declarations, text)
}

func (m *MockPlayer) Notify(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notices = append(m.Notices, text)
}

func (m *MockPlayer) Ask(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(m.Answers) == 0 {
		return "", io.EOF
	}
	a := m.Answers[0]
	m.Answers = m.Answers[1:]
	return a, nil
}
