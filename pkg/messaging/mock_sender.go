package messaging

import (
	"context"
	"sync"
)

// MockMessageSender records sent messages for testing.
type MockMessageSender struct {
	mu       sync.Mutex
	messages []*ExecutionMessage
}

// NewMockMessageSender creates a new MockMessageSender.
func NewMockMessageSender() *MockMessageSender {
	return &MockMessageSender{}
}

// SendExecutionMessage records the message.
func (m *MockMessageSender) SendExecutionMessage(ctx context.Context, msg *ExecutionMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far.
func (m *MockMessageSender) Messages() []*ExecutionMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ExecutionMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Close does nothing.
func (m *MockMessageSender) Close() error {
	return nil
}

// Ensure MockMessageSender implements MessageSender
var _ MessageSender = (*MockMessageSender)(nil)
