package pubsub

import (
	"context"
	"sync"
)

// Mock is a pubsub client that records published events and never delivers them
type Mock struct {
	mu     sync.Mutex
	events map[string][]Event
}

// NewMock returns a new mock pubsub client
func NewMock() *Mock {
	return &Mock{events: make(map[string][]Event)}
}

// Publish mock
func (m *Mock) Publish(_ context.Context, topic string, payload Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[topic] = append(m.events[topic], payload)
	return nil
}

// Subscribe mock
func (m *Mock) Subscribe(_ context.Context, _ string, _ EventHandler) {}

// Published returns the events published on topic
func (m *Mock) Published(topic string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events[topic]...)
}
