package events

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemorySubscriber is an in-process broker used in tests and local
// development. Publish delivers synchronously to the registered handler.
type MemorySubscriber struct {
	subject string
	handler EventHandler
	mu      sync.Mutex
	closed  bool
}

// NewMemorySubscriber creates an in-memory subscriber for a subject
func NewMemorySubscriber(subject string) *MemorySubscriber {
	return &MemorySubscriber{subject: subject}
}

func (s *MemorySubscriber) Subscribe(handler EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handler != nil {
		return fmt.Errorf("already subscribed to subject: %s", s.subject)
	}
	s.handler = handler
	return nil
}

// Publish delivers an event to the subscribed handler
func (s *MemorySubscriber) Publish(event EnsembleEvent) error {
	s.mu.Lock()
	handler := s.handler
	closed := s.closed
	s.mu.Unlock()

	if closed || handler == nil {
		return nil
	}
	return handler(event)
}

// PublishRaw delivers an encoded payload, exercising the same decode
// path the broker backends use
func (s *MemorySubscriber) PublishRaw(data []byte) error {
	event, err := decodeEvent(data)
	if err != nil {
		return err
	}
	return s.Publish(event)
}

// Encode marshals an event the way publishers put it on the wire
func Encode(event EnsembleEvent) ([]byte, error) {
	return json.Marshal(event)
}

func (s *MemorySubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.handler = nil
	return nil
}
