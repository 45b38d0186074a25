package events

import (
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/bug-sentinel/webviz/internal/config"
	"github.com/bug-sentinel/webviz/internal/logging"
)

var natsLog = logging.Global().With("component", "events.nats")

// natsSubscriber receives ensemble events over core NATS. Invalidation
// is advisory, so a plain subscription without JetStream persistence is
// enough; a missed event only means a cache entry lives until its TTL.
type natsSubscriber struct {
	conn    *nats.Conn
	subject string
	sub     *nats.Subscription
	mu      sync.Mutex
}

func newNATSSubscriber(cfg config.EventsConfig) (*natsSubscriber, error) {
	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &natsSubscriber{
		conn:    conn,
		subject: cfg.Subject,
	}, nil
}

func (s *natsSubscriber) Subscribe(handler EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		return fmt.Errorf("already subscribed to subject: %s", s.subject)
	}

	sub, err := s.conn.Subscribe(s.subject, func(msg *nats.Msg) {
		event, err := decodeEvent(msg.Data)
		if err != nil {
			natsLog.Warn("Discarding malformed event", "error", err)
			return
		}
		if err := handler(event); err != nil {
			natsLog.Warn("Event handler failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", s.subject, err)
	}

	s.sub = sub
	return nil
}

func (s *natsSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		_ = s.sub.Unsubscribe()
		s.sub = nil
	}
	s.conn.Close()
	return nil
}
