package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/bug-sentinel/webviz/internal/config"
	"github.com/bug-sentinel/webviz/internal/logging"
)

var kafkaLog = logging.Global().With("component", "events.kafka")

// kafkaSubscriber receives ensemble events from a Kafka topic using a
// consumer group
type kafkaSubscriber struct {
	brokers []string
	groupID string
	topic   string

	reader *kafka.Reader
	cancel context.CancelFunc
	mu     sync.Mutex
}

func newKafkaSubscriber(cfg config.EventsConfig) (*kafkaSubscriber, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}

	groupID := cfg.GroupID
	if groupID == "" {
		groupID = "webviz-api"
	}

	return &kafkaSubscriber{
		brokers: cfg.Brokers,
		groupID: groupID,
		topic:   cfg.Subject,
	}, nil
}

func (s *kafkaSubscriber) Subscribe(handler EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reader != nil {
		return fmt.Errorf("already subscribed to topic: %s", s.topic)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        s.brokers,
		GroupID:        s.groupID,
		Topic:          s.topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.reader = reader
	s.cancel = cancel

	go s.consume(ctx, reader, handler)
	return nil
}

func (s *kafkaSubscriber) consume(ctx context.Context, reader *kafka.Reader, handler EventHandler) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		event, err := decodeEvent(msg.Value)
		if err != nil {
			kafkaLog.Warn("Discarding malformed event", "error", err)
			continue
		}
		if err := handler(event); err != nil {
			kafkaLog.Warn("Event handler failed", "error", err)
		}
	}
}

func (s *kafkaSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.reader != nil {
		err := s.reader.Close()
		s.reader = nil
		return err
	}
	return nil
}
