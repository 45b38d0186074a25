// Package events delivers ensemble-updated notifications from the
// ingest pipeline. The API subscribes to drop cached series when an
// ensemble's data changes upstream.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/bug-sentinel/webviz/internal/config"
)

// EnsembleEvent signals that an ensemble's series data changed
type EnsembleEvent struct {
	CaseUUID string `json:"case_uuid"`
	Ensemble string `json:"ensemble"`
}

// EventHandler processes one ensemble event
type EventHandler func(event EnsembleEvent) error

// Subscriber receives ensemble events from a broker
type Subscriber interface {
	// Subscribe registers a handler for ensemble events. Delivery runs on
	// a broker-owned goroutine.
	Subscribe(handler EventHandler) error

	// Close stops delivery and releases broker connections
	Close() error
}

// New creates a subscriber for the configured broker type
func New(cfg config.EventsConfig) (Subscriber, error) {
	switch cfg.Type {
	case "nats":
		return newNATSSubscriber(cfg)
	case "kafka":
		return newKafkaSubscriber(cfg)
	case "memory":
		return NewMemorySubscriber(cfg.Subject), nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown events type: %s", cfg.Type)
	}
}

// decodeEvent unmarshals a broker payload into an EnsembleEvent
func decodeEvent(data []byte) (EnsembleEvent, error) {
	var event EnsembleEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return EnsembleEvent{}, fmt.Errorf("malformed ensemble event: %w", err)
	}
	if event.CaseUUID == "" || event.Ensemble == "" {
		return EnsembleEvent{}, fmt.Errorf("ensemble event missing case_uuid or ensemble")
	}
	return event, nil
}
