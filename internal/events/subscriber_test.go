package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bug-sentinel/webviz/internal/config"
)

func TestMemorySubscriberDelivery(t *testing.T) {
	sub := NewMemorySubscriber("ensemble.updated")

	var received []EnsembleEvent
	err := sub.Subscribe(func(event EnsembleEvent) error {
		received = append(received, event)
		return nil
	})
	require.NoError(t, err)

	err = sub.Publish(EnsembleEvent{CaseUUID: "case-1", Ensemble: "iter-0"})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "case-1", received[0].CaseUUID)
	assert.Equal(t, "iter-0", received[0].Ensemble)
}

func TestMemorySubscriberDoubleSubscribe(t *testing.T) {
	sub := NewMemorySubscriber("ensemble.updated")

	require.NoError(t, sub.Subscribe(func(EnsembleEvent) error { return nil }))
	assert.Error(t, sub.Subscribe(func(EnsembleEvent) error { return nil }))
}

func TestMemorySubscriberClosedDropsEvents(t *testing.T) {
	sub := NewMemorySubscriber("ensemble.updated")

	delivered := false
	require.NoError(t, sub.Subscribe(func(EnsembleEvent) error {
		delivered = true
		return nil
	}))
	require.NoError(t, sub.Close())

	require.NoError(t, sub.Publish(EnsembleEvent{CaseUUID: "case-1", Ensemble: "iter-0"}))
	assert.False(t, delivered)
}

func TestPublishRawDecodesWireFormat(t *testing.T) {
	sub := NewMemorySubscriber("ensemble.updated")

	var received EnsembleEvent
	require.NoError(t, sub.Subscribe(func(event EnsembleEvent) error {
		received = event
		return nil
	}))

	data, err := Encode(EnsembleEvent{CaseUUID: "a1b2", Ensemble: "iter-3"})
	require.NoError(t, err)
	require.NoError(t, sub.PublishRaw(data))
	assert.Equal(t, "a1b2", received.CaseUUID)
	assert.Equal(t, "iter-3", received.Ensemble)
}

func TestPublishRawRejectsMalformedPayload(t *testing.T) {
	sub := NewMemorySubscriber("ensemble.updated")
	require.NoError(t, sub.Subscribe(func(EnsembleEvent) error { return nil }))

	assert.Error(t, sub.PublishRaw([]byte(`not json`)))
	assert.Error(t, sub.PublishRaw([]byte(`{"case_uuid": ""}`)))
}

func TestNewSubscriberTypes(t *testing.T) {
	sub, err := New(config.EventsConfig{Type: "none"})
	require.NoError(t, err)
	assert.Nil(t, sub)

	sub, err = New(config.EventsConfig{Type: "memory", Subject: "ensemble.updated"})
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.NoError(t, sub.Close())

	_, err = New(config.EventsConfig{Type: "rabbitmq"})
	assert.Error(t, err)

	_, err = New(config.EventsConfig{Type: "kafka", Subject: "ensemble.updated"})
	assert.Error(t, err) // no brokers configured
}
