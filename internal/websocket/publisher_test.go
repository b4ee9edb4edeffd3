package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_Publish(t *testing.T) {
	hub := NewHub()

	sub := newMockSubscriber("c1", "s1", "alice")
	hub.Register(sub)

	var publisher EventPublisher = hub
	publisher.Publish("alice", TransactionCreated(map[string]string{"id": "42"}))

	assert.Equal(t, 1, sub.Messages())
}

func TestNoOpPublisher_Publish(t *testing.T) {
	publisher := &NoOpPublisher{}

	assert.NotPanics(t, func() {
		publisher.Publish("alice", TransactionCreated(map[string]string{"id": "1"}))
	})
}
