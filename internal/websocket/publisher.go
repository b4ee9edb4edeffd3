package websocket

import "time"

// EventPublisher publishes change events to a user's open dashboards
type EventPublisher interface {
	Publish(username string, event Event)
}

// SessionCloser ends the feeds of sessions that are no longer valid
type SessionCloser interface {
	CloseSession(sessionID string) int
	CloseExpired(now time.Time) int
}

var (
	_ EventPublisher = (*Hub)(nil)
	_ SessionCloser  = (*Hub)(nil)
)

// Publish implements EventPublisher
func (h *Hub) Publish(username string, event Event) {
	h.Broadcast(username, event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(username string, event Event) {}
