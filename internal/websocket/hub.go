package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	// ErrClientClosed is returned when delivering to a subscriber whose feed has ended
	ErrClientClosed = errors.New("client is closed")
	// ErrClientTooSlow is returned when a subscriber's outbox is full
	ErrClientTooSlow = errors.New("client is not keeping up")
)

// Close codes sent to the browser when the server ends a feed.
// Dashboards treat 4001 and 4002 as "sign in again" and 4003 as "reconnect and refetch".
const (
	CloseSessionEnded   = 4001
	CloseSessionExpired = 4002
	CloseTooSlow        = 4003
)

// Owner identifies the session a feed was opened with
type Owner struct {
	SessionID string
	Username  string
	ExpiresAt time.Time
}

// OwnerOf returns the feed owner for a session
func OwnerOf(session *domain.Session) Owner {
	return Owner{
		SessionID: session.ID.String(),
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt,
	}
}

func (o Owner) expired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && !now.Before(o.ExpiresAt)
}

// Subscriber is one open dashboard connection
type Subscriber interface {
	ID() string
	Owner() Owner
	Deliver(data []byte) error
	End(code int, reason string)
}

// Hub routes transaction events to the dashboards of the user who made the change.
// Feeds are grouped by session so that signing out or expiring a session ends
// exactly the connections it opened.
type Hub struct {
	mu sync.RWMutex
	// sessions maps session id to its subscribers keyed by subscriber id
	sessions map[string]map[string]Subscriber
	// users maps username to the ids of its sessions with an open feed
	users map[string]map[string]struct{}
	now   func() time.Time
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[string]Subscriber),
		users:    make(map[string]map[string]struct{}),
		now:      time.Now,
	}
}

// Register attaches a subscriber to its session's feed.
// A subscriber whose session has already expired is ended immediately.
func (h *Hub) Register(sub Subscriber) {
	owner := sub.Owner()
	if owner.expired(h.now()) {
		sub.End(CloseSessionExpired, "session expired")
		return
	}

	h.mu.Lock()
	feed := h.sessions[owner.SessionID]
	if feed == nil {
		feed = make(map[string]Subscriber)
		h.sessions[owner.SessionID] = feed
	}
	feed[sub.ID()] = sub
	if h.users[owner.Username] == nil {
		h.users[owner.Username] = make(map[string]struct{})
	}
	h.users[owner.Username][owner.SessionID] = struct{}{}
	h.mu.Unlock()

	log.Debug().
		Str("username", owner.Username).
		Str("session_id", owner.SessionID).
		Str("client_id", sub.ID()).
		Msg("Dashboard feed opened")
}

// Remove detaches a subscriber. It reports whether the subscriber was attached.
func (h *Hub) Remove(sub Subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.detach(sub.Owner(), sub.ID())
}

// detach must be called with mu held
func (h *Hub) detach(owner Owner, id string) bool {
	feed, ok := h.sessions[owner.SessionID]
	if !ok {
		return false
	}
	if _, ok := feed[id]; !ok {
		return false
	}
	delete(feed, id)
	if len(feed) == 0 {
		h.dropSession(owner)
	}
	return true
}

// dropSession must be called with mu held
func (h *Hub) dropSession(owner Owner) {
	delete(h.sessions, owner.SessionID)
	if ids, ok := h.users[owner.Username]; ok {
		delete(ids, owner.SessionID)
		if len(ids) == 0 {
			delete(h.users, owner.Username)
		}
	}
}

// Broadcast delivers an event to every live feed of a user.
// Feeds of expired sessions are ended instead of receiving the event,
// and a subscriber whose outbox is full is disconnected so it refetches on reconnect.
func (h *Hub) Broadcast(username string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}

	now := h.now()
	var live, expired []Subscriber

	h.mu.RLock()
	for sessionID := range h.users[username] {
		for _, sub := range h.sessions[sessionID] {
			if sub.Owner().expired(now) {
				expired = append(expired, sub)
			} else {
				live = append(live, sub)
			}
		}
	}
	h.mu.RUnlock()

	for _, sub := range expired {
		h.end(sub, CloseSessionExpired, "session expired")
	}

	delivered := 0
	for _, sub := range live {
		switch err := sub.Deliver(data); {
		case err == nil:
			delivered++
		case errors.Is(err, ErrClientTooSlow):
			log.Warn().Str("username", username).Str("client_id", sub.ID()).Msg("Disconnecting slow dashboard")
			h.end(sub, CloseTooSlow, "too slow")
		default:
			h.Remove(sub)
		}
	}

	log.Debug().
		Str("username", username).
		Str("event_type", event.Type).
		Int("delivered", delivered).
		Int("expired", len(expired)).
		Msg("Broadcast event")
}

func (h *Hub) end(sub Subscriber, code int, reason string) {
	h.Remove(sub)
	sub.End(code, reason)
}

// CloseSession ends every feed opened with the session and returns how many were ended
func (h *Hub) CloseSession(sessionID string) int {
	h.mu.Lock()
	feed := h.sessions[sessionID]
	subs := make([]Subscriber, 0, len(feed))
	for _, sub := range feed {
		subs = append(subs, sub)
	}
	if len(subs) > 0 {
		h.dropSession(subs[0].Owner())
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.End(CloseSessionEnded, "signed out")
	}
	if len(subs) > 0 {
		log.Debug().Str("session_id", sessionID).Int("closed", len(subs)).Msg("Session feeds closed")
	}
	return len(subs)
}

// CloseExpired ends every feed whose session expired at now and returns how many were ended
func (h *Hub) CloseExpired(now time.Time) int {
	var expired []Subscriber

	h.mu.Lock()
	for _, feed := range h.sessions {
		for id, sub := range feed {
			if sub.Owner().expired(now) {
				expired = append(expired, sub)
				h.detach(sub.Owner(), id)
			}
		}
	}
	h.mu.Unlock()

	for _, sub := range expired {
		sub.End(CloseSessionExpired, "session expired")
	}
	return len(expired)
}

// Connections returns the number of open feeds of a user across all sessions
func (h *Hub) Connections(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for sessionID := range h.users[username] {
		n += len(h.sessions[sessionID])
	}
	return n
}

// SessionConnections returns the number of open feeds of one session
func (h *Hub) SessionConnections(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// TotalConnections returns the number of open feeds across all users
func (h *Hub) TotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, feed := range h.sessions {
		n += len(feed)
	}
	return n
}
