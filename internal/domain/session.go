package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL bounds a session when the upstream token carries no expiry
const DefaultSessionTTL = 24 * time.Hour

// Session carries the upstream bearer token for one signed-in user.
// It is created at login or registration and deleted at logout.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"-"` // Never expose the upstream token
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired reports whether the session is past its expiry at now
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionRepository stores active sessions
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
