package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// SessionKey is the context key for the authenticated session
	SessionKey contextKey = "session"
)

// SessionProvider resolves a session id to an active session
type SessionProvider interface {
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)
}

// SessionAuth returns an Echo middleware that requires a valid session token
// in the Authorization header and injects the session into the request context
func SessionAuth(provider SessionProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorizedError(c, "Invalid authorization header format")
			}

			id, err := uuid.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				return unauthorizedError(c, "Invalid session token")
			}

			session, err := provider.GetSession(c.Request().Context(), id)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrSessionExpired):
					return unauthorizedError(c, "Session expired")
				case errors.Is(err, domain.ErrSessionNotFound):
					return unauthorizedError(c, "Invalid session token")
				}
				log.Error().Err(err).Str("session_id", id.String()).Msg("Session lookup failed")
				return unauthorizedError(c, "Session could not be verified")
			}

			ctx := context.WithValue(c.Request().Context(), SessionKey, session)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetSession extracts the authenticated session from the context
func GetSession(c echo.Context) *domain.Session {
	if session, ok := c.Request().Context().Value(SessionKey).(*domain.Session); ok {
		return session
	}
	return nil
}
