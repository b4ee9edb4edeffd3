package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/websocket"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuthService handles sign-in against the upstream API and the session lifecycle
type AuthService struct {
	gateway     domain.TransactionGateway
	sessionRepo domain.SessionRepository
	sessionTTL  time.Duration
	feeds       websocket.SessionCloser
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(gateway domain.TransactionGateway, sessionRepo domain.SessionRepository, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = domain.DefaultSessionTTL
	}
	return &AuthService{
		gateway:     gateway,
		sessionRepo: sessionRepo,
		sessionTTL:  sessionTTL,
		now:         time.Now,
	}
}

// SetSessionCloser sets where the change feeds of ended sessions are closed
func (s *AuthService) SetSessionCloser(feeds websocket.SessionCloser) {
	s.feeds = feeds
}

// closeFeeds ends the open change feeds of a session that is no longer valid
func (s *AuthService) closeFeeds(id uuid.UUID) {
	if s.feeds != nil {
		s.feeds.CloseSession(id.String())
	}
}

// Login signs in upstream and opens a session holding the returned token
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	creds, err := normalizeCredentials(creds)
	if err != nil {
		return nil, err
	}

	token, err := s.gateway.Login(ctx, creds)
	if err != nil {
		log.Warn().Err(err).Str("username", creds.Username).Msg("Upstream login failed")
		return nil, err
	}
	return s.openSession(ctx, creds.Username, token)
}

// Register creates the upstream account and opens a session for it
func (s *AuthService) Register(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	creds, err := normalizeCredentials(creds)
	if err != nil {
		return nil, err
	}

	token, err := s.gateway.Register(ctx, creds)
	if err != nil {
		log.Warn().Err(err).Str("username", creds.Username).Msg("Upstream registration failed")
		return nil, err
	}
	return s.openSession(ctx, creds.Username, token)
}

// Logout closes the session. Closing an unknown session is not an error.
func (s *AuthService) Logout(ctx context.Context, id uuid.UUID) error {
	if err := s.sessionRepo.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	s.closeFeeds(id)
	log.Info().Str("session_id", id.String()).Msg("Session closed")
	return nil
}

// GetSession returns the active session. Expired sessions are removed and rejected.
func (s *AuthService) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(s.now()) {
		if err := s.sessionRepo.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			log.Warn().Err(err).Str("session_id", id.String()).Msg("Failed to delete expired session")
		}
		s.closeFeeds(id)
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

// ValidateToken resolves a session token to its live session
func (s *AuthService) ValidateToken(token string) (*domain.Session, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	return s.GetSession(context.Background(), id)
}

// PurgeExpired removes every expired session, ends their change feeds,
// and returns how many sessions were removed
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	now := s.now()
	if s.feeds != nil {
		s.feeds.CloseExpired(now)
	}
	return s.sessionRepo.DeleteExpired(ctx, now)
}

func (s *AuthService) openSession(ctx context.Context, username, token string) (*domain.Session, error) {
	now := s.now().UTC()
	session := &domain.Session{
		ID:        uuid.New(),
		Username:  username,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: sessionExpiry(token, now, s.sessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Str("username", username).
		Time("expires_at", session.ExpiresAt).
		Msg("Session opened")
	return session, nil
}

// sessionExpiry caps the session at the upstream token's exp claim when the token is a JWT
func sessionExpiry(token string, now time.Time, ttl time.Duration) time.Time {
	expiry := now.Add(ttl)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return expiry
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return expiry
	}
	if exp.Time.Before(expiry) {
		return exp.Time.UTC()
	}
	return expiry
}

func normalizeCredentials(creds domain.Credentials) (domain.Credentials, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return domain.Credentials{}, domain.ErrCredentialsRequired
	}
	return creds, nil
}
