package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the subset of pgxpool.Pool used by the repositories
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS dashboard_sessions (
    id          UUID PRIMARY KEY,
    username    TEXT NOT NULL,
    token       TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    expires_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dashboard_sessions_expires_at ON dashboard_sessions (expires_at);
`

const (
	insertSession = `INSERT INTO dashboard_sessions (id, username, token, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5)`
	selectSession = `SELECT id, username, token, created_at, expires_at
FROM dashboard_sessions WHERE id = $1`
	deleteSession        = `DELETE FROM dashboard_sessions WHERE id = $1`
	deleteExpiredSession = `DELETE FROM dashboard_sessions WHERE expires_at <= $1`
)

var _ domain.SessionRepository = (*SessionRepository)(nil)

// SessionRepository implements domain.SessionRepository using PostgreSQL
type SessionRepository struct {
	db DBTX
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// EnsureSchema creates the sessions table if it doesn't exist
func (r *SessionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	_, err := r.db.Exec(ctx, insertSession,
		uuidToPg(session.ID),
		session.Username,
		session.Token,
		timeToPg(session.CreatedAt),
		timeToPg(session.ExpiresAt),
	)
	return err
}

// GetByID retrieves a session by its ID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var (
		pgID      pgtype.UUID
		session   domain.Session
		createdAt pgtype.Timestamptz
		expiresAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, selectSession, uuidToPg(id)).
		Scan(&pgID, &session.Username, &session.Token, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	session.ID = uuid.UUID(pgID.Bytes)
	session.CreatedAt = createdAt.Time.UTC()
	session.ExpiresAt = expiresAt.Time.UTC()
	return &session, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteSession, uuidToPg(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// DeleteExpired removes sessions expired at now and returns how many were removed
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, deleteExpiredSession, timeToPg(now))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func uuidToPg(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func timeToPg(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
