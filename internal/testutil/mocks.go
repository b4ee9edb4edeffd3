package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/websocket"
	"github.com/google/uuid"
)

// MockGateway is a mock implementation of domain.TransactionGateway backed by an in-memory list
type MockGateway struct {
	mu           sync.Mutex
	Transactions []*domain.Transaction
	Rejected     []domain.RejectedTransaction
	Tokens       map[string]string // username -> token returned by Login/Register
	nextID       int

	LoginErr    error
	RegisterErr error
	ListErr     error
	CreateErr   error
	DeleteErr   error

	// Created records every payload forwarded by CreateTransaction
	Created []domain.NewTransaction
	// Deleted records every id passed to DeleteTransaction
	Deleted []string
	// ListCalls counts ListTransactions invocations
	ListCalls int
	// LastToken is the bearer token of the most recent authenticated call
	LastToken string
}

// NewMockGateway creates a new MockGateway
func NewMockGateway() *MockGateway {
	return &MockGateway{
		Transactions: make([]*domain.Transaction, 0),
		Tokens:       make(map[string]string),
		nextID:       1,
	}
}

// AddTransaction seeds the upstream list
func (m *MockGateway) AddTransaction(tx *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transactions = append(m.Transactions, tx)
}

// Login returns the token seeded for the user, or a generated one
func (m *MockGateway) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	if m.LoginErr != nil {
		return "", m.LoginErr
	}
	return m.tokenFor(creds.Username), nil
}

// Register returns the token seeded for the user, or a generated one
func (m *MockGateway) Register(ctx context.Context, creds domain.Credentials) (string, error) {
	if m.RegisterErr != nil {
		return "", m.RegisterErr
	}
	return m.tokenFor(creds.Username), nil
}

func (m *MockGateway) tokenFor(username string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token, ok := m.Tokens[username]; ok {
		return token
	}
	return "token-" + username
}

// ListTransactions returns a copy of the seeded list
func (m *MockGateway) ListTransactions(ctx context.Context, session *domain.Session) (*domain.TransactionList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	m.LastToken = session.Token
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	list := &domain.TransactionList{
		Transactions: make([]*domain.Transaction, len(m.Transactions)),
		Rejected:     append([]domain.RejectedTransaction(nil), m.Rejected...),
	}
	copy(list.Transactions, m.Transactions)
	return list, nil
}

// CreateTransaction appends the payload to the list
func (m *MockGateway) CreateTransaction(ctx context.Context, session *domain.Session, input domain.NewTransaction) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastToken = session.Token
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.Created = append(m.Created, input)
	tx := &domain.Transaction{
		ID:          fmt.Sprintf("mock-%d", m.nextID),
		Description: input.Description,
		Amount:      input.Amount,
		Date:        input.Date,
		Type:        input.Type,
	}
	m.nextID++
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// DeleteTransaction removes the transaction with the given id, or returns ErrNotFound
func (m *MockGateway) DeleteTransaction(ctx context.Context, session *domain.Session, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastToken = session.Token
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, id)
	for i, tx := range m.Transactions {
		if tx.ID == id {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// MockSessionRepository is a mock implementation of domain.SessionRepository
type MockSessionRepository struct {
	mu        sync.Mutex
	Sessions  map[uuid.UUID]*domain.Session
	CreateErr error
}

// NewMockSessionRepository creates a new MockSessionRepository
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		Sessions: make(map[uuid.UUID]*domain.Session),
	}
}

// Create stores a session
func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Sessions[session.ID] = session
	return nil
}

// GetByID retrieves a session by ID
func (m *MockSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.Sessions[id]; ok {
		return session, nil
	}
	return nil, domain.ErrSessionNotFound
}

// Delete removes a session
func (m *MockSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.Sessions, id)
	return nil
}

// DeleteExpired removes sessions expired at now
func (m *MockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, session := range m.Sessions {
		if session.IsExpired(now) {
			delete(m.Sessions, id)
			removed++
		}
	}
	return removed, nil
}

// AddSession seeds a session
func (m *MockSessionRepository) AddSession(session *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions[session.ID] = session
}

// Count returns the number of stored sessions
func (m *MockSessionRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sessions)
}

// MockExportRepository is a mock implementation of domain.ExportRepository
type MockExportRepository struct {
	Objects     map[string][]byte
	ContentType map[string]string
	UploadErr   error
	PresignErr  error
}

// NewMockExportRepository creates a new MockExportRepository
func NewMockExportRepository() *MockExportRepository {
	return &MockExportRepository{
		Objects:     make(map[string][]byte),
		ContentType: make(map[string]string),
	}
}

// Upload stores the object in memory
func (m *MockExportRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	m.Objects[objectPath] = buf.Bytes()
	m.ContentType[objectPath] = contentType
	return objectPath, nil
}

// GeneratePresignedURL returns a fake URL for a stored object
func (m *MockExportRepository) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	if m.PresignErr != nil {
		return "", m.PresignErr
	}
	if _, ok := m.Objects[objectPath]; !ok {
		return "", domain.ErrNotFound
	}
	return fmt.Sprintf("https://exports.example.com/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}

// PublishedEvent is one event captured by MockPublisher
type PublishedEvent struct {
	Username string
	Event    websocket.Event
}

// MockPublisher records published websocket events
type MockPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the event
func (m *MockPublisher) Publish(username string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{Username: username, Event: event})
}

// Published returns a copy of the recorded events
func (m *MockPublisher) Published() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedEvent(nil), m.Events...)
}

// MockSessionCloser records which session feeds were asked to close
type MockSessionCloser struct {
	mu           sync.Mutex
	Closed       []string
	ExpiredCalls []time.Time
}

// NewMockSessionCloser creates a new MockSessionCloser
func NewMockSessionCloser() *MockSessionCloser {
	return &MockSessionCloser{}
}

// CloseSession records the session id
func (m *MockSessionCloser) CloseSession(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = append(m.Closed, sessionID)
	return 1
}

// CloseExpired records the cutoff
func (m *MockSessionCloser) CloseExpired(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExpiredCalls = append(m.ExpiredCalls, now)
	return 0
}
