package service

import (
	"context"
	"strings"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/websocket"
	"github.com/rs/zerolog/log"
)

// TransactionService forwards validated form submissions and deletions to the upstream store
type TransactionService struct {
	gateway        domain.TransactionGateway
	eventPublisher websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(gateway domain.TransactionGateway) *TransactionService {
	return &TransactionService{
		gateway: gateway,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *TransactionService) publishEvent(username string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(username, event)
	}
}

// List fetches the full transaction list for the session
func (s *TransactionService) List(ctx context.Context, session *domain.Session) (*domain.TransactionList, error) {
	list, err := s.gateway.ListTransactions(ctx, session)
	if err != nil {
		return nil, err
	}
	if len(list.Rejected) > 0 {
		log.Warn().
			Str("username", session.Username).
			Int("rejected", len(list.Rejected)).
			Msg("Excluded malformed upstream transactions")
	}
	return list, nil
}

// Create validates the transaction form and submits it upstream
func (s *TransactionService) Create(ctx context.Context, session *domain.Session, form TransactionForm) (*domain.Transaction, error) {
	input, err := form.Validate()
	if err != nil {
		return nil, err
	}
	return s.create(ctx, session, input)
}

// CreateDebt validates the debt form and submits it upstream as a debt transaction
func (s *TransactionService) CreateDebt(ctx context.Context, session *domain.Session, form DebtForm) (*domain.Transaction, error) {
	input, err := form.Validate()
	if err != nil {
		return nil, err
	}
	return s.create(ctx, session, input)
}

func (s *TransactionService) create(ctx context.Context, session *domain.Session, input domain.NewTransaction) (*domain.Transaction, error) {
	tx, err := s.gateway.CreateTransaction(ctx, session, input)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("username", session.Username).
		Str("transaction_id", tx.ID).
		Str("type", string(tx.Type)).
		Msg("Transaction created")

	s.publishEvent(session.Username, websocket.TransactionCreated(tx))
	return tx, nil
}

// Delete removes a transaction upstream. The caller must have confirmed the deletion.
func (s *TransactionService) Delete(ctx context.Context, session *domain.Session, id string, confirmed bool) error {
	if !confirmed {
		return domain.ErrDeleteNotConfirmed
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrInvalidInput
	}

	if err := s.gateway.DeleteTransaction(ctx, session, id); err != nil {
		return err
	}

	log.Info().
		Str("username", session.Username).
		Str("transaction_id", id).
		Msg("Transaction deleted")

	s.publishEvent(session.Username, websocket.TransactionDeleted(map[string]string{"id": id}))
	return nil
}
