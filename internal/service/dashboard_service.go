package service

import (
	"context"
	"errors"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
)

// DashboardService assembles the dashboard view from the full upstream list.
// Every call fetches the list afresh; mutations refetch before returning.
type DashboardService struct {
	transactions *TransactionService
	aggregation  *AggregationService
	charts       *ChartService
	now          func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(transactions *TransactionService, aggregation *AggregationService, charts *ChartService) *DashboardService {
	return &DashboardService{
		transactions: transactions,
		aggregation:  aggregation,
		charts:       charts,
		now:          time.Now,
	}
}

// CurrentMonth returns the calendar month the dashboard opens on
func (s *DashboardService) CurrentMonth() domain.YearMonth {
	return domain.YearMonthOf(s.now())
}

// Load fetches the list and derives the full view for the month.
// A zero month shows every transaction.
func (s *DashboardService) Load(ctx context.Context, session *domain.Session, month domain.YearMonth, compact bool) (*domain.DashboardView, error) {
	list, err := s.transactions.List(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.build(list, month, compact), nil
}

// AddTransaction submits the form, then returns the refreshed view
func (s *DashboardService) AddTransaction(ctx context.Context, session *domain.Session, form TransactionForm, month domain.YearMonth, compact bool) (*domain.DashboardView, error) {
	if _, err := s.transactions.Create(ctx, session, form); err != nil {
		return nil, err
	}
	return s.refresh(ctx, session, month, compact)
}

// AddDebt submits the debt form, then returns the refreshed view
func (s *DashboardService) AddDebt(ctx context.Context, session *domain.Session, form DebtForm, month domain.YearMonth, compact bool) (*domain.DashboardView, error) {
	if _, err := s.transactions.CreateDebt(ctx, session, form); err != nil {
		return nil, err
	}
	return s.refresh(ctx, session, month, compact)
}

// DeleteTransaction deletes a confirmed transaction, then returns the refreshed view
func (s *DashboardService) DeleteTransaction(ctx context.Context, session *domain.Session, id string, confirmed bool, month domain.YearMonth, compact bool) (*domain.DashboardView, error) {
	if err := s.transactions.Delete(ctx, session, id, confirmed); err != nil {
		return nil, err
	}
	return s.refresh(ctx, session, month, compact)
}

// refresh refetches after a mutation. Failures are marked with ErrRefreshFailed
// so callers can tell them apart from a failed mutation.
func (s *DashboardService) refresh(ctx context.Context, session *domain.Session, month domain.YearMonth, compact bool) (*domain.DashboardView, error) {
	view, err := s.Load(ctx, session, month, compact)
	if err != nil {
		return nil, errors.Join(domain.ErrRefreshFailed, err)
	}
	return view, nil
}

// Aggregates fetches the list and derives the aggregates without a chart
func (s *DashboardService) Aggregates(ctx context.Context, session *domain.Session, month domain.YearMonth) (*domain.Aggregates, []domain.RejectedTransaction, error) {
	list, err := s.transactions.List(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	return s.aggregation.Aggregate(list.Transactions, month), list.Rejected, nil
}

// Filtered fetches the list and returns the month's transactions in upstream order
func (s *DashboardService) Filtered(ctx context.Context, session *domain.Session, month domain.YearMonth) ([]*domain.Transaction, error) {
	list, err := s.transactions.List(ctx, session)
	if err != nil {
		return nil, err
	}
	return FilterByMonth(list.Transactions, month), nil
}

func (s *DashboardService) build(list *domain.TransactionList, month domain.YearMonth, compact bool) *domain.DashboardView {
	aggs := s.aggregation.Aggregate(list.Transactions, month)
	rejected := list.Rejected
	if rejected == nil {
		rejected = []domain.RejectedTransaction{}
	}
	return &domain.DashboardView{
		Month:           month,
		Summary:         aggs.Summary,
		TopDescriptions: aggs.TopDescriptions,
		Yearly:          aggs.Yearly,
		Chart:           s.charts.DescriptionChart(aggs.TopDescriptions, compact),
		Transactions:    aggs.Filtered,
		Rejected:        rejected,
	}
}
