package service

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog/log"
)

// FilterByMonth returns the transactions dated within ym, in input order.
// A zero ym returns the list unfiltered.
func FilterByMonth(transactions []*domain.Transaction, ym domain.YearMonth) []*domain.Transaction {
	if ym.IsZero() {
		return transactions
	}
	filtered := make([]*domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if ym.Contains(tx.Date) {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

// AggregateByDescription sums amounts per description and type, then keeps the
// MaxTopDescriptions buckets with the largest total. Equal totals keep first-seen order.
// A transaction of unknown type still creates its bucket but adds nothing to it.
func AggregateByDescription(transactions []*domain.Transaction) []*domain.DescriptionAggregate {
	buckets := make(map[string]*domain.DescriptionAggregate)
	order := make([]*domain.DescriptionAggregate, 0)

	for _, tx := range transactions {
		bucket, ok := buckets[tx.Description]
		if !ok {
			bucket = &domain.DescriptionAggregate{Description: tx.Description}
			buckets[tx.Description] = bucket
			order = append(order, bucket)
		}
		switch tx.Type {
		case domain.TransactionTypeIncome:
			bucket.Income = bucket.Income.Add(tx.Amount)
		case domain.TransactionTypeExpense:
			bucket.Expense = bucket.Expense.Add(tx.Amount)
		case domain.TransactionTypeDebtPay:
			bucket.DebtPay = bucket.DebtPay.Add(tx.Amount)
		case domain.TransactionTypeDebtReceive:
			bucket.DebtReceive = bucket.DebtReceive.Add(tx.Amount)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Total().GreaterThan(order[j].Total())
	})

	if len(order) > domain.MaxTopDescriptions {
		order = order[:domain.MaxTopDescriptions]
	}
	return order
}

// AggregateByYear sums income and expense per calendar year, ascending by year.
// Debt transactions create their year's bucket but are not summed.
func AggregateByYear(transactions []*domain.Transaction) []*domain.YearAggregate {
	buckets := make(map[int]*domain.YearAggregate)
	years := make([]*domain.YearAggregate, 0)

	for _, tx := range transactions {
		year := tx.Date.Year()
		bucket, ok := buckets[year]
		if !ok {
			bucket = &domain.YearAggregate{Year: year}
			buckets[year] = bucket
			years = append(years, bucket)
		}
		switch tx.Type {
		case domain.TransactionTypeIncome:
			bucket.Income = bucket.Income.Add(tx.Amount)
		case domain.TransactionTypeExpense:
			bucket.Expense = bucket.Expense.Add(tx.Amount)
		}
	}

	sort.Slice(years, func(i, j int) bool {
		return years[i].Year < years[j].Year
	})
	return years
}

// Summarize totals each transaction type.
// balance = income + debt_receive - expense - debt_pay
func Summarize(transactions []*domain.Transaction) domain.Summary {
	var summary domain.Summary
	for _, tx := range transactions {
		switch tx.Type {
		case domain.TransactionTypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
		case domain.TransactionTypeExpense:
			summary.TotalExpense = summary.TotalExpense.Add(tx.Amount)
		case domain.TransactionTypeDebtPay:
			summary.TotalDebtPay = summary.TotalDebtPay.Add(tx.Amount)
		case domain.TransactionTypeDebtReceive:
			summary.TotalDebtReceive = summary.TotalDebtReceive.Add(tx.Amount)
		}
	}
	summary.Balance = summary.TotalIncome.
		Add(summary.TotalDebtReceive).
		Sub(summary.TotalExpense).
		Sub(summary.TotalDebtPay)
	return summary
}

// AggregationService derives every dashboard aggregate from a transaction list.
// Results are memoised by a hash of the list and month; the cache is an
// optimisation only and a miss always recomputes from the input.
type AggregationService struct {
	cache *ristretto.Cache[string, *domain.Aggregates]
}

// NewAggregationService creates an AggregationService. A cacheSize of 0 disables memoisation.
func NewAggregationService(cacheSize int64) (*AggregationService, error) {
	if cacheSize <= 0 {
		return &AggregationService{}, nil
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, *domain.Aggregates]{
		NumCounters: cacheSize * 10, // number of keys to track frequency of
		MaxCost:     cacheSize,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	return &AggregationService{cache: cache}, nil
}

// Aggregate filters by month and derives the summary, the top descriptions
// (month filtered) and the yearly totals (unfiltered)
func (s *AggregationService) Aggregate(transactions []*domain.Transaction, ym domain.YearMonth) *domain.Aggregates {
	var key string
	if s.cache != nil {
		key = aggregateKey(transactions, ym)
		if cached, ok := s.cache.Get(key); ok {
			return cached
		}
	}

	filtered := FilterByMonth(transactions, ym)
	result := &domain.Aggregates{
		Filtered:        filtered,
		Summary:         Summarize(filtered),
		TopDescriptions: AggregateByDescription(filtered),
		Yearly:          AggregateByYear(transactions),
	}

	if s.cache != nil {
		s.cache.Set(key, result, 1)
		log.Debug().Str("month", ym.String()).Int("transactions", len(transactions)).Msg("Aggregates computed")
	}
	return result
}

// Close releases the cache
func (s *AggregationService) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// aggregateKey hashes every field that feeds the aggregates, in list order
func aggregateKey(transactions []*domain.Transaction, ym domain.YearMonth) string {
	h := sha256.New()
	h.Write([]byte(ym.String()))
	for _, tx := range transactions {
		h.Write([]byte{0})
		h.Write([]byte(tx.ID))
		h.Write([]byte{0})
		h.Write([]byte(tx.Description))
		h.Write([]byte{0})
		h.Write([]byte(tx.Amount.String()))
		h.Write([]byte{0})
		h.Write([]byte(tx.Date.Format(domain.DateLayout)))
		h.Write([]byte{0})
		h.Write([]byte(tx.Type))
	}
	return hex.EncodeToString(h.Sum(nil))
}
