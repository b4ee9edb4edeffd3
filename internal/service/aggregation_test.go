package service

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(id, description string, amount int64, date string, txType domain.TransactionType) *domain.Transaction {
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return &domain.Transaction{
		ID:          id,
		Description: description,
		Amount:      decimal.NewFromInt(amount),
		Date:        d,
		Type:        txType,
	}
}

func exampleTransactions() []*domain.Transaction {
	return []*domain.Transaction{
		tx("1", "Salary", 100, "2024-01-05", domain.TransactionTypeIncome),
		tx("2", "Food", 40, "2024-01-10", domain.TransactionTypeExpense),
		tx("3", "Salary", 50, "2024-02-01", domain.TransactionTypeIncome),
	}
}

func mustMonth(t *testing.T, s string) domain.YearMonth {
	t.Helper()
	ym, err := domain.ParseYearMonth(s)
	require.NoError(t, err)
	return ym
}

// randomTransactions builds a deterministic pseudo-random list spanning several
// years, descriptions and all four types
func randomTransactions(seed int64, n int) []*domain.Transaction {
	r := rand.New(rand.NewSource(seed))
	types := []domain.TransactionType{
		domain.TransactionTypeIncome,
		domain.TransactionTypeExpense,
		domain.TransactionTypeDebtPay,
		domain.TransactionTypeDebtReceive,
	}
	list := make([]*domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		date := time.Date(2021+r.Intn(4), time.Month(1+r.Intn(12)), 1+r.Intn(28), 0, 0, 0, 0, time.UTC)
		list = append(list, &domain.Transaction{
			ID:          fmt.Sprintf("t%d", i),
			Description: fmt.Sprintf("desc-%d", r.Intn(15)),
			Amount:      decimal.New(int64(r.Intn(100000)), -2),
			Date:        date,
			Type:        types[r.Intn(len(types))],
		})
	}
	return list
}

func shuffled(list []*domain.Transaction, seed int64) []*domain.Transaction {
	out := append([]*domain.Transaction(nil), list...)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func TestSummarize_MonthExample(t *testing.T) {
	filtered := FilterByMonth(exampleTransactions(), mustMonth(t, "2024-01"))
	summary := Summarize(filtered)

	require.Len(t, filtered, 2)
	assert.True(t, summary.TotalIncome.Equal(decimal.NewFromInt(100)), "income: %s", summary.TotalIncome)
	assert.True(t, summary.TotalExpense.Equal(decimal.NewFromInt(40)), "expense: %s", summary.TotalExpense)
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(60)), "balance: %s", summary.Balance)
}

func TestAggregateByYear_Example(t *testing.T) {
	years := AggregateByYear(exampleTransactions())

	require.Len(t, years, 1)
	assert.Equal(t, 2024, years[0].Year)
	assert.True(t, years[0].Income.Equal(decimal.NewFromInt(150)))
	assert.True(t, years[0].Expense.Equal(decimal.NewFromInt(40)))
}

func TestSummarize_BalanceIncludesDebts(t *testing.T) {
	list := []*domain.Transaction{
		tx("1", "Salary", 1000, "2024-03-01", domain.TransactionTypeIncome),
		tx("2", "Rent", 400, "2024-03-02", domain.TransactionTypeExpense),
		tx("3", "Alice", 50, "2024-03-03", domain.TransactionTypeDebtPay),
		tx("4", "Bob", 30, "2024-03-04", domain.TransactionTypeDebtReceive),
	}

	summary := Summarize(list)

	assert.True(t, summary.TotalDebtPay.Equal(decimal.NewFromInt(50)))
	assert.True(t, summary.TotalDebtReceive.Equal(decimal.NewFromInt(30)))
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(580)), "balance: %s", summary.Balance)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.True(t, summary.Balance.IsZero())
	assert.True(t, summary.TotalIncome.IsZero())
}

func TestSummarize_DecimalPrecision(t *testing.T) {
	list := make([]*domain.Transaction, 0, 10)
	for i := 0; i < 10; i++ {
		list = append(list, &domain.Transaction{
			Description: "Coffee",
			Amount:      decimal.RequireFromString("0.1"),
			Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Type:        domain.TransactionTypeExpense,
		})
	}

	summary := Summarize(list)

	assert.Equal(t, "1", summary.TotalExpense.String())
	assert.Equal(t, "-1", summary.Balance.String())
}

func TestFilterByMonth_ZeroMonthReturnsAll(t *testing.T) {
	list := exampleTransactions()

	assert.Len(t, FilterByMonth(list, domain.YearMonth{}), 3)
}

func TestFilterByMonth_KeepsInputOrder(t *testing.T) {
	list := []*domain.Transaction{
		tx("b", "B", 1, "2024-01-20", domain.TransactionTypeExpense),
		tx("x", "X", 1, "2023-01-20", domain.TransactionTypeExpense),
		tx("a", "A", 1, "2024-01-02", domain.TransactionTypeExpense),
	}

	filtered := FilterByMonth(list, mustMonth(t, "2024-01"))

	require.Len(t, filtered, 2)
	assert.Equal(t, "b", filtered[0].ID)
	assert.Equal(t, "a", filtered[1].ID)
}

func TestAggregateByDescription_LengthAndOrdering(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		aggs := AggregateByDescription(randomTransactions(seed, 200))

		assert.LessOrEqual(t, len(aggs), domain.MaxTopDescriptions)
		for i := 1; i < len(aggs); i++ {
			assert.False(t, aggs[i].Total().GreaterThan(aggs[i-1].Total()),
				"seed %d: bucket %d total %s exceeds previous %s", seed, i, aggs[i].Total(), aggs[i-1].Total())
		}
	}
}

func TestAggregateByDescription_KeepsLargestTen(t *testing.T) {
	list := make([]*domain.Transaction, 0, 12)
	for i := 1; i <= 12; i++ {
		list = append(list, tx(fmt.Sprint(i), fmt.Sprintf("d%02d", i), int64(i), "2024-01-01", domain.TransactionTypeExpense))
	}

	aggs := AggregateByDescription(list)

	require.Len(t, aggs, 10)
	assert.Equal(t, "d12", aggs[0].Description)
	assert.Equal(t, "d03", aggs[9].Description)
}

func TestAggregateByDescription_TiesKeepFirstSeenOrder(t *testing.T) {
	list := []*domain.Transaction{
		tx("1", "Rent", 50, "2024-01-01", domain.TransactionTypeExpense),
		tx("2", "Gym", 50, "2024-01-02", domain.TransactionTypeExpense),
		tx("3", "Books", 50, "2024-01-03", domain.TransactionTypeExpense),
	}

	aggs := AggregateByDescription(list)

	require.Len(t, aggs, 3)
	assert.Equal(t, "Rent", aggs[0].Description)
	assert.Equal(t, "Gym", aggs[1].Description)
	assert.Equal(t, "Books", aggs[2].Description)
}

func TestAggregateByDescription_SumsPerType(t *testing.T) {
	list := []*domain.Transaction{
		tx("1", "Alice", 20, "2024-01-01", domain.TransactionTypeDebtPay),
		tx("2", "Alice", 5, "2024-01-02", domain.TransactionTypeDebtReceive),
		tx("3", "Alice", 7, "2024-01-03", domain.TransactionTypeDebtPay),
	}

	aggs := AggregateByDescription(list)

	require.Len(t, aggs, 1)
	assert.True(t, aggs[0].DebtPay.Equal(decimal.NewFromInt(27)))
	assert.True(t, aggs[0].DebtReceive.Equal(decimal.NewFromInt(5)))
	assert.True(t, aggs[0].Income.IsZero())
	assert.True(t, aggs[0].Total().Equal(decimal.NewFromInt(32)))
}

func TestAggregateByDescription_UnknownTypeCreatesEmptyBucket(t *testing.T) {
	list := []*domain.Transaction{
		tx("1", "Mystery", 99, "2024-01-01", domain.TransactionType("transfer")),
	}

	aggs := AggregateByDescription(list)

	require.Len(t, aggs, 1)
	assert.Equal(t, "Mystery", aggs[0].Description)
	assert.True(t, aggs[0].Total().IsZero())
}

func TestAggregateByDescription_Commutative(t *testing.T) {
	list := randomTransactions(7, 300)

	sums := func(aggs []*domain.DescriptionAggregate) map[string]string {
		out := make(map[string]string)
		for _, a := range aggs {
			out[a.Description] = fmt.Sprintf("%s/%s/%s/%s", a.Income, a.Expense, a.DebtPay, a.DebtReceive)
		}
		return out
	}

	// compare full (untruncated) sums so ties at the cut-off cannot differ
	few := randomTransactions(7, 300)[:40]
	for seed := int64(1); seed <= 5; seed++ {
		assert.Equal(t, sums(AggregateByDescription(few)), sums(AggregateByDescription(shuffled(few, seed))))
		assert.Equal(t, Summarize(list).Balance.String(), Summarize(shuffled(list, seed)).Balance.String())
	}
}

func TestAggregateByYear_AscendingAndSums(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		list := randomTransactions(seed, 150)
		years := AggregateByYear(list)

		for i := 1; i < len(years); i++ {
			assert.Less(t, years[i-1].Year, years[i].Year)
		}

		for _, y := range years {
			income, expense := decimal.Zero, decimal.Zero
			for _, tr := range list {
				if tr.Date.Year() != y.Year {
					continue
				}
				switch tr.Type {
				case domain.TransactionTypeIncome:
					income = income.Add(tr.Amount)
				case domain.TransactionTypeExpense:
					expense = expense.Add(tr.Amount)
				}
			}
			assert.True(t, y.Income.Equal(income), "year %d income", y.Year)
			assert.True(t, y.Expense.Equal(expense), "year %d expense", y.Year)
		}
	}
}

func TestAggregateByYear_DebtOnlyYearHasZeroBucket(t *testing.T) {
	list := []*domain.Transaction{
		tx("1", "Alice", 20, "2022-06-01", domain.TransactionTypeDebtPay),
		tx("2", "Salary", 10, "2023-06-01", domain.TransactionTypeIncome),
	}

	years := AggregateByYear(list)

	require.Len(t, years, 2)
	assert.Equal(t, 2022, years[0].Year)
	assert.True(t, years[0].Income.IsZero())
	assert.True(t, years[0].Expense.IsZero())
}

func TestFilterAndAggregateCommute(t *testing.T) {
	list := randomTransactions(42, 400)
	month := mustMonth(t, "2023-05")

	// aggregate every month, then restrict to M
	byMonth := make(map[domain.YearMonth][]*domain.Transaction)
	for _, tr := range list {
		ym := domain.YearMonthOf(tr.Date)
		byMonth[ym] = append(byMonth[ym], tr)
	}
	restricted := Summarize(byMonth[month])

	filtered := Summarize(FilterByMonth(list, month))

	assert.True(t, filtered.TotalIncome.Equal(restricted.TotalIncome))
	assert.True(t, filtered.TotalExpense.Equal(restricted.TotalExpense))
	assert.True(t, filtered.TotalDebtPay.Equal(restricted.TotalDebtPay))
	assert.True(t, filtered.TotalDebtReceive.Equal(restricted.TotalDebtReceive))
	assert.True(t, filtered.Balance.Equal(restricted.Balance))
}

func TestDeleteUnknownID_AggregatesUnchanged(t *testing.T) {
	list := exampleTransactions()
	remaining := make([]*domain.Transaction, 0, len(list))
	for _, tr := range list {
		if tr.ID != "does-not-exist" {
			remaining = append(remaining, tr)
		}
	}

	assert.Equal(t, Summarize(list), Summarize(remaining))
	assert.Equal(t, AggregateByYear(list), AggregateByYear(remaining))
}

func TestAggregationService_CachedMatchesUncached(t *testing.T) {
	cached, err := NewAggregationService(100)
	require.NoError(t, err)
	defer cached.Close()
	uncached, err := NewAggregationService(0)
	require.NoError(t, err)

	list := randomTransactions(3, 100)
	month := mustMonth(t, "2022-07")

	first := cached.Aggregate(list, month)
	cached.cache.Wait()
	second := cached.Aggregate(list, month)
	plain := uncached.Aggregate(list, month)

	assert.Equal(t, plain.Summary, first.Summary)
	assert.Equal(t, plain.Summary, second.Summary)
	assert.Equal(t, plain.TopDescriptions, second.TopDescriptions)
	assert.Equal(t, plain.Yearly, second.Yearly)
}

func TestAggregationService_KeyChangesWithContent(t *testing.T) {
	list := exampleTransactions()
	month := mustMonth(t, "2024-01")

	changed := exampleTransactions()
	changed[0].Amount = decimal.NewFromInt(101)

	assert.Equal(t, aggregateKey(list, month), aggregateKey(exampleTransactions(), month))
	assert.NotEqual(t, aggregateKey(list, month), aggregateKey(changed, month))
	assert.NotEqual(t, aggregateKey(list, month), aggregateKey(list, mustMonth(t, "2024-02")))
}

func TestAggregationService_YearlyIgnoresMonth(t *testing.T) {
	svc, err := NewAggregationService(0)
	require.NoError(t, err)

	aggs := svc.Aggregate(exampleTransactions(), mustMonth(t, "2024-01"))

	assert.Len(t, aggs.Filtered, 2)
	require.Len(t, aggs.Yearly, 1)
	assert.True(t, aggs.Yearly[0].Income.Equal(decimal.NewFromInt(150)))
}
