package domain

import "github.com/shopspring/decimal"

// MaxTopDescriptions is the number of description buckets kept for the chart
const MaxTopDescriptions = 10

// DescriptionAggregate sums amounts per transaction type for one description
type DescriptionAggregate struct {
	Description string          `json:"description"`
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	DebtPay     decimal.Decimal `json:"debt_pay"`
	DebtReceive decimal.Decimal `json:"debt_receive"`
}

// Total returns the sum of all four fields
func (a *DescriptionAggregate) Total() decimal.Decimal {
	return a.Income.Add(a.Expense).Add(a.DebtPay).Add(a.DebtReceive)
}

// YearAggregate sums income and expense for one calendar year
type YearAggregate struct {
	Year    int             `json:"year"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Summary holds the running totals over the month-filtered list
type Summary struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpense     decimal.Decimal `json:"totalExpense"`
	TotalDebtPay     decimal.Decimal `json:"totalDebtPay"`
	TotalDebtReceive decimal.Decimal `json:"totalDebtReceive"`
	Balance          decimal.Decimal `json:"balance"`
}

// Aggregates bundles every value derived from one transaction list and month
type Aggregates struct {
	Filtered        []*Transaction
	Summary         Summary
	TopDescriptions []*DescriptionAggregate
	Yearly          []*YearAggregate
}

// DashboardView is the complete dashboard state for one session and month
type DashboardView struct {
	Month           YearMonth
	Summary         Summary
	TopDescriptions []*DescriptionAggregate
	Yearly          []*YearAggregate
	Chart           *Chart
	Transactions    []*Transaction
	Rejected        []RejectedTransaction
}
