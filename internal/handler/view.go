package handler

import (
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/util"
)

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Type        string `json:"type"`
}

// SummaryResponse represents the running totals for the selected month
type SummaryResponse struct {
	TotalIncome      string `json:"totalIncome"`
	TotalExpense     string `json:"totalExpense"`
	TotalDebtPay     string `json:"totalDebtPay"`
	TotalDebtReceive string `json:"totalDebtReceive"`
	Balance          string `json:"balance"`
}

// DescriptionAggregateResponse represents one top-description bucket
type DescriptionAggregateResponse struct {
	Description string `json:"description"`
	Income      string `json:"income"`
	Expense     string `json:"expense"`
	DebtPay     string `json:"debtPay"`
	DebtReceive string `json:"debtReceive"`
}

// YearAggregateResponse represents income and expense for one year
type YearAggregateResponse struct {
	Year    int    `json:"year"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

// DashboardResponse is the complete dashboard state
type DashboardResponse struct {
	Month           string                         `json:"month"`
	PreviousMonth   string                         `json:"previousMonth,omitempty"`
	NextMonth       string                         `json:"nextMonth,omitempty"`
	Summary         SummaryResponse                `json:"summary"`
	TopDescriptions []DescriptionAggregateResponse `json:"topDescriptions"`
	Yearly          []YearAggregateResponse        `json:"yearly"`
	Chart           *domain.Chart                  `json:"chart"`
	Transactions    []TransactionResponse          `json:"transactions"`
	Rejected        []domain.RejectedTransaction   `json:"rejected"`
}

// SessionResponse is returned after login or registration
type SessionResponse struct {
	SessionToken string `json:"sessionToken"`
	Username     string `json:"username"`
	ExpiresAt    string `json:"expiresAt"`
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		Description: tx.Description,
		Amount:      tx.Amount.StringFixed(2),
		Date:        tx.Date.Format(domain.DateLayout),
		Type:        string(tx.Type),
	}
}

func toTransactionResponses(txs []*domain.Transaction) []TransactionResponse {
	result := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		result[i] = toTransactionResponse(tx)
	}
	return result
}

func toSummaryResponse(s domain.Summary) SummaryResponse {
	return SummaryResponse{
		TotalIncome:      s.TotalIncome.StringFixed(2),
		TotalExpense:     s.TotalExpense.StringFixed(2),
		TotalDebtPay:     s.TotalDebtPay.StringFixed(2),
		TotalDebtReceive: s.TotalDebtReceive.StringFixed(2),
		Balance:          s.Balance.StringFixed(2),
	}
}

func toDescriptionResponses(aggs []*domain.DescriptionAggregate) []DescriptionAggregateResponse {
	result := make([]DescriptionAggregateResponse, len(aggs))
	for i, a := range aggs {
		result[i] = DescriptionAggregateResponse{
			Description: a.Description,
			Income:      a.Income.StringFixed(2),
			Expense:     a.Expense.StringFixed(2),
			DebtPay:     a.DebtPay.StringFixed(2),
			DebtReceive: a.DebtReceive.StringFixed(2),
		}
	}
	return result
}

func toYearResponses(years []*domain.YearAggregate) []YearAggregateResponse {
	result := make([]YearAggregateResponse, len(years))
	for i, y := range years {
		result[i] = YearAggregateResponse{
			Year:    y.Year,
			Income:  y.Income.StringFixed(2),
			Expense: y.Expense.StringFixed(2),
		}
	}
	return result
}

func toDashboardResponse(view *domain.DashboardView) DashboardResponse {
	rejected := view.Rejected
	if rejected == nil {
		rejected = []domain.RejectedTransaction{}
	}
	var next string
	if n := util.NextMonth(view.Month); !util.IsFutureMonth(n, time.Now()) {
		next = n.String()
	}
	return DashboardResponse{
		Month:           view.Month.String(),
		PreviousMonth:   util.PreviousMonth(view.Month).String(),
		NextMonth:       next,
		Summary:         toSummaryResponse(view.Summary),
		TopDescriptions: toDescriptionResponses(view.TopDescriptions),
		Yearly:          toYearResponses(view.Yearly),
		Chart:           view.Chart,
		Transactions:    toTransactionResponses(view.Transactions),
		Rejected:        rejected,
	}
}

func toSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		SessionToken: s.ID.String(),
		Username:     s.Username,
		ExpiresAt:    s.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
