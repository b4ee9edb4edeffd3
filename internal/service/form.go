package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// TransactionForm is the submitted add-transaction form, fields as entered
type TransactionForm struct {
	Description string
	Amount      string
	Date        string
	Type        string
}

// DebtForm is the submitted debt form, fields as entered
type DebtForm struct {
	FriendName  string
	Amount      string
	Date        string
	Type        string
	Description string
}

// Default form values
const (
	DefaultTransactionType = domain.TransactionTypeExpense
	DefaultDebtDirection   = domain.DebtDirectionToGet
)

// Validate checks the form and converts it into the upstream payload.
// Any empty required field yields domain.ErrFormIncomplete before other checks run.
func (f TransactionForm) Validate() (domain.NewTransaction, error) {
	description := strings.TrimSpace(f.Description)
	if description == "" || strings.TrimSpace(f.Amount) == "" || strings.TrimSpace(f.Date) == "" {
		return domain.NewTransaction{}, domain.ErrFormIncomplete
	}
	if len(description) > domain.MaxDescriptionLength {
		return domain.NewTransaction{}, fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidInput, domain.MaxDescriptionLength)
	}

	amount, err := parseFormAmount(f.Amount)
	if err != nil {
		return domain.NewTransaction{}, err
	}
	date, err := parseFormDate(f.Date)
	if err != nil {
		return domain.NewTransaction{}, err
	}

	txType := DefaultTransactionType
	if t := strings.TrimSpace(f.Type); t != "" {
		txType = domain.TransactionType(t)
	}
	if !txType.IsValid() {
		return domain.NewTransaction{}, domain.ErrInvalidTransactionType
	}

	return domain.NewTransaction{
		Description: description,
		Amount:      amount,
		Date:        date,
		Type:        txType,
	}, nil
}

// Validate checks the debt form and converts it into the upstream payload.
// The friend's name becomes the description; the optional text travels as the note.
func (f DebtForm) Validate() (domain.NewTransaction, error) {
	friend := strings.TrimSpace(f.FriendName)
	if friend == "" || strings.TrimSpace(f.Amount) == "" || strings.TrimSpace(f.Date) == "" {
		return domain.NewTransaction{}, domain.ErrFormIncomplete
	}
	if len(friend) > domain.MaxDescriptionLength {
		return domain.NewTransaction{}, fmt.Errorf("%w: friend name exceeds %d characters", domain.ErrInvalidInput, domain.MaxDescriptionLength)
	}

	amount, err := parseFormAmount(f.Amount)
	if err != nil {
		return domain.NewTransaction{}, err
	}
	date, err := parseFormDate(f.Date)
	if err != nil {
		return domain.NewTransaction{}, err
	}

	direction := DefaultDebtDirection
	if d := strings.TrimSpace(f.Type); d != "" {
		direction = domain.DebtDirection(d)
	}
	txType, ok := direction.TransactionType()
	if !ok {
		return domain.NewTransaction{}, domain.ErrInvalidDebtDirection
	}

	var note *string
	if trimmed := strings.TrimSpace(f.Description); trimmed != "" {
		if len(trimmed) > domain.MaxNoteLength {
			return domain.NewTransaction{}, fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidInput, domain.MaxNoteLength)
		}
		note = &trimmed
	}

	return domain.NewTransaction{
		Description: friend,
		Amount:      amount,
		Date:        date,
		Type:        txType,
		Note:        note,
	}, nil
}

func parseFormAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || amount.IsNegative() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return amount, nil
}

// parseFormDate accepts YYYY-MM-DD, or a longer timestamp truncated to its date
func parseFormDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(domain.DateLayout) {
		s = s[:len(domain.DateLayout)]
	}
	date, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return date, nil
}
