package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome      TransactionType = "income"
	TransactionTypeExpense     TransactionType = "expense"
	TransactionTypeDebtPay     TransactionType = "debt_pay"
	TransactionTypeDebtReceive TransactionType = "debt_receive"
)

// IsValid reports whether t is one of the four known transaction types
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeDebtPay, TransactionTypeDebtReceive:
		return true
	}
	return false
}

// DebtDirection is the direction chosen on the debt form
type DebtDirection string

const (
	DebtDirectionToGet  DebtDirection = "to_get"
	DebtDirectionToGive DebtDirection = "to_give"
)

// TransactionType maps a debt direction onto the transaction type it is stored as
func (d DebtDirection) TransactionType() (TransactionType, bool) {
	switch d {
	case DebtDirectionToGet:
		return TransactionTypeDebtReceive, true
	case DebtDirectionToGive:
		return TransactionTypeDebtPay, true
	}
	return "", false
}

// DateLayout is the wire and form layout for calendar dates
const DateLayout = "2006-01-02"

// Transaction is a single dated financial event owned by the upstream store.
// Date holds the calendar date at midnight UTC.
type Transaction struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Type        TransactionType `json:"type"`
}

// NewTransaction is the payload forwarded upstream when a form is submitted
type NewTransaction struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Type        TransactionType `json:"type"`
	Note        *string         `json:"note,omitempty"`
}

// RejectedTransaction is an upstream row that could not be parsed into a Transaction
type RejectedTransaction struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// TransactionList is the result of fetching the full list from the upstream store
type TransactionList struct {
	Transactions []*Transaction
	Rejected     []RejectedTransaction
}

// Credentials are the username and password sent to the upstream auth endpoints
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TransactionGateway is the remote REST API that owns users and transactions
type TransactionGateway interface {
	Login(ctx context.Context, creds Credentials) (token string, err error)
	Register(ctx context.Context, creds Credentials) (token string, err error)
	ListTransactions(ctx context.Context, session *Session) (*TransactionList, error)
	CreateTransaction(ctx context.Context, session *Session, tx NewTransaction) (*Transaction, error)
	DeleteTransaction(ctx context.Context, session *Session, id string) error
}
