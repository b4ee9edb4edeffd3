package upstream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// Reasons attached to upstream rows that are rejected
var (
	errAmountMissing    = errors.New("amount is missing")
	errAmountNotNumeric = errors.New("amount is not numeric")
)

// wireID accepts ids sent as JSON strings or numbers
type wireID string

func (id *wireID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = wireID(n.String())
	return nil
}

// wireTransaction is a transaction as sent by the upstream API.
// Amount stays raw so a malformed value rejects one row rather than the whole list.
type wireTransaction struct {
	ID          wireID          `json:"id"`
	Description string          `json:"description"`
	Amount      json.RawMessage `json:"amount"`
	Date        string          `json:"date"`
	Type        string          `json:"type"`
}

func (w wireTransaction) toDomain() (*domain.Transaction, error) {
	amount, err := parseAmount(w.Amount)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(w.Date)
	if err != nil {
		return nil, err
	}
	return &domain.Transaction{
		ID:          string(w.ID),
		Description: w.Description,
		Amount:      amount,
		Date:        date,
		Type:        domain.TransactionType(w.Type),
	}, nil
}

// parseAmount accepts a JSON number or a numeric string
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, errAmountMissing
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s", errAmountNotNumeric, raw)
		}
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", errAmountNotNumeric, text)
	}
	return amount, nil
}

// parseDate reads the calendar date from the first 10 characters of an ISO date or timestamp
func parseDate(s string) (time.Time, error) {
	if len(s) < len(domain.DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	date, err := time.Parse(domain.DateLayout, s[:len(domain.DateLayout)])
	if err != nil {
		return time.Time{}, errors.Join(domain.ErrInvalidDate, err)
	}
	return date, nil
}

// wireNewTransaction is the POST body; fields mirror the submitted form
type wireNewTransaction struct {
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Note        *string `json:"note,omitempty"`
}

func newWireTransaction(tx domain.NewTransaction) wireNewTransaction {
	return wireNewTransaction{
		Description: tx.Description,
		Amount:      tx.Amount.String(),
		Date:        tx.Date.Format(domain.DateLayout),
		Type:        string(tx.Type),
		Note:        tx.Note,
	}
}
