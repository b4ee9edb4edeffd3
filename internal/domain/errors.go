package domain

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInternalError = errors.New("internal error")

	// Sessions
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExpired      = errors.New("session expired")
	ErrCredentialsRequired = errors.New("username and password are required")
	ErrInvalidAuthResponse = errors.New("invalid response from server")

	// Forms
	ErrFormIncomplete         = errors.New("required fields are empty")
	ErrInvalidAmount          = errors.New("amount must be a non-negative number")
	ErrInvalidDate            = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidDebtDirection   = errors.New("invalid debt direction")
	ErrDeleteNotConfirmed     = errors.New("deletion must be confirmed")

	// Dashboard
	ErrInvalidMonth      = errors.New("invalid month")
	ErrRefreshFailed     = errors.New("transaction list could not be refreshed")
	ErrNothingToExport   = errors.New("no transactions found")
	ErrExportUnavailable = errors.New("export archive is not configured")
)

// Validation constants
const (
	MaxDescriptionLength = 255
	MaxNoteLength        = 1000
)
