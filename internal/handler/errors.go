package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/upstream"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Static messages shown when an operation fails
const (
	MsgFetchFailed    = "Failed to fetch transactions"
	MsgAddFailed      = "Failed to add transaction"
	MsgDeleteFailed   = "Failed to delete transaction"
	MsgExportFailed   = "Failed to export transactions"
	MsgLoginFailed    = "Login failed"
	MsgRegisterFailed = "Registration failed"
	MsgSessionExpired = "Session expired"
	MsgNothingToShow  = "No transactions found"
)

// respondError maps a service error onto a Problem Details response.
// message is the static text for the operation that failed.
func respondError(c echo.Context, message string, err error) error {
	if resp, ok := validationResponse(c, err); ok {
		return resp
	}

	switch {
	case errors.Is(err, domain.ErrNothingToExport):
		return NewNotFoundError(c, MsgNothingToShow)
	case errors.Is(err, domain.ErrExportUnavailable):
		return NewServiceUnavailableError(c, "Export archive is not configured")
	case errors.Is(err, domain.ErrRefreshFailed):
		// the mutation went through; only the refetch failed
		message = MsgFetchFailed
	}

	if upstream.IsUnauthorized(err) {
		return NewUnauthorizedError(c, MsgSessionExpired)
	}
	if errors.Is(err, domain.ErrNotFound) || upstream.StatusCode(err) == http.StatusNotFound {
		return NewNotFoundError(c, message)
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(message)
	return NewBadGatewayError(c, message)
}

// respondAuthError maps a login or registration failure. Upstream rejections are
// answered by rejected with the static message; network failures become 502.
func respondAuthError(c echo.Context, message string, rejected func(echo.Context, string) error, err error) error {
	if errors.Is(err, domain.ErrCredentialsRequired) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "username", Message: "Username and password are required"},
		})
	}

	status := upstream.StatusCode(err)
	if status >= 400 && status < 500 {
		return rejected(c, message)
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(message)
	return NewBadGatewayError(c, message)
}

// validationResponse answers form and query validation failures
func validationResponse(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrFormIncomplete):
		return NewUnprocessableError(c, ""), true
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a non-negative number"},
		}), true
	case errors.Is(err, domain.ErrInvalidDate):
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be in YYYY-MM-DD format"},
		}), true
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return NewValidationError(c, "Invalid type", []ValidationError{
			{Field: "type", Message: "Must be one of income, expense, debt_pay, debt_receive"},
		}), true
	case errors.Is(err, domain.ErrInvalidDebtDirection):
		return NewValidationError(c, "Invalid type", []ValidationError{
			{Field: "type", Message: "Must be to_get or to_give"},
		}), true
	case errors.Is(err, domain.ErrDeleteNotConfirmed):
		return NewValidationError(c, "Deletion not confirmed", []ValidationError{
			{Field: "confirm", Message: "Must be true to delete"},
		}), true
	case errors.Is(err, domain.ErrInvalidMonth):
		return NewValidationError(c, "Invalid month", []ValidationError{
			{Field: "month", Message: "Must be in YYYY-MM format"},
		}), true
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, err.Error(), nil), true
	}
	return nil, false
}
