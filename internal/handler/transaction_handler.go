package handler

import (
	"fmt"
	"net/http"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	dashboardService *service.DashboardService
	exportService    *service.ExportService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(dashboardService *service.DashboardService, exportService *service.ExportService) *TransactionHandler {
	return &TransactionHandler{
		dashboardService: dashboardService,
		exportService:    exportService,
	}
}

// CreateTransactionRequest represents the add-transaction form
type CreateTransactionRequest struct {
	Description string    `json:"description"`
	Amount      FormValue `json:"amount" swaggertype:"string"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
}

// CreateDebtRequest represents the debt form
type CreateDebtRequest struct {
	FriendName  string    `json:"friendName"`
	Amount      FormValue `json:"amount" swaggertype:"string"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
}

// GetTransactions godoc
// @Summary List transactions
// @Description List the transactions of the selected month. Without month the current month is used; an empty month lists everything.
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM)"
// @Success 200 {array} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	month, err := monthParam(c, h.dashboardService.CurrentMonth())
	if err != nil {
		return respondError(c, MsgFetchFailed, err)
	}

	transactions, err := h.dashboardService.Filtered(c.Request().Context(), session, month)
	if err != nil {
		return respondError(c, MsgFetchFailed, err)
	}

	return c.JSON(http.StatusOK, toTransactionResponses(transactions))
}

// CreateTransaction godoc
// @Summary Add a transaction
// @Description Submit the add-transaction form and return the refreshed dashboard
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "Transaction form"
// @Param month query string false "Month (YYYY-MM)"
// @Param compact query bool false "Compact chart layout"
// @Success 201 {object} DashboardResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	query, err := parseViewQuery(c, h.dashboardService.CurrentMonth())
	if err != nil {
		return respondError(c, MsgAddFailed, err)
	}

	form := service.TransactionForm{
		Description: req.Description,
		Amount:      string(req.Amount),
		Date:        req.Date,
		Type:        req.Type,
	}
	view, err := h.dashboardService.AddTransaction(c.Request().Context(), session, form, query.Month, query.Compact)
	if err != nil {
		return respondError(c, MsgAddFailed, err)
	}

	return c.JSON(http.StatusCreated, toDashboardResponse(view))
}

// CreateDebt godoc
// @Summary Record a debt
// @Description Submit the debt form and return the refreshed dashboard. to_give is stored as debt_pay, to_get as debt_receive.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateDebtRequest true "Debt form"
// @Param month query string false "Month (YYYY-MM)"
// @Param compact query bool false "Compact chart layout"
// @Success 201 {object} DashboardResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /debts [post]
func (h *TransactionHandler) CreateDebt(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateDebtRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	query, err := parseViewQuery(c, h.dashboardService.CurrentMonth())
	if err != nil {
		return respondError(c, MsgAddFailed, err)
	}

	form := service.DebtForm{
		FriendName:  req.FriendName,
		Amount:      string(req.Amount),
		Date:        req.Date,
		Type:        req.Type,
		Description: req.Description,
	}
	view, err := h.dashboardService.AddDebt(c.Request().Context(), session, form, query.Month, query.Compact)
	if err != nil {
		return respondError(c, MsgAddFailed, err)
	}

	return c.JSON(http.StatusCreated, toDashboardResponse(view))
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Description Delete a transaction after explicit confirmation and return the refreshed dashboard
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param confirm query bool true "Must be true"
// @Param month query string false "Month (YYYY-MM)"
// @Param compact query bool false "Compact chart layout"
// @Success 200 {object} DashboardResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	confirmed, err := boolParam(c, "confirm")
	if err != nil {
		return respondError(c, MsgDeleteFailed, err)
	}
	query, err := parseViewQuery(c, h.dashboardService.CurrentMonth())
	if err != nil {
		return respondError(c, MsgDeleteFailed, err)
	}

	view, err := h.dashboardService.DeleteTransaction(c.Request().Context(), session, c.Param("id"), confirmed, query.Month, query.Compact)
	if err != nil {
		return respondError(c, MsgDeleteFailed, err)
	}

	return c.JSON(http.StatusOK, toDashboardResponse(view))
}

// ExportTransactions godoc
// @Summary Export transactions
// @Description Download the listed transactions of the selected month as an xlsx workbook
// @Tags transactions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM)"
// @Success 200 {file} file
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /transactions/export [get]
func (h *TransactionHandler) ExportTransactions(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	month, err := monthParam(c, h.dashboardService.CurrentMonth())
	if err != nil {
		return respondError(c, MsgExportFailed, err)
	}

	transactions, err := h.dashboardService.Filtered(c.Request().Context(), session, month)
	if err != nil {
		return respondError(c, MsgExportFailed, err)
	}

	data, err := h.exportService.Export(transactions)
	if err != nil {
		return respondError(c, MsgExportFailed, err)
	}

	log.Info().
		Str("username", session.Username).
		Str("month", month.String()).
		Int("rows", len(transactions)).
		Msg("Transactions exported")

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", domain.ExportFileName))
	return c.Blob(http.StatusOK, domain.ExportContentType, data)
}

// ArchiveExport godoc
// @Summary Archive an export
// @Description Upload the export of the selected month to object storage and return a temporary download link
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM)"
// @Success 201 {object} domain.ExportArchive
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /transactions/export/archive [post]
func (h *TransactionHandler) ArchiveExport(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if !h.exportService.ArchiveEnabled() {
		return respondError(c, MsgExportFailed, domain.ErrExportUnavailable)
	}

	month, err := monthParam(c, h.dashboardService.CurrentMonth())
	if err != nil {
		return respondError(c, MsgExportFailed, err)
	}

	transactions, err := h.dashboardService.Filtered(c.Request().Context(), session, month)
	if err != nil {
		return respondError(c, MsgExportFailed, err)
	}

	archive, err := h.exportService.Archive(c.Request().Context(), session, transactions)
	if err != nil {
		return respondError(c, MsgExportFailed, err)
	}

	return c.JSON(http.StatusCreated, archive)
}
