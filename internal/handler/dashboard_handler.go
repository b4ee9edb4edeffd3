package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
	chartService     *service.ChartService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService, chartService *service.ChartService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		chartService:     chartService,
	}
}

// DashboardSummaryResponse represents the dashboard summary API response
type DashboardSummaryResponse struct {
	Month    string                       `json:"month"`
	Summary  SummaryResponse              `json:"summary"`
	Rejected []domain.RejectedTransaction `json:"rejected"`
}

// GetDashboard godoc
// @Summary Get the dashboard
// @Description Summary, top descriptions, yearly totals, chart and transaction list for one month
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM); absent selects the current month, empty selects every month"
// @Param compact query bool false "Compact chart layout (pie instead of bars)"
// @Success 200 {object} DashboardResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	query, err := parseViewQuery(c, h.dashboardService.CurrentMonth())
	if err != nil {
		return respondError(c, MsgFetchFailed, err)
	}

	view, err := h.dashboardService.Load(c.Request().Context(), session, query.Month, query.Compact)
	if err != nil {
		return respondError(c, MsgFetchFailed, err)
	}

	return c.JSON(http.StatusOK, toDashboardResponse(view))
}

// GetSummary godoc
// @Summary Get the month summary
// @Description Totals per transaction type and the balance for one month
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM)"
// @Success 200 {object} DashboardSummaryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	month, err := monthParam(c, h.dashboardService.CurrentMonth())
	if err != nil {
		return respondError(c, MsgFetchFailed, err)
	}

	aggs, rejected, err := h.dashboardService.Aggregates(c.Request().Context(), session, month)
	if err != nil {
		return respondError(c, MsgFetchFailed, err)
	}
	if rejected == nil {
		rejected = []domain.RejectedTransaction{}
	}

	return c.JSON(http.StatusOK, DashboardSummaryResponse{
		Month:    month.String(),
		Summary:  toSummaryResponse(aggs.Summary),
		Rejected: rejected,
	})
}

// GetChart godoc
// @Summary Get the top-descriptions chart
// @Description Chart of the ten largest descriptions of the month, as JSON or PNG
// @Tags dashboard
// @Produce json
// @Produce png
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM)"
// @Param compact query bool false "Compact chart layout (pie instead of bars)"
// @Param format query string false "json (default) or png"
// @Param width query int false "PNG width in pixels"
// @Param height query int false "PNG height in pixels"
// @Success 200 {object} domain.Chart
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /dashboard/chart [get]
func (h *DashboardHandler) GetChart(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	query, err := parseViewQuery(c, h.dashboardService.CurrentMonth())
	if err != nil {
		return respondError(c, MsgFetchFailed, err)
	}

	aggs, _, err := h.dashboardService.Aggregates(c.Request().Context(), session, query.Month)
	if err != nil {
		return respondError(c, MsgFetchFailed, err)
	}

	return h.writeChart(c, h.chartService.DescriptionChart(aggs.TopDescriptions, query.Compact))
}

// GetYearly godoc
// @Summary Get the yearly chart
// @Description Income and expense per calendar year over every transaction, as JSON or PNG
// @Tags dashboard
// @Produce json
// @Produce png
// @Security BearerAuth
// @Param format query string false "json (default) or png"
// @Param width query int false "PNG width in pixels"
// @Param height query int false "PNG height in pixels"
// @Success 200 {object} domain.Chart
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /dashboard/yearly [get]
func (h *DashboardHandler) GetYearly(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	// yearly totals ignore the month filter
	aggs, _, err := h.dashboardService.Aggregates(c.Request().Context(), session, domain.YearMonth{})
	if err != nil {
		return respondError(c, MsgFetchFailed, err)
	}

	return h.writeChart(c, h.chartService.YearlyChart(aggs.Yearly))
}

// writeChart answers with the chart description, or a PNG when format=png
func (h *DashboardHandler) writeChart(c echo.Context, chart *domain.Chart) error {
	switch c.QueryParam("format") {
	case "", "json":
		return c.JSON(http.StatusOK, chart)
	case "png":
	default:
		return NewValidationError(c, "Invalid format", []ValidationError{
			{Field: "format", Message: "Must be json or png"},
		})
	}

	width, err := intParam(c, "width", service.DefaultChartWidth, service.MaxChartDimension)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}
	height, err := intParam(c, "height", service.DefaultChartHeight, service.MaxChartDimension)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	data, err := h.chartService.RenderPNG(chart, width, height)
	if err != nil {
		log.Error().Err(err).Str("chart", chart.Title).Msg("Failed to render chart")
		return NewInternalError(c, "Failed to render chart")
	}
	return c.Blob(http.StatusOK, "image/png", data)
}
