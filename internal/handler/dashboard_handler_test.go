package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"testing"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDashboardHandler(t *testing.T) (*DashboardHandler, testServices) {
	t.Helper()
	svcs := setupServices(t, seededGateway())
	return NewDashboardHandler(svcs.dashboard, svcs.charts), svcs
}

func TestGetDashboard_MonthView(t *testing.T) {
	h, _ := setupDashboardHandler(t)

	c, rec := newSessionContext(http.MethodGet, "/api/v1/dashboard?month=2024-01", "")
	require.NoError(t, h.GetDashboard(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	assert.Equal(t, "2024-01", response.Month)
	assert.Equal(t, "2023-12", response.PreviousMonth)
	assert.Equal(t, "2024-02", response.NextMonth)
	assert.Equal(t, "100.00", response.Summary.TotalIncome)
	assert.Equal(t, "40.00", response.Summary.TotalExpense)
	assert.Equal(t, "60.00", response.Summary.Balance)

	require.Len(t, response.TopDescriptions, 2)
	assert.Equal(t, "Salary", response.TopDescriptions[0].Description)
	assert.Equal(t, "100.00", response.TopDescriptions[0].Income)
	assert.Equal(t, "Food", response.TopDescriptions[1].Description)

	// yearly ignores the month filter
	require.Len(t, response.Yearly, 1)
	assert.Equal(t, 2024, response.Yearly[0].Year)
	assert.Equal(t, "150.00", response.Yearly[0].Income)

	require.NotNil(t, response.Chart)
	assert.Equal(t, domain.ChartKindBar, response.Chart.Kind)
	assert.Len(t, response.Transactions, 2)
	assert.NotNil(t, response.Rejected)
}

func TestGetDashboard_CompactUsesPie(t *testing.T) {
	h, _ := setupDashboardHandler(t)

	c, rec := newSessionContext(http.MethodGet, "/api/v1/dashboard?month=2024-01&compact=true", "")
	require.NoError(t, h.GetDashboard(c))

	var response DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.NotNil(t, response.Chart)
	assert.Equal(t, domain.ChartKindPie, response.Chart.Kind)
	require.Len(t, response.Chart.Slices, 4)
	assert.Equal(t, "71.4", response.Chart.Slices[0].Percent.String())
}

func TestGetDashboard_InvalidCompact(t *testing.T) {
	h, _ := setupDashboardHandler(t)

	c, rec := newSessionContext(http.MethodGet, "/api/v1/dashboard?compact=maybe", "")
	require.NoError(t, h.GetDashboard(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDashboard_SurfacesRejectedRows(t *testing.T) {
	h, svcs := setupDashboardHandler(t)
	svcs.gateway.Rejected = []domain.RejectedTransaction{{ID: "bad", Reason: "amount is missing"}}

	c, rec := newSessionContext(http.MethodGet, "/api/v1/dashboard?month=", "")
	require.NoError(t, h.GetDashboard(c))

	var response DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Rejected, 1)
	assert.Equal(t, "bad", response.Rejected[0].ID)
	assert.Equal(t, "150.00", response.Summary.TotalIncome)
}

func TestGetDashboard_UpstreamFailure(t *testing.T) {
	h, svcs := setupDashboardHandler(t)
	svcs.gateway.ListErr = errors.New("no route to host")

	c, rec := newSessionContext(http.MethodGet, "/api/v1/dashboard", "")
	require.NoError(t, h.GetDashboard(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, MsgFetchFailed, decodeProblem(t, rec).Detail)
}

func TestGetSummary(t *testing.T) {
	h, _ := setupDashboardHandler(t)

	c, rec := newSessionContext(http.MethodGet, "/api/v1/dashboard/summary?month=2024-02", "")
	require.NoError(t, h.GetSummary(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response DashboardSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "2024-02", response.Month)
	assert.Equal(t, "50.00", response.Summary.TotalIncome)
	assert.Equal(t, "50.00", response.Summary.Balance)
	assert.Empty(t, response.Rejected)
}

func TestGetChart_JSON(t *testing.T) {
	h, _ := setupDashboardHandler(t)

	c, rec := newSessionContext(http.MethodGet, "/api/v1/dashboard/chart?month=2024-01", "")
	require.NoError(t, h.GetChart(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var chart domain.Chart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	assert.Equal(t, domain.ChartKindBar, chart.Kind)
	require.Len(t, chart.Bars, 2)
	assert.Equal(t, "Salary", chart.Bars[0].Label)
}

func TestGetChart_PNG(t *testing.T) {
	h, _ := setupDashboardHandler(t)

	c, rec := newSessionContext(http.MethodGet, "/api/v1/dashboard/chart?month=2024-01&format=png&width=320&height=200", "")
	require.NoError(t, h.GetChart(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestGetChart_InvalidFormat(t *testing.T) {
	h, _ := setupDashboardHandler(t)

	c, rec := newSessionContext(http.MethodGet, "/api/v1/dashboard/chart?format=svg", "")
	require.NoError(t, h.GetChart(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetChart_InvalidWidth(t *testing.T) {
	h, _ := setupDashboardHandler(t)

	c, rec := newSessionContext(http.MethodGet, "/api/v1/dashboard/chart?format=png&width=99999", "")
	require.NoError(t, h.GetChart(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetYearly_AlwaysBar(t *testing.T) {
	h, _ := setupDashboardHandler(t)

	c, rec := newSessionContext(http.MethodGet, "/api/v1/dashboard/yearly?compact=true", "")
	require.NoError(t, h.GetYearly(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var chart domain.Chart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	assert.Equal(t, domain.ChartKindBar, chart.Kind)
	require.Len(t, chart.Bars, 1)
	assert.Equal(t, "2024", chart.Bars[0].Label)
	assert.Equal(t, "150", chart.Bars[0].Values["income"].String())
	assert.Equal(t, "40", chart.Bars[0].Values["expense"].String())
}
