package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/service"
	"github.com/dafibh/fortuna/fortuna-dashboard/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testSession() *domain.Session {
	return &domain.Session{
		ID:        uuid.New(),
		Username:  "alice",
		Token:     "token-alice",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// setupSessionContext puts the session where SessionAuth would
func setupSessionContext(c echo.Context, session *domain.Session) {
	ctx := context.WithValue(c.Request().Context(), middleware.SessionKey, session)
	c.SetRequest(c.Request().WithContext(ctx))
}

func seedTx(id, description, amount, date string, txType domain.TransactionType) *domain.Transaction {
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return &domain.Transaction{
		ID:          id,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Date:        d,
		Type:        txType,
	}
}

// seededGateway holds Salary 100 and Food 40 in January 2024 and Salary 50 in February 2024
func seededGateway() *testutil.MockGateway {
	gateway := testutil.NewMockGateway()
	gateway.AddTransaction(seedTx("1", "Salary", "100", "2024-01-05", domain.TransactionTypeIncome))
	gateway.AddTransaction(seedTx("2", "Food", "40", "2024-01-10", domain.TransactionTypeExpense))
	gateway.AddTransaction(seedTx("3", "Salary", "50", "2024-02-01", domain.TransactionTypeIncome))
	return gateway
}

type testServices struct {
	gateway   *testutil.MockGateway
	dashboard *service.DashboardService
	charts    *service.ChartService
	export    *service.ExportService
	publisher *testutil.MockPublisher
}

func setupServices(t *testing.T, gateway *testutil.MockGateway) testServices {
	t.Helper()
	aggregation, err := service.NewAggregationService(0)
	require.NoError(t, err)

	publisher := testutil.NewMockPublisher()
	transactions := service.NewTransactionService(gateway)
	transactions.SetEventPublisher(publisher)
	charts := service.NewChartService()

	return testServices{
		gateway:   gateway,
		dashboard: service.NewDashboardService(transactions, aggregation, charts),
		charts:    charts,
		export:    service.NewExportService(service.DefaultExportDateLayout),
		publisher: publisher,
	}
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}
