package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(token string) *domain.Session {
	return &domain.Session{
		ID:        uuid.New(),
		Username:  "alice",
		Token:     token,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestClient_Login_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var creds domain.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice", creds.Username)
		assert.Equal(t, "secret", creds.Password)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"upstream-token"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	token, err := client.Login(context.Background(), domain.Credentials{Username: "alice", Password: "secret"})

	require.NoError(t, err)
	assert.Equal(t, "upstream-token", token)
}

func TestClient_Register_UsesRegisterPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		w.Write([]byte(`{"token":"fresh"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second)
	token, err := client.Register(context.Background(), domain.Credentials{Username: "bob", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
}

func TestClient_Login_MissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Login(context.Background(), domain.Credentials{Username: "alice", Password: "secret"})

	assert.ErrorIs(t, err, domain.ErrInvalidAuthResponse)
}

func TestClient_Login_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Login(context.Background(), domain.Credentials{Username: "alice", Password: "wrong"})

	var upErr *Error
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusUnauthorized, upErr.StatusCode)
	assert.Equal(t, "Invalid credentials", upErr.Message)
	assert.True(t, IsUnauthorized(err))
}

func TestClient_ListTransactions_ParsesMixedFormats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/transactions", r.URL.Path)
		assert.Equal(t, "Bearer upstream-token", r.Header.Get("Authorization"))

		w.Write([]byte(`[
			{"id": 1, "description": "Salary", "amount": "100.50", "date": "2024-01-05T00:00:00.000Z", "type": "income"},
			{"id": "abc", "description": "Food", "amount": 40, "date": "2024-01-10", "type": "expense"},
			{"id": "bad", "description": "Broken", "amount": "lots", "date": "2024-01-11", "type": "expense"},
			{"id": "nodate", "description": "Undated", "amount": 5, "date": "", "type": "expense"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	list, err := client.ListTransactions(context.Background(), newTestSession("upstream-token"))
	require.NoError(t, err)

	require.Len(t, list.Transactions, 2)
	first := list.Transactions[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "Salary", first.Description)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, domain.TransactionTypeIncome, first.Type)

	second := list.Transactions[1]
	assert.Equal(t, "abc", second.ID)
	assert.True(t, second.Amount.Equal(decimal.NewFromInt(40)))

	require.Len(t, list.Rejected, 2)
	assert.Equal(t, "bad", list.Rejected[0].ID)
	assert.Contains(t, list.Rejected[0].Reason, "amount")
	assert.Equal(t, "nodate", list.Rejected[1].ID)
	assert.Contains(t, list.Rejected[1].Reason, "date")
}

func TestClient_ListTransactions_RejectionReasons(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": "refund", "description": "Refund", "amount": -12.5, "date": "2024-02-01", "type": "expense"},
			{"id": "text", "description": "Broken", "amount": "lots", "date": "2024-02-02", "type": "expense"},
			{"id": "null", "description": "Empty", "amount": null, "date": "2024-02-03", "type": "expense"},
			{"id": "object", "description": "Nested", "amount": {"value": 1}, "date": "2024-02-04", "type": "expense"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	list, err := client.ListTransactions(context.Background(), newTestSession("tok"))
	require.NoError(t, err)

	require.Len(t, list.Transactions, 1)
	assert.Equal(t, "refund", list.Transactions[0].ID)
	assert.True(t, list.Transactions[0].Amount.Equal(decimal.RequireFromString("-12.5")))

	require.Len(t, list.Rejected, 3)
	reasons := map[string]string{}
	for _, r := range list.Rejected {
		reasons[r.ID] = r.Reason
		assert.NotContains(t, r.Reason, "non-negative")
	}
	assert.Equal(t, `amount is not numeric: "lots"`, reasons["text"])
	assert.Equal(t, "amount is missing", reasons["null"])
	assert.Contains(t, reasons["object"], "amount is not numeric")
}

func TestClient_CreateTransaction_SendsFormFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Groceries", body["description"])
		assert.Equal(t, "12.5", body["amount"])
		assert.Equal(t, "2024-03-02", body["date"])
		assert.Equal(t, "expense", body["type"])
		_, hasNote := body["note"]
		assert.False(t, hasNote)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"n1","description":"Groceries","amount":12.5,"date":"2024-03-02T00:00:00Z","type":"expense"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	created, err := client.CreateTransaction(context.Background(), newTestSession("tok"), domain.NewTransaction{
		Description: "Groceries",
		Amount:      decimal.RequireFromString("12.5"),
		Date:        time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		Type:        domain.TransactionTypeExpense,
	})

	require.NoError(t, err)
	assert.Equal(t, "n1", created.ID)
	assert.Equal(t, domain.TransactionTypeExpense, created.Type)
}

func TestClient_CreateTransaction_UnparsableEchoFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"n2"}`))
	}))
	defer srv.Close()

	note := "dinner"
	client := NewClient(srv.URL, time.Second)
	created, err := client.CreateTransaction(context.Background(), newTestSession("tok"), domain.NewTransaction{
		Description: "Alice",
		Amount:      decimal.NewFromInt(20),
		Date:        time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		Type:        domain.TransactionTypeDebtReceive,
		Note:        &note,
	})

	require.NoError(t, err)
	assert.Equal(t, "n2", created.ID)
	assert.Equal(t, "Alice", created.Description)
	assert.True(t, created.Amount.Equal(decimal.NewFromInt(20)))
}

func TestClient_CreateTransaction_EmptyCreatedResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"201 without body", http.StatusCreated, ""},
		{"200 without body", http.StatusOK, ""},
		{"plain text body", http.StatusCreated, "Created"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, time.Second)
			created, err := client.CreateTransaction(context.Background(), newTestSession("tok"), domain.NewTransaction{
				Description: "Rent",
				Amount:      decimal.NewFromInt(900),
				Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				Type:        domain.TransactionTypeExpense,
			})

			require.NoError(t, err)
			assert.Empty(t, created.ID)
			assert.Equal(t, "Rent", created.Description)
			assert.True(t, created.Amount.Equal(decimal.NewFromInt(900)))
			assert.Equal(t, domain.TransactionTypeExpense, created.Type)
		})
	}
}

func TestClient_ListTransactions_EmptyBodyFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.ListTransactions(context.Background(), newTestSession("tok"))

	assert.ErrorIs(t, err, errUnreadableBody)
}

func TestClient_DeleteTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/transactions/abc-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.DeleteTransaction(context.Background(), newTestSession("tok"), "abc-1")

	assert.NoError(t, err)
}

func TestClient_DeleteTransaction_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.DeleteTransaction(context.Background(), newTestSession("tok"), "missing")

	var upErr *Error
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusNotFound, upErr.StatusCode)
	assert.Empty(t, upErr.Message)
	assert.Equal(t, "delete transaction: upstream returned status 404", err.Error())
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, time.Second)
	_, err := client.ListTransactions(ctx, newTestSession("tok"))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatusCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", &Error{Op: "list transactions", StatusCode: http.StatusBadGateway})

	assert.Equal(t, http.StatusBadGateway, StatusCode(wrapped))
	assert.Equal(t, 0, StatusCode(errors.New("dial tcp: connection refused")))
	assert.False(t, IsUnauthorized(wrapped))
}
