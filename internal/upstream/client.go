package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/rs/zerolog/log"
)

// maxErrorBody caps how much of a failed response body is read for the error message
const maxErrorBody = 4096

// errUnreadableBody marks a 2xx response whose body is empty or not the expected JSON
var errUnreadableBody = errors.New("unreadable response body")

// Error is returned when the upstream API answers with a non-2xx status
type Error struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: upstream returned status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: upstream returned status %d", e.Op, e.StatusCode)
}

// IsUnauthorized reports whether err is an upstream 401
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// StatusCode returns the upstream status carried by err, or 0 when err is not an upstream Error
func StatusCode(err error) int {
	var upErr *Error
	if errors.As(err, &upErr) {
		return upErr.StatusCode
	}
	return 0
}

// Client talks to the remote finance REST API.
// Every transaction call takes the session explicitly; the client holds no token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the API rooted at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithHTTPClient creates a Client with a caller supplied http.Client
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

var _ domain.TransactionGateway = (*Client)(nil)

type authResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Login exchanges credentials for an upstream bearer token
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	return c.authenticate(ctx, "login", "/api/auth/login", creds)
}

// Register creates an upstream account and returns its bearer token
func (c *Client) Register(ctx context.Context, creds domain.Credentials) (string, error) {
	return c.authenticate(ctx, "register", "/api/auth/register", creds)
}

func (c *Client) authenticate(ctx context.Context, op, path string, creds domain.Credentials) (string, error) {
	var resp authResponse
	if err := c.do(ctx, op, http.MethodPost, path, nil, creds, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%s: %w", op, domain.ErrInvalidAuthResponse)
	}
	return resp.Token, nil
}

// ListTransactions fetches the full transaction list of the session's user.
// Rows whose amount or date cannot be parsed are returned in Rejected.
func (c *Client) ListTransactions(ctx context.Context, session *domain.Session) (*domain.TransactionList, error) {
	var rows []wireTransaction
	if err := c.do(ctx, "list transactions", http.MethodGet, "/api/transactions", session, nil, &rows); err != nil {
		return nil, err
	}

	list := &domain.TransactionList{
		Transactions: make([]*domain.Transaction, 0, len(rows)),
	}
	for _, row := range rows {
		tx, err := row.toDomain()
		if err != nil {
			log.Warn().
				Err(err).
				Str("transaction_id", string(row.ID)).
				Str("username", session.Username).
				Msg("Rejected malformed upstream transaction")
			list.Rejected = append(list.Rejected, domain.RejectedTransaction{
				ID:     string(row.ID),
				Reason: err.Error(),
			})
			continue
		}
		list.Transactions = append(list.Transactions, tx)
	}
	return list, nil
}

// CreateTransaction posts a new transaction and returns the created record.
// A 2xx answer means the record exists upstream, so when the echoed record is missing or
// cannot be parsed the submitted fields are returned instead, with whatever id could be read.
func (c *Client) CreateTransaction(ctx context.Context, session *domain.Session, tx domain.NewTransaction) (*domain.Transaction, error) {
	body := newWireTransaction(tx)

	var row wireTransaction
	err := c.do(ctx, "create transaction", http.MethodPost, "/api/transactions", session, body, &row)
	if errors.Is(err, errUnreadableBody) {
		log.Warn().Err(err).Str("username", session.Username).Msg("Created transaction was not echoed back")
		return submittedTransaction("", tx), nil
	}
	if err != nil {
		return nil, err
	}

	created, err := row.toDomain()
	if err != nil {
		log.Warn().Err(err).Str("transaction_id", string(row.ID)).Msg("Created transaction echoed in unexpected format")
		return submittedTransaction(string(row.ID), tx), nil
	}
	return created, nil
}

func submittedTransaction(id string, tx domain.NewTransaction) *domain.Transaction {
	return &domain.Transaction{
		ID:          id,
		Description: tx.Description,
		Amount:      tx.Amount,
		Date:        tx.Date,
		Type:        tx.Type,
	}
}

// DeleteTransaction deletes a transaction by id
func (c *Client) DeleteTransaction(ctx context.Context, session *domain.Session, id string) error {
	path := "/api/transactions/" + url.PathEscape(id)
	return c.do(ctx, "delete transaction", http.MethodDelete, path, session, nil, nil)
}

// do issues one request. A nil session sends no Authorization header; a nil out discards the body.
func (c *Client) do(ctx context.Context, op, method, path string, session *domain.Session, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("op", op).Str("path", path).Msg("Upstream request failed")
		return fmt.Errorf("%s: failed to send request: %w", op, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Upstream request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		upErr := &Error{Op: op, StatusCode: resp.StatusCode}
		var parsed errorResponse
		if json.Unmarshal(raw, &parsed) == nil {
			upErr.Message = parsed.Message
		}
		return upErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: %w", op, errUnreadableBody, err)
	}
	return nil
}
