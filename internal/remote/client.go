package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/models"
)

// Client is the HTTP implementation of Store, talking JSON to the hosted
// document store API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// ClientConfig configures the remote store client
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a new remote store client
func NewClient(cfg ClientConfig, logger *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type createResponse struct {
	ID string `json:"id"`
}

type createOrderRequest struct {
	OfflineID string       `json:"offline_id"`
	Order     models.Order `json:"order"`
}

type stockAdjustmentRequest struct {
	Delta float64 `json:"delta"`
}

// CreateOrder implements Store.CreateOrder
func (c *Client) CreateOrder(ctx context.Context, order models.Order, offlineID string) (string, error) {
	body := createOrderRequest{OfflineID: offlineID, Order: order}

	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/v1/orders", body, &resp, "CreateOrder", CollectionOrders); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", NewRemoteError("CreateOrder", CollectionOrders, fmt.Errorf("%w: missing document id in response", ErrInvalidPayload), false)
	}
	return resp.ID, nil
}

// OrdersByDay implements Store.OrdersByDay
func (c *Client) OrdersByDay(ctx context.Context, dateKey string) ([]models.Order, error) {
	var orders []models.Order
	path := "/v1/orders?date=" + url.QueryEscape(dateKey)
	if err := c.do(ctx, http.MethodGet, path, nil, &orders, "OrdersByDay", CollectionOrders); err != nil {
		return nil, err
	}
	return orders, nil
}

// DeleteOrder implements Store.DeleteOrder
func (c *Client) DeleteOrder(ctx context.Context, serverID string) error {
	path := "/v1/orders/" + url.PathEscape(serverID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, "DeleteOrder", CollectionOrders)
}

// ExpensesByDay implements Store.ExpensesByDay
func (c *Client) ExpensesByDay(ctx context.Context, dateKey string) ([]models.Expense, error) {
	var expenses []models.Expense
	path := "/v1/expenses?date=" + url.QueryEscape(dateKey)
	if err := c.do(ctx, http.MethodGet, path, nil, &expenses, "ExpensesByDay", CollectionExpenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// AdjustStock implements Store.AdjustStock
func (c *Client) AdjustStock(ctx context.Context, productID string, delta float64) error {
	path := "/v1/products/" + url.PathEscape(productID) + "/stock-adjustments"
	return c.do(ctx, http.MethodPost, path, stockAdjustmentRequest{Delta: delta}, nil, "AdjustStock", CollectionProducts)
}

// ListProducts implements Store.ListProducts
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/v1/products", nil, &products, "ListProducts", CollectionProducts); err != nil {
		return nil, err
	}
	return products, nil
}

// ListCustomers implements Store.ListCustomers
func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := c.do(ctx, http.MethodGet, "/v1/customers", nil, &customers, "ListCustomers", CollectionCustomers); err != nil {
		return nil, err
	}
	return customers, nil
}

// CreateReconciliation implements Store.CreateReconciliation
func (c *Client) CreateReconciliation(ctx context.Context, record models.ReconciliationRecord) (string, error) {
	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/v1/reconciliations", record, &resp, "CreateReconciliation", CollectionReconciliations); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// ReconciliationByDate implements Store.ReconciliationByDate
func (c *Client) ReconciliationByDate(ctx context.Context, dateKey string) (*models.ReconciliationRecord, error) {
	var record models.ReconciliationRecord
	path := "/v1/reconciliations/" + url.PathEscape(dateKey)
	if err := c.do(ctx, http.MethodGet, path, nil, &record, "ReconciliationByDate", CollectionReconciliations); err != nil {
		return nil, err
	}
	return &record, nil
}

// Ping implements Store.Ping
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/v1/health", nil, nil, "Ping", "")
}

// do executes a single JSON request against the remote store and decodes the
// response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, op, collection string) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return NewRemoteError(op, collection, fmt.Errorf("%w: %v", ErrInvalidPayload, err), false)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return NewRemoteError(op, collection, err, false)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"op":          op,
			"path":        path,
			"duration_ms": time.Since(start).Milliseconds(),
		}).WithError(err).Debug("Remote store request failed")
		return c.classifyTransportError(op, collection, err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"op":          op,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Remote store request completed")

	if resp.StatusCode >= 400 {
		return c.classifyStatusError(op, collection, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return NewRemoteError(op, collection, fmt.Errorf("%w: decoding response: %v", ErrInvalidPayload, err), false)
		}
	}
	return nil
}

// classifyTransportError maps transport-level failures. Anything that never
// produced an HTTP status is a connectivity problem: the store may be fine,
// we just could not reach it.
func (c *Client) classifyTransportError(op, collection string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewRemoteError(op, collection, fmt.Errorf("%w: %v", ErrTimeout, err), true)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewRemoteError(op, collection, fmt.Errorf("%w: %v", ErrTimeout, err), true)
	}
	if errors.Is(err, context.Canceled) {
		return NewRemoteError(op, collection, err, false)
	}
	return NewRemoteError(op, collection, fmt.Errorf("%w: %v", ErrUnavailable, err), true)
}

// classifyStatusError maps HTTP status codes: 5xx means the store is
// unhealthy (connectivity), 4xx means it understood and rejected us
// (semantic).
func (c *Client) classifyStatusError(op, collection string, resp *http.Response) error {
	detail := readErrorDetail(resp.Body)

	if resp.StatusCode >= 500 {
		return NewRemoteError(op, collection, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, detail), true)
	}

	var base error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		base = ErrUnauthorized
	case http.StatusNotFound:
		base = ErrNotFound
	case http.StatusConflict:
		base = ErrConflict
	default:
		base = ErrInvalidPayload
	}
	return NewRemoteError(op, collection, fmt.Errorf("%w: status %d: %s", base, resp.StatusCode, detail), false)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func readErrorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "no error detail"
	}

	var parsed errorBody
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return string(raw)
}
