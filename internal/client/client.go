package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"crm-backend/internal/transport"

	"github.com/sethvargo/go-retry"
)

const (
	defaultTimeout = 10 * time.Second
	defaultBackoff = 200 * time.Millisecond
	defaultRetries = 3
)

// StatusError is returned for any non-2xx response
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// HealthStatus mirrors the /health response
type HealthStatus struct {
	Status   string            `json:"status"`
	Database map[string]string `json:"database"`
}

// Client calls the CRM HTTP API on behalf of the job entry points.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    uint64
	backoff    time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetries sets how many times a failed idempotent call is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = uint64(n)
		}
	}
}

func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retries:    defaultRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health checks API liveness and database reachability. A 503 still carries
// the health body and is returned without error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	err := c.do(ctx, http.MethodGet, "/health", nil, &out, http.StatusServiceUnavailable)
	return out, err
}

// Replenish raises every product with stock below minStock by incrementBy
func (c *Client) Replenish(ctx context.Context, minStock, incrementBy int) (transport.ReplenishPayload, error) {
	var out transport.ReplenishPayload
	body := transport.ReplenishRequest{MinStock: &minStock, IncrementBy: &incrementBy}
	err := c.do(ctx, http.MethodPost, "/api/inventory/replenish", body, &out)
	return out, err
}

// CRMReport fetches customer, order and revenue totals
func (c *Client) CRMReport(ctx context.Context) (transport.ReportResponse, error) {
	var out transport.ReportResponse
	err := c.do(ctx, http.MethodGet, "/api/reports/crm", nil, &out)
	return out, err
}

// RecentOrders fetches orders placed within the last hours
func (c *Client) RecentOrders(ctx context.Context, hours int) ([]transport.OrderResponse, error) {
	q := url.Values{}
	q.Set("hours", strconv.Itoa(hours))

	var out []transport.OrderResponse
	err := c.do(ctx, http.MethodGet, "/api/orders/recent?"+q.Encode(), nil, &out)
	return out, err
}

// retryable reports whether a failed attempt may be repeated. GETs retry on
// transport errors and any 5xx. Other methods retry only when a gateway
// answered that the request never reached the application.
func retryable(method string, status int) bool {
	if method == http.MethodGet {
		return status == 0 || status >= http.StatusInternalServerError
	}
	return status == http.StatusBadGateway || status == http.StatusServiceUnavailable
}

// do sends one request with retries and decodes a 2xx body, or a body with one
// of the accept statuses, into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, accept ...int) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			err = fmt.Errorf("failed to call %s %s: %w", method, path, err)
			if retryable(method, 0) {
				return retry.RetryableError(err)
			}
			return err
		}
		defer resp.Body.Close()

		if (resp.StatusCode < 200 || resp.StatusCode >= 300) && !slices.Contains(accept, resp.StatusCode) {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			serr := &StatusError{
				Method:     method,
				Path:       path,
				StatusCode: resp.StatusCode,
				Body:       string(bytes.TrimSpace(raw)),
			}
			if retryable(method, resp.StatusCode) {
				return retry.RetryableError(serr)
			}
			return serr
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if resp.StatusCode >= 300 {
				// An accepted error status without our body came from a proxy.
				serr := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: err.Error()}
				if retryable(method, resp.StatusCode) {
					return retry.RetryableError(serr)
				}
				return serr
			}
			return fmt.Errorf("failed to decode %s response: %w", path, err)
		}
		return nil
	})
}
