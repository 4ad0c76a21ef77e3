package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Операции внешнего банковского шлюза, которые проксирует портал.
const (
	OpRegisterCompany   = "admin/register/company"
	OpRegisterCorporate = "admin/register/corporate"
)

// Client — контракт исполнителя запросов к шлюзу.
type Client interface {
	Submit(ctx context.Context, op string, payload []byte) ([]byte, error)
}

// HTTPClient шлет JSON-запросы на REST API шлюза.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Submit реализует интерфейс Client.
func (c *HTTPClient) Submit(ctx context.Context, op string, payload []byte) ([]byte, error) {
	url := c.baseURL + "/api/v1/" + op

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: %s call failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("gateway: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		// Считываем Retry-After, чтобы ретраи не молотили шлюз вслепую
		return nil, &ThrottleError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Cause:      fmt.Errorf("gateway returned 429 for %s", op),
		}
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("gateway: %s returned %d: %s", op, resp.StatusCode, truncate(body))
	case resp.StatusCode >= 400:
		// 4xx — проблема запроса, ретраить бессмысленно
		return nil, fmt.Errorf("gateway: %s rejected (%d): %s", op, resp.StatusCode, truncate(body))
	}

	return body, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 2 * time.Second
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 2 * time.Second
}

func truncate(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
