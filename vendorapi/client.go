// Package vendorapi is the HTTP client for the upstream stock vendor. It
// normalizes every failure into ErrUnavailable or *APIError and retries
// transient ones with exponential backoff.
package vendorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradedesk/market"
)

const (
	// DefaultTimeout bounds a single attempt, not the whole retry loop.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3
	// DefaultBaseDelay is doubled per attempt: base, 2*base, 4*base, ...
	DefaultBaseDelay = time.Second
)

// Config carries the connection settings for the vendor API.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration // per-attempt request timeout
	MaxRetries int
	BaseDelay  time.Duration
}

// Client talks to the vendor API. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

// NewClient creates a vendor API client. Zero Config fields fall back to the
// package defaults; MaxRetries may be set to a negative value to disable
// retries entirely.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	} else if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		logger:     logger,
	}
}

// StocksPage is one page of the vendor's instrument list.
//
// HasItems is false when the page had no usable items array (absent, null, or
// ill-typed). The catalog treats such a page as the end of pagination rather
// than a hard failure.
type StocksPage struct {
	Items     []market.Stock
	NextToken string
	HasItems  bool
}

func (p *StocksPage) UnmarshalJSON(b []byte) error {
	var raw struct {
		Items     json.RawMessage `json:"items"`
		NextToken string          `json:"nextToken"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.NextToken = raw.NextToken

	if len(raw.Items) == 0 || string(raw.Items) == "null" {
		return nil
	}
	var items []market.Stock
	if err := json.Unmarshal(raw.Items, &items); err != nil {
		// Ill-typed items leaves HasItems false; the page decode itself
		// still succeeds so NextToken and prior pages are not lost.
		return nil
	}
	p.Items = items
	p.HasItems = true
	return nil
}

// GetStocksPage fetches one page of the instrument list. Pass an empty
// nextToken for the first page; the returned NextToken is empty on the last.
func (c *Client) GetStocksPage(ctx context.Context, nextToken string) (StocksPage, error) {
	query := url.Values{}
	if nextToken != "" {
		query.Set("nextToken", nextToken)
	}

	data, err := c.do(ctx, http.MethodGet, "/stocks", query, nil)
	if err != nil {
		return StocksPage{}, err
	}

	var page StocksPage
	if err := json.Unmarshal(data, &page); err != nil {
		return StocksPage{}, fmt.Errorf("decode stocks page: %w", err)
	}
	return page, nil
}

type buyRequest struct {
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// BuyStock places a buy order with the vendor and returns the
// vendor-assigned transaction id, which may be empty.
func (c *Client) BuyStock(ctx context.Context, symbol string, price float64, quantity int) (string, error) {
	path := fmt.Sprintf("/stocks/%s/buy", url.PathEscape(symbol))

	data, err := c.do(ctx, http.MethodPost, path, nil, buyRequest{Price: price, Quantity: quantity})
	if err != nil {
		return "", err
	}

	var result struct {
		TransactionID string `json:"transactionId"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &result); err != nil {
			return "", fmt.Errorf("decode buy response: %w", err)
		}
	}
	return result.TransactionID, nil
}

// do runs one request with the retry policy: transient failures are retried
// up to maxRetries times with 2^attempt * baseDelay between attempts, and the
// last error is returned once the budget is exhausted. Non-retryable errors
// propagate immediately.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	for attempt := 0; ; attempt++ {
		data, err := c.once(ctx, method, path, query, body)
		if err == nil {
			return data, nil
		}
		if attempt >= c.maxRetries || !retryable(err) {
			return nil, err
		}

		delay := time.Duration(1<<uint(attempt)) * c.baseDelay
		c.logger.Warn("retrying vendor request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("delay", delay),
			zap.Int("retries_left", c.maxRetries-attempt),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// envelope is the vendor's response wrapper.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) once(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	apiURL := c.baseURL + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("vendor request", zap.String("method", method), zap.String("url", apiURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response at all: network failure or attempt timeout.
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	c.logger.Debug("vendor response", zap.Int("status", resp.StatusCode), zap.String("url", apiURL))

	var env envelope
	parseErr := json.Unmarshal(raw, &env)

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
		if apiErr.Code == "" {
			apiErr.Code = "VENDOR_API_ERROR"
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}

	if parseErr != nil {
		return nil, fmt.Errorf("decode response: %w", parseErr)
	}
	if env.Status != http.StatusOK {
		apiErr := &APIError{Status: env.Status, Code: env.Code, Message: env.Message}
		if apiErr.Code == "" {
			apiErr.Code = "VENDOR_API_ERROR"
		}
		if apiErr.Message == "" {
			apiErr.Message = "invalid response from vendor api"
		}
		return nil, apiErr
	}

	return env.Data, nil
}
