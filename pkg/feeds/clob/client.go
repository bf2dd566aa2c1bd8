// Package clob reads live order-book prices from the Polymarket CLOB. Only
// the public read endpoints are used; nothing here signs or places orders.
package clob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the CLOB REST base URL.
	DefaultBaseURL = "https://clob.polymarket.com"

	defaultRateLimit = 10.0
	defaultBurst     = 5
)

// Client is a public CLOB API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRateLimit sets custom rate limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a public CLOB client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetMidpoint fetches the midpoint price for a token.
func (c *Client) GetMidpoint(ctx context.Context, tokenID string) (float64, error) {
	params := url.Values{}
	params.Set("token_id", tokenID)

	var result struct {
		Mid string `json:"mid"`
	}
	if err := c.get(ctx, "/midpoint", params, &result); err != nil {
		return 0, err
	}
	return parsePrice(result.Mid)
}

// GetBuyPrice fetches the best ask for a token.
func (c *Client) GetBuyPrice(ctx context.Context, tokenID string) (float64, error) {
	params := url.Values{}
	params.Set("token_id", tokenID)
	params.Set("side", "buy")

	var result struct {
		Price string `json:"price"`
	}
	if err := c.get(ctx, "/price", params, &result); err != nil {
		return 0, err
	}
	return parsePrice(result.Price)
}

// Snapshot returns the current price for a token: the midpoint when the book
// has both sides, else the buy price. One-sided books are common near
// resolution, when everyone is on the winning side.
func (c *Client) Snapshot(ctx context.Context, tokenID string) (float64, error) {
	mid, err := c.GetMidpoint(ctx, tokenID)
	if err == nil && mid > 0 {
		return mid, nil
	}

	price, buyErr := c.GetBuyPrice(ctx, tokenID)
	if buyErr != nil {
		if err != nil {
			return 0, fmt.Errorf("midpoint: %v; buy price: %w", err, buyErr)
		}
		return 0, buyErr
	}
	return price, nil
}

// HistoryPoint is one point of a token's traded price history.
type HistoryPoint struct {
	Timestamp int64   `json:"t"`
	Price     float64 `json:"p"`
}

// GetPriceHistory fetches historical prices for a token. Zero timestamps
// leave the range unbounded; fidelity is the minimum granularity in minutes.
func (c *Client) GetPriceHistory(ctx context.Context, tokenID string, startTs, endTs int64, fidelity int) ([]HistoryPoint, error) {
	params := url.Values{}
	params.Set("market", tokenID)
	if startTs > 0 {
		params.Set("startTs", strconv.FormatInt(startTs, 10))
	}
	if endTs > 0 {
		params.Set("endTs", strconv.FormatInt(endTs, 10))
	}
	if fidelity > 0 {
		params.Set("fidelity", strconv.Itoa(fidelity))
	}

	var result struct {
		History []HistoryPoint `json:"history"`
	}
	if err := c.get(ctx, "/prices-history", params, &result); err != nil {
		return nil, err
	}
	return result.History, nil
}

// PriceUpdate is one observed price for one token.
type PriceUpdate struct {
	TokenID    string
	Price      float64
	ObservedAt time.Time
}

// Poll snapshots every token at the given interval and delivers updates to
// fn until the context ends. Per-token failures are skipped; the poller only
// stops on context cancellation.
func (c *Client) Poll(ctx context.Context, tokenIDs []string, interval time.Duration, fn func(PriceUpdate)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		for _, id := range tokenIDs {
			price, err := c.Snapshot(ctx, id)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				continue
			}
			fn(PriceUpdate{TokenID: id, Price: price, ObservedAt: time.Now().UTC()})
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func parsePrice(s string) (float64, error) {
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing price %q: %w", s, err)
	}
	return p, nil
}

// get performs a GET request with rate limiting.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
