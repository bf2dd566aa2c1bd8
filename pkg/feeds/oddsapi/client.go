// Package oddsapi fetches bookmaker moneyline odds from The Odds API.
package oddsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lineshift/lineshift/pkg/market"
)

const (
	// DefaultBaseURL is The Odds API v4 base URL.
	DefaultBaseURL = "https://api.the-odds-api.com/v4"

	// The free tier is quota-limited, not rate-limited, but a polite
	// client avoids bursts anyway.
	defaultRateLimit = 5.0
	defaultBurst     = 2
)

// ErrMissingAPIKey is returned when the client is built without a key.
var ErrMissingAPIKey = errors.New("odds api key is required")

// Sport is one entry from the sports catalog endpoint.
type Sport struct {
	Key          string `json:"key"`
	Group        string `json:"group"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

// Client is The Odds API client.
type Client struct {
	baseURL    string
	apiKey     string
	regions    string
	markets    string
	oddsFormat market.OddsFormat
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

// WithRegions sets the bookmaker regions to query (comma-separated, "us" by
// default).
func WithRegions(regions string) ClientOption {
	return func(c *Client) {
		c.regions = regions
	}
}

// WithMarkets sets the market types to query ("h2h" by default).
func WithMarkets(markets string) ClientOption {
	return func(c *Client) {
		c.markets = markets
	}
}

// WithOddsFormat sets the price encoding requested from the API.
func WithOddsFormat(format market.OddsFormat) ClientOption {
	return func(c *Client) {
		c.oddsFormat = format
	}
}

// NewClient creates a new Odds API client.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		regions:    "us",
		markets:    "h2h",
		oddsFormat: market.FormatDecimal,
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

	if !c.oddsFormat.Valid() {
		return nil, fmt.Errorf("unknown odds format %q", c.oddsFormat)
	}

	return c, nil
}

// OddsFormat reports the price encoding this client requests. Quote
// enrichment must interpret raw prices with the same format.
func (c *Client) OddsFormat() market.OddsFormat {
	return c.oddsFormat
}

// ListSports fetches the sports catalog. Inactive sports are included when
// all is true.
func (c *Client) ListSports(ctx context.Context, all bool) ([]Sport, error) {
	params := url.Values{}
	if all {
		params.Set("all", "true")
	}

	var sports []Sport
	if err := c.get(ctx, "/sports", params, &sports); err != nil {
		return nil, err
	}
	return sports, nil
}

// ListOdds fetches moneyline odds with bookmaker quotes for one sport key.
func (c *Client) ListOdds(ctx context.Context, sportKey string) ([]*market.BookEvent, error) {
	if sportKey == "" {
		return nil, errors.New("sport key is required")
	}

	params := url.Values{}
	params.Set("regions", c.regions)
	params.Set("markets", c.markets)
	params.Set("oddsFormat", string(c.oddsFormat))

	var events []*market.BookEvent
	if err := c.get(ctx, "/sports/"+sportKey+"/odds", params, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListEvents fetches the event schedule for one sport key, without quotes.
// Cheaper than ListOdds: schedule requests do not count against the odds
// quota.
func (c *Client) ListEvents(ctx context.Context, sportKey string) ([]*market.BookEvent, error) {
	if sportKey == "" {
		return nil, errors.New("sport key is required")
	}

	var events []*market.BookEvent
	if err := c.get(ctx, "/sports/"+sportKey+"/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// get performs a GET request with rate limiting; the API key travels as a
// query parameter per the API's convention.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)

	u := c.baseURL + path + "?" + params.Encode()

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
