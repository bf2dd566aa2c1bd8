package gamma

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

	"github.com/lineshift/lineshift/pkg/market"
)

const (
	// DefaultBaseURL is the Gamma API base URL.
	DefaultBaseURL = "https://gamma-api.polymarket.com"

	// Rate limits per the Polymarket docs.
	defaultRateLimit = 10.0
	defaultBurst     = 5

	pageSize = 100
)

// Client is a Gamma API client.
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

// NewClient creates a new Gamma API client.
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

// EventsFilter narrows a Gamma events listing.
type EventsFilter struct {
	Active       *bool
	Closed       *bool
	Archived     *bool
	SeriesTicker string
	Tag          string
	Limit        int
	Offset       int
	Order        string
}

// ListEvents fetches one page of events.
func (c *Client) ListEvents(ctx context.Context, filter *EventsFilter) ([]Event, error) {
	params := url.Values{}
	if filter != nil {
		if filter.Active != nil {
			params.Set("active", strconv.FormatBool(*filter.Active))
		}
		if filter.Closed != nil {
			params.Set("closed", strconv.FormatBool(*filter.Closed))
		}
		if filter.Archived != nil {
			params.Set("archived", strconv.FormatBool(*filter.Archived))
		}
		if filter.SeriesTicker != "" {
			params.Set("series_ticker", filter.SeriesTicker)
		}
		if filter.Tag != "" {
			params.Set("tag", filter.Tag)
		}
		if filter.Limit > 0 {
			params.Set("limit", strconv.Itoa(filter.Limit))
		}
		if filter.Offset > 0 {
			params.Set("offset", strconv.Itoa(filter.Offset))
		}
		if filter.Order != "" {
			params.Set("order", filter.Order)
		}
	}

	var events []Event
	if err := c.get(ctx, "/events", params, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvent fetches a single event by ID.
func (c *Client) GetEvent(ctx context.Context, id string) (*Event, error) {
	var event Event
	if err := c.get(ctx, "/events/"+id, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ListOpenEvents pages through every open event for one series ticker. An
// empty ticker lists all open events.
func (c *Client) ListOpenEvents(ctx context.Context, seriesTicker string) ([]Event, error) {
	active := true
	closed := false
	archived := false

	var all []Event
	offset := 0
	for {
		events, err := c.ListEvents(ctx, &EventsFilter{
			Active:       &active,
			Closed:       &closed,
			Archived:     &archived,
			SeriesTicker: seriesTicker,
			Limit:        pageSize,
			Offset:       offset,
		})
		if err != nil {
			return nil, err
		}

		all = append(all, events...)

		if len(events) < pageSize {
			break
		}
		offset += pageSize
	}
	return all, nil
}

// FetchMarketEvents lists every open event for the given series tickers and
// flattens them into matchable per-market records. No tickers means one
// unfiltered listing.
func (c *Client) FetchMarketEvents(ctx context.Context, seriesTickers ...string) ([]*market.Event, error) {
	if len(seriesTickers) == 0 {
		seriesTickers = []string{""}
	}

	var out []*market.Event
	for _, ticker := range seriesTickers {
		events, err := c.ListOpenEvents(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("listing events for %q: %w", ticker, err)
		}
		for i := range events {
			out = append(out, events[i].Flatten()...)
		}
	}
	return out, nil
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
