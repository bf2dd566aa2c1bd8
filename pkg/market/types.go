// Package market defines the event records exchanged between the two upstream
// feeds and the matching/detection pipeline: prediction-market event snapshots
// on one side, sportsbook odds events with per-bookmaker quotes on the other.
package market

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Event is a prediction-market event/market snapshot. Fields mirror the wire
// shape of the upstream feed: outcome labels and prices arrive as JSON-encoded
// string arrays, timestamps as raw strings of varying precision.
type Event struct {
	EventID      string `json:"event_id"`
	MarketID     string `json:"market_id"`
	ConditionID  string `json:"conditionId,omitempty"`
	SeriesTicker string `json:"series_ticker"`
	Question     string `json:"question,omitempty"`
	Description  string `json:"description,omitempty"`

	HomeTeamName string `json:"homeTeamName"`
	AwayTeamName string `json:"awayTeamName"`

	// StartTime is the exact start timestamp when known; EventDate is the
	// coarser fallback (date only). Either may be empty or unparseable.
	StartTime string `json:"startTime,omitempty"`
	EventDate string `json:"eventDate,omitempty"`

	// OutcomesRaw and OutcomePricesRaw are JSON-encoded arrays as delivered
	// by the feed, e.g. `["Texas State","Louisiana"]` and `["0.42","0.58"]`.
	OutcomesRaw      string `json:"market_outcomes"`
	OutcomePricesRaw string `json:"market_outcomePrices"`

	ClobTokenIDsRaw string `json:"clobTokenIds,omitempty"`

	Liquidity JSONFloat `json:"liquidity"`
	Volume    JSONFloat `json:"volume"`
	Spread    JSONFloat `json:"spread"`
}

// Outcomes decodes the contract's outcome labels.
func (e *Event) Outcomes() ([]string, error) {
	return decodeStringArray(e.OutcomesRaw)
}

// OutcomePrices decodes the contract's outcome prices. Prices arrive as
// strings ("0.42") or numbers depending on the endpoint.
func (e *Event) OutcomePrices() ([]float64, error) {
	raw, err := decodeStringArray(e.OutcomePricesRaw)
	if err != nil {
		return nil, err
	}
	prices := make([]float64, len(raw))
	for i, s := range raw {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("outcome price %q: %w", s, err)
		}
		prices[i] = p
	}
	return prices, nil
}

// ClobTokenIDs decodes the CLOB token IDs for the market's outcomes.
func (e *Event) ClobTokenIDs() []string {
	ids, err := decodeStringArray(e.ClobTokenIDsRaw)
	if err != nil {
		return nil
	}
	return ids
}

// BookEvent is a sportsbook-feed event with zero or more bookmaker quotes.
type BookEvent struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title,omitempty"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	CommenceTime string      `json:"commence_time"`
	Bookmakers   []Bookmaker `json:"bookmakers,omitempty"`
}

// Bookmaker is one provider's set of quoted markets for an event.
type Bookmaker struct {
	Key        string       `json:"key"`
	Title      string       `json:"title"`
	LastUpdate string       `json:"last_update"`
	Markets    []BookMarket `json:"markets"`
}

// BookMarket is a single market type (e.g. "h2h") quoted by one bookmaker.
type BookMarket struct {
	Key      string  `json:"key"`
	Outcomes []Quote `json:"outcomes"`
}

// Quote is a single priced outcome from one bookmaker. Price is in the format
// declared when the odds were fetched ("american" or "decimal"); the derived
// fields are populated by enrichment and are never the source of truth.
type Quote struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`

	PriceAmerican int     `json:"price_american,omitempty"`
	PriceDecimal  float64 `json:"price_decimal,omitempty"`
	ImpliedProb   float64 `json:"implied_probability,omitempty"`
}

// OddsFormat declares how raw quote prices are encoded.
type OddsFormat string

const (
	FormatAmerican OddsFormat = "american"
	FormatDecimal  OddsFormat = "decimal"
)

// Valid reports whether the format is one of the declared encodings.
func (f OddsFormat) Valid() bool {
	return f == FormatAmerican || f == FormatDecimal
}

// JSONFloat handles both numeric and string JSON values.
type JSONFloat float64

func (j *JSONFloat) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*j = JSONFloat(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("value %s is neither number nor string", string(data))
	}
	if s == "" {
		*j = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parsing %q as float: %w", s, err)
	}
	*j = JSONFloat(f)
	return nil
}

// Float64 returns the value as a plain float64.
func (j JSONFloat) Float64() float64 {
	return float64(j)
}

// decodeStringArray decodes a JSON array that may contain strings or numbers.
func decodeStringArray(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding array %q: %w", raw, err)
	}
	out := make([]string, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			out[i] = v
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("array element %d has unsupported type %T", i, item)
		}
	}
	return out, nil
}
