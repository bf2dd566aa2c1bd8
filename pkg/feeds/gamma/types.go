// Package gamma fetches prediction-market events from the Polymarket Gamma
// API. Gamma is read-only metadata; prices here are last-trade snapshots, not
// live order-book state.
package gamma

import (
	"github.com/lineshift/lineshift/pkg/market"
)

// Event is a Gamma event container. Sports events carry one market per game
// plus series metadata identifying the league.
type Event struct {
	ID          string           `json:"id"`
	Ticker      string           `json:"ticker"`
	Slug        string           `json:"slug"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	Active      bool             `json:"active"`
	Closed      bool             `json:"closed"`
	Archived    bool             `json:"archived"`
	Liquidity   market.JSONFloat `json:"liquidity"`
	Volume      market.JSONFloat `json:"volume"`
	Series      []Series         `json:"series,omitempty"`
	Markets     []Market         `json:"markets,omitempty"`
}

// Series identifies the recurring league/competition an event belongs to.
type Series struct {
	ID     string `json:"id"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
}

// Market is a single Gamma market. Sports moneyline markets carry the team
// display names and the scheduled game start alongside the usual contract
// fields; the array fields arrive JSON-encoded inside strings.
type Market struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	ConditionID string `json:"conditionId"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	Closed      bool   `json:"closed"`

	HomeTeamName  string `json:"homeTeamName"`
	AwayTeamName  string `json:"awayTeamName"`
	GameStartTime string `json:"gameStartTime"`
	EventDate     string `json:"eventDate"`

	OutcomesRaw      string `json:"outcomes"`
	OutcomePricesRaw string `json:"outcomePrices"`
	ClobTokenIDsRaw  string `json:"clobTokenIds"`

	Liquidity market.JSONFloat `json:"liquidity"`
	Volume    market.JSONFloat `json:"volume"`
	Spread    market.JSONFloat `json:"spread"`
}

// seriesTicker returns the league ticker for an event, preferring the series
// metadata over the event's own ticker.
func (e *Event) seriesTicker() string {
	if len(e.Series) > 0 && e.Series[0].Ticker != "" {
		return e.Series[0].Ticker
	}
	return e.Ticker
}

// Flatten converts one Gamma event into the flat per-market records the
// matching engine consumes. Closed markets are dropped; liquidity falls back
// to the event-level figure when the market carries none.
func (e *Event) Flatten() []*market.Event {
	var out []*market.Event
	for _, m := range e.Markets {
		if m.Closed {
			continue
		}
		liquidity := m.Liquidity
		if liquidity == 0 {
			liquidity = e.Liquidity
		}
		out = append(out, &market.Event{
			EventID:          e.ID,
			MarketID:         m.ID,
			ConditionID:      m.ConditionID,
			SeriesTicker:     e.seriesTicker(),
			Question:         m.Question,
			Description:      m.Description,
			HomeTeamName:     m.HomeTeamName,
			AwayTeamName:     m.AwayTeamName,
			StartTime:        m.GameStartTime,
			EventDate:        firstNonEmpty(m.EventDate, e.StartDate),
			OutcomesRaw:      m.OutcomesRaw,
			OutcomePricesRaw: m.OutcomePricesRaw,
			ClobTokenIDsRaw:  m.ClobTokenIDsRaw,
			Liquidity:        liquidity,
			Volume:           m.Volume,
			Spread:           m.Spread,
		})
	}
	return out
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
