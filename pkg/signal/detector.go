package signal

import (
	"errors"
	"fmt"

	"github.com/lineshift/lineshift/pkg/consolidate"
	"github.com/lineshift/lineshift/pkg/market"
)

var (
	// ErrZeroPrice marks a candidate whose prediction-market price is 0, for
	// which a profit fraction is undefined.
	ErrZeroPrice = errors.New("prediction-market price is zero")

	// ErrMarketShape marks a contract whose outcome count is neither 2 nor 3.
	ErrMarketShape = errors.New("unsupported outcome count")
)

// Market-type classification, derived purely from the declared outcome count.
const (
	MarketTwoWay   = "2-way"
	MarketThreeWay = "3-way"
)

// Candidate is one matched event pair with its consolidated sportsbook
// outcomes, ready for divergence scoring.
type Candidate struct {
	Event        *market.Event
	Book         *market.BookEvent
	Confidence   float64
	Consolidated consolidate.Result
}

// Opportunity is one admitted directional signal. ExpectedMovement is the
// sportsbook implied probability minus the prediction-market price; a
// positive value reads as the market price being below the sportsbook
// consensus. Opportunities are never mutated after detection.
type Opportunity struct {
	EventID        string  `json:"event_id"`
	MarketID       string  `json:"market_id"`
	BookEventID    string  `json:"book_event_id"`
	Question       string  `json:"question,omitempty"`
	OutcomeLabel   string  `json:"outcome"`
	BookOutcome    string  `json:"book_outcome"`
	MarketType     string  `json:"market_type"`
	Direction      string  `json:"direction"`
	MarketPrice    float64 `json:"market_price"`
	SportsbookProb float64 `json:"sportsbook_probability"`

	// ExpectedMovement is SportsbookProb - MarketPrice; PotentialProfit is
	// that movement as a fraction of the entry price.
	ExpectedMovement float64 `json:"expected_movement"`
	PotentialProfit  float64 `json:"potential_profit"`

	Confidence     float64 `json:"match_confidence"`
	Liquidity      float64 `json:"liquidity"`
	BookmakerCount int     `json:"bookmaker_count"`
}

// Thresholds gates opportunity admission. Both comparisons are inclusive.
type Thresholds struct {
	MinProfit    float64
	MinLiquidity float64
}

// Detect scores every outcome of every candidate and returns the admitted
// opportunities, unsorted. A candidate that cannot be scored (zero price,
// malformed outcome arrays, unsupported market shape) is dropped; it never
// aborts the batch. Sorting is left to the caller.
func Detect(candidates []Candidate, th Thresholds) []Opportunity {
	var out []Opportunity
	for _, c := range candidates {
		opps, err := detectOne(&c, th)
		if err != nil {
			continue
		}
		out = append(out, opps...)
	}
	return out
}

func detectOne(c *Candidate, th Thresholds) ([]Opportunity, error) {
	if c.Event == nil || c.Book == nil {
		return nil, errors.New("incomplete candidate")
	}

	labels, err := c.Event.Outcomes()
	if err != nil {
		return nil, fmt.Errorf("decoding outcomes: %w", err)
	}
	prices, err := c.Event.OutcomePrices()
	if err != nil {
		return nil, fmt.Errorf("decoding outcome prices: %w", err)
	}
	if len(prices) < len(labels) {
		return nil, errors.New("outcome and price arrays disagree")
	}

	marketType, err := classifyMarket(len(labels))
	if err != nil {
		return nil, err
	}

	liquidity := c.Event.Liquidity.Float64()
	if liquidity < th.MinLiquidity {
		return nil, nil
	}

	var out []Opportunity
	for i, label := range labels {
		opp, err := scoreOutcome(c, label, prices[i], marketType, liquidity, th)
		if err != nil {
			// Per-outcome failures drop the outcome, not the event.
			continue
		}
		if opp != nil {
			out = append(out, *opp)
		}
	}
	return out, nil
}

func scoreOutcome(c *Candidate, label string, price float64, marketType string, liquidity float64, th Thresholds) (*Opportunity, error) {
	matched, ok := MatchOutcome(label, c.Consolidated.Outcomes)
	if !ok {
		return nil, nil
	}
	if price == 0 {
		return nil, ErrZeroPrice
	}

	movement := matched.MeanImpliedProb - price
	profit := movement / price
	if profit < th.MinProfit {
		return nil, nil
	}

	direction := "buy"
	if movement < 0 {
		direction = "sell"
	}

	return &Opportunity{
		EventID:          c.Event.EventID,
		MarketID:         c.Event.MarketID,
		BookEventID:      c.Book.ID,
		Question:         c.Event.Question,
		OutcomeLabel:     label,
		BookOutcome:      matched.Name,
		MarketType:       marketType,
		Direction:        direction,
		MarketPrice:      price,
		SportsbookProb:   matched.MeanImpliedProb,
		ExpectedMovement: movement,
		PotentialProfit:  profit,
		Confidence:       c.Confidence,
		Liquidity:        liquidity,
		BookmakerCount:   c.Consolidated.TotalBookmakers,
	}, nil
}

// classifyMarket returns the market-type label for a declared outcome count.
// Any count other than 2 or 3 is an error, never silently coerced.
func classifyMarket(outcomes int) (string, error) {
	switch outcomes {
	case 2:
		return MarketTwoWay, nil
	case 3:
		return MarketThreeWay, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrMarketShape, outcomes)
	}
}
