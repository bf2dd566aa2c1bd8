// Package pnl tracks simulated positions opened from detected signals and
// marks them to market against later price observations. No orders are ever
// placed; this is bookkeeping for evaluating signal quality.
package pnl

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lineshift/lineshift/pkg/signal"
)

// Status is a position's lifecycle state.
type Status int

const (
	StatusOpen Status = iota
	StatusClosed
)

func (s Status) String() string {
	if s == StatusOpen {
		return "open"
	}
	return "closed"
}

// Position is one simulated stake taken on an opportunity.
type Position struct {
	ID          string          `json:"id"`
	EventID     string          `json:"event_id"`
	MarketID    string          `json:"market_id"`
	TokenID     string          `json:"token_id"`
	Outcome     string          `json:"outcome"`
	Direction   string          `json:"direction"`
	Size        decimal.Decimal `json:"size"`
	EntryPrice  decimal.Decimal `json:"entry_price"`
	TargetProb  decimal.Decimal `json:"target_probability"`
	ExitPrice   decimal.Decimal `json:"exit_price"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	Status      Status          `json:"status"`
	OpenedAt    time.Time       `json:"opened_at"`
	ClosedAt    time.Time       `json:"closed_at,omitempty"`
}

// UnrealizedPnL marks an open position to the given price. Buys profit when
// the price rises, sells when it falls.
func (p *Position) UnrealizedPnL(currentPrice decimal.Decimal) decimal.Decimal {
	if p.Status != StatusOpen {
		return decimal.Zero
	}
	move := currentPrice.Sub(p.EntryPrice)
	if p.Direction == "sell" {
		move = move.Neg()
	}
	return move.Mul(p.Size)
}

// Tracker holds the full position book.
type Tracker struct {
	mu        sync.RWMutex
	positions map[string]*Position
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{positions: make(map[string]*Position)}
}

// Open creates a position from a detected opportunity. tokenID is the CLOB
// token the stake trades on; size is the stake in shares.
func (t *Tracker) Open(opp signal.Opportunity, tokenID string, size decimal.Decimal) (*Position, error) {
	if size.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("position size must be positive")
	}
	if opp.MarketPrice <= 0 {
		return nil, fmt.Errorf("entry price %v is not tradeable", opp.MarketPrice)
	}

	pos := &Position{
		ID:         uuid.New().String(),
		EventID:    opp.EventID,
		MarketID:   opp.MarketID,
		TokenID:    tokenID,
		Outcome:    opp.OutcomeLabel,
		Direction:  opp.Direction,
		Size:       size,
		EntryPrice: decimal.NewFromFloat(opp.MarketPrice),
		TargetProb: decimal.NewFromFloat(opp.SportsbookProb),
		Status:     StatusOpen,
		OpenedAt:   time.Now().UTC(),
	}

	t.mu.Lock()
	t.positions[pos.ID] = pos
	t.mu.Unlock()

	return pos, nil
}

// Close settles a position at the given exit price and records the realized
// result.
func (t *Tracker) Close(id string, exitPrice decimal.Decimal) (*Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos, ok := t.positions[id]
	if !ok {
		return nil, fmt.Errorf("unknown position %s", id)
	}
	if pos.Status != StatusOpen {
		return nil, fmt.Errorf("position %s is already closed", id)
	}

	move := exitPrice.Sub(pos.EntryPrice)
	if pos.Direction == "sell" {
		move = move.Neg()
	}

	pos.ExitPrice = exitPrice
	pos.RealizedPnL = move.Mul(pos.Size)
	pos.Status = StatusClosed
	pos.ClosedAt = time.Now().UTC()

	return pos, nil
}

// CloseAtTarget settles every open position whose current price has reached
// its target probability: at or above it for a buy, at or below for a sell.
// Open positions with no price in the map are left alone. The closed
// positions are returned so the caller can account the realized results.
func (t *Tracker) CloseAtTarget(prices map[string]decimal.Decimal) []*Position {
	t.mu.RLock()
	due := make(map[string]decimal.Decimal)
	for id, pos := range t.positions {
		if pos.Status != StatusOpen {
			continue
		}
		price, ok := prices[pos.TokenID]
		if !ok {
			continue
		}
		reached := price.GreaterThanOrEqual(pos.TargetProb)
		if pos.Direction == "sell" {
			reached = price.LessThanOrEqual(pos.TargetProb)
		}
		if reached {
			due[id] = price
		}
	}
	t.mu.RUnlock()

	var closed []*Position
	for id, price := range due {
		pos, err := t.Close(id, price)
		if err != nil {
			continue
		}
		closed = append(closed, pos)
	}
	return closed
}

// Get returns a position by ID.
func (t *Tracker) Get(id string) (*Position, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pos, ok := t.positions[id]
	return pos, ok
}

// Open positions, in no particular order.
func (t *Tracker) OpenPositions() []*Position {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []*Position
	for _, pos := range t.positions {
		if pos.Status == StatusOpen {
			out = append(out, pos)
		}
	}
	return out
}

// Summary aggregates the book's performance.
type Summary struct {
	OpenCount     int             `json:"open_count"`
	ClosedCount   int             `json:"closed_count"`
	RealizedPnL   decimal.Decimal `json:"realized_pnl"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
}

// Summarize totals realized results and marks open positions against the
// given prices by token ID. Open positions with no price are counted but
// contribute zero unrealized PnL.
func (t *Tracker) Summarize(prices map[string]decimal.Decimal) Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Summary{RealizedPnL: decimal.Zero, UnrealizedPnL: decimal.Zero}
	for _, pos := range t.positions {
		switch pos.Status {
		case StatusOpen:
			s.OpenCount++
			if price, ok := prices[pos.TokenID]; ok {
				s.UnrealizedPnL = s.UnrealizedPnL.Add(pos.UnrealizedPnL(price))
			}
		case StatusClosed:
			s.ClosedCount++
			s.RealizedPnL = s.RealizedPnL.Add(pos.RealizedPnL)
		}
	}
	return s
}
