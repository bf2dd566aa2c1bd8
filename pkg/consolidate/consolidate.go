// Package consolidate merges the per-bookmaker quotes of one sportsbook event
// into summary statistics per distinct outcome name.
package consolidate

import (
	"fmt"
	"math"

	"github.com/lineshift/lineshift/pkg/market"
	"github.com/lineshift/lineshift/pkg/odds"
)

// ConsolidatedOutcome summarizes every quote that shares one outcome name
// across all bookmakers and markets of a single event. Means are plain
// arithmetic means over the contributing quotes, never weighted.
type ConsolidatedOutcome struct {
	Name            string  `json:"name"`
	QuoteCount      int     `json:"quote_count"`
	MeanDecimal     float64 `json:"mean_decimal"`
	MinDecimal      float64 `json:"min_decimal"`
	MaxDecimal      float64 `json:"max_decimal"`
	MeanImpliedProb float64 `json:"mean_implied_probability"`
	BookmakerCount  int     `json:"bookmaker_count"`
}

// Result carries the consolidated outcomes of one event plus the number of
// distinct bookmakers that quoted it at all.
type Result struct {
	Outcomes        []ConsolidatedOutcome
	TotalBookmakers int
}

// EnrichQuotes populates the derived price fields of every quote on the event
// from its raw price, interpreted per the declared format. A quote whose
// price cannot be converted (a decimal price of exactly 1.0, say) is left
// unenriched rather than failing the event; consolidation skips it later.
func EnrichQuotes(ev *market.BookEvent, format market.OddsFormat) error {
	if ev == nil {
		return nil
	}
	if !format.Valid() {
		return fmt.Errorf("unknown odds format %q", format)
	}

	for bi := range ev.Bookmakers {
		for mi := range ev.Bookmakers[bi].Markets {
			outcomes := ev.Bookmakers[bi].Markets[mi].Outcomes
			for oi := range outcomes {
				enrichQuote(&outcomes[oi], format)
			}
		}
	}
	return nil
}

func enrichQuote(q *market.Quote, format market.OddsFormat) {
	switch format {
	case market.FormatAmerican:
		american := int(math.Round(q.Price))
		decimal, err := odds.AmericanToDecimal(american)
		if err != nil {
			return
		}
		prob, err := odds.AmericanToImpliedProb(american)
		if err != nil {
			return
		}
		q.PriceAmerican = american
		q.PriceDecimal = decimal
		q.ImpliedProb = prob

	case market.FormatDecimal:
		prob, err := odds.DecimalToImpliedProb(q.Price)
		if err != nil {
			return
		}
		american, err := odds.DecimalToAmerican(q.Price)
		if err != nil {
			return
		}
		q.PriceDecimal = q.Price
		q.PriceAmerican = american
		q.ImpliedProb = prob
	}
}

// Consolidate groups every enriched quote of one event by exact outcome name
// and computes per-name statistics. Unenriched quotes (zero decimal price)
// are skipped. Output order follows first appearance of each name; names with
// no usable quotes are omitted entirely.
func Consolidate(ev *market.BookEvent) Result {
	if ev == nil {
		return Result{}
	}

	type accumulator struct {
		count      int
		sumDecimal float64
		minDecimal float64
		maxDecimal float64
		sumProb    float64
		bookmakers map[string]struct{}
	}

	byName := make(map[string]*accumulator)
	var order []string

	for _, bm := range ev.Bookmakers {
		for _, mk := range bm.Markets {
			for _, q := range mk.Outcomes {
				if q.PriceDecimal <= 0 {
					continue
				}
				acc, ok := byName[q.Name]
				if !ok {
					acc = &accumulator{
						minDecimal: q.PriceDecimal,
						maxDecimal: q.PriceDecimal,
						bookmakers: make(map[string]struct{}),
					}
					byName[q.Name] = acc
					order = append(order, q.Name)
				}
				acc.count++
				acc.sumDecimal += q.PriceDecimal
				acc.sumProb += q.ImpliedProb
				if q.PriceDecimal < acc.minDecimal {
					acc.minDecimal = q.PriceDecimal
				}
				if q.PriceDecimal > acc.maxDecimal {
					acc.maxDecimal = q.PriceDecimal
				}
				acc.bookmakers[bm.Key] = struct{}{}
			}
		}
	}

	out := Result{TotalBookmakers: len(ev.Bookmakers)}
	for _, name := range order {
		acc := byName[name]
		out.Outcomes = append(out.Outcomes, ConsolidatedOutcome{
			Name:            name,
			QuoteCount:      acc.count,
			MeanDecimal:     acc.sumDecimal / float64(acc.count),
			MinDecimal:      acc.minDecimal,
			MaxDecimal:      acc.maxDecimal,
			MeanImpliedProb: acc.sumProb / float64(acc.count),
			BookmakerCount:  len(acc.bookmakers),
		})
	}
	return out
}
