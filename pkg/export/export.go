// Package export writes pipeline results to disk as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lineshift/lineshift/pkg/signal"
)

// WriteJSON writes any result set as indented JSON, creating parent
// directories as needed.
func WriteJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

var opportunityHeader = []string{
	"event_id", "market_id", "book_event_id", "outcome", "book_outcome",
	"market_type", "direction", "market_price", "sportsbook_probability",
	"expected_movement", "potential_profit", "match_confidence",
	"liquidity", "bookmaker_count",
}

// WriteOpportunitiesCSV writes opportunities as one CSV row each.
func WriteOpportunitiesCSV(path string, opps []signal.Opportunity) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(opportunityHeader); err != nil {
		return err
	}

	for _, opp := range opps {
		row := []string{
			opp.EventID,
			opp.MarketID,
			opp.BookEventID,
			opp.OutcomeLabel,
			opp.BookOutcome,
			opp.MarketType,
			opp.Direction,
			formatFloat(opp.MarketPrice),
			formatFloat(opp.SportsbookProb),
			formatFloat(opp.ExpectedMovement),
			formatFloat(opp.PotentialProfit),
			formatFloat(opp.Confidence),
			formatFloat(opp.Liquidity),
			strconv.Itoa(opp.BookmakerCount),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
