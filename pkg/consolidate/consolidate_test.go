package consolidate

import (
	"math"
	"testing"

	"github.com/lineshift/lineshift/pkg/market"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func h2hEvent(bookmakers ...market.Bookmaker) *market.BookEvent {
	return &market.BookEvent{
		ID:         "ev-1",
		SportKey:   "americanfootball_nfl",
		HomeTeam:   "Kansas City Chiefs",
		AwayTeam:   "Buffalo Bills",
		Bookmakers: bookmakers,
	}
}

func h2hBookmaker(key string, quotes ...market.Quote) market.Bookmaker {
	return market.Bookmaker{
		Key:     key,
		Title:   key,
		Markets: []market.BookMarket{{Key: "h2h", Outcomes: quotes}},
	}
}

func TestEnrichQuotesAmerican(t *testing.T) {
	ev := h2hEvent(h2hBookmaker("draftkings",
		market.Quote{Name: "Kansas City Chiefs", Price: -150},
		market.Quote{Name: "Buffalo Bills", Price: 130},
	))

	if err := EnrichQuotes(ev, market.FormatAmerican); err != nil {
		t.Fatalf("EnrichQuotes() error: %v", err)
	}

	fav := ev.Bookmakers[0].Markets[0].Outcomes[0]
	if fav.PriceAmerican != -150 {
		t.Errorf("favorite american = %d, want -150", fav.PriceAmerican)
	}
	if !almostEqual(fav.PriceDecimal, 100.0/150.0+1) {
		t.Errorf("favorite decimal = %v, want %v", fav.PriceDecimal, 100.0/150.0+1)
	}
	if !almostEqual(fav.ImpliedProb, 150.0/250.0) {
		t.Errorf("favorite implied prob = %v, want 0.6", fav.ImpliedProb)
	}

	dog := ev.Bookmakers[0].Markets[0].Outcomes[1]
	if !almostEqual(dog.PriceDecimal, 2.3) {
		t.Errorf("underdog decimal = %v, want 2.3", dog.PriceDecimal)
	}
}

func TestEnrichQuotesDecimal(t *testing.T) {
	ev := h2hEvent(h2hBookmaker("pinnacle",
		market.Quote{Name: "Kansas City Chiefs", Price: 1.5},
	))

	if err := EnrichQuotes(ev, market.FormatDecimal); err != nil {
		t.Fatalf("EnrichQuotes() error: %v", err)
	}

	q := ev.Bookmakers[0].Markets[0].Outcomes[0]
	if q.PriceAmerican != -200 {
		t.Errorf("american = %d, want -200", q.PriceAmerican)
	}
	if !almostEqual(q.ImpliedProb, 1.0/1.5) {
		t.Errorf("implied prob = %v, want %v", q.ImpliedProb, 1.0/1.5)
	}
}

func TestEnrichQuotesInvalidFormat(t *testing.T) {
	if err := EnrichQuotes(h2hEvent(), "fractional"); err == nil {
		t.Error("unknown odds format should be rejected")
	}
}

func TestEnrichQuotesSkipsUnconvertiblePrice(t *testing.T) {
	ev := h2hEvent(h2hBookmaker("betmgm",
		market.Quote{Name: "Kansas City Chiefs", Price: 1.0},
		market.Quote{Name: "Buffalo Bills", Price: 2.5},
	))

	if err := EnrichQuotes(ev, market.FormatDecimal); err != nil {
		t.Fatalf("EnrichQuotes() error: %v", err)
	}

	outcomes := ev.Bookmakers[0].Markets[0].Outcomes
	if outcomes[0].PriceDecimal != 0 {
		t.Error("unconvertible quote should stay unenriched")
	}
	if outcomes[1].PriceDecimal != 2.5 {
		t.Error("valid quote should still be enriched")
	}
}

func TestConsolidateMeanMinMax(t *testing.T) {
	ev := h2hEvent(
		h2hBookmaker("draftkings",
			market.Quote{Name: "Kansas City Chiefs", Price: 1.8},
			market.Quote{Name: "Buffalo Bills", Price: 2.1},
		),
		h2hBookmaker("fanduel",
			market.Quote{Name: "Kansas City Chiefs", Price: 1.9},
			market.Quote{Name: "Buffalo Bills", Price: 2.0},
		),
		h2hBookmaker("betmgm",
			market.Quote{Name: "Kansas City Chiefs", Price: 1.7},
		),
	)
	if err := EnrichQuotes(ev, market.FormatDecimal); err != nil {
		t.Fatalf("EnrichQuotes() error: %v", err)
	}

	res := Consolidate(ev)

	if res.TotalBookmakers != 3 {
		t.Errorf("TotalBookmakers = %d, want 3", res.TotalBookmakers)
	}
	if len(res.Outcomes) != 2 {
		t.Fatalf("got %d consolidated outcomes, want 2", len(res.Outcomes))
	}

	chiefs := res.Outcomes[0]
	if chiefs.Name != "Kansas City Chiefs" {
		t.Fatalf("first outcome = %q, want first-seen name", chiefs.Name)
	}
	if chiefs.QuoteCount != 3 || chiefs.BookmakerCount != 3 {
		t.Errorf("chiefs counts = (%d quotes, %d bookmakers), want (3, 3)", chiefs.QuoteCount, chiefs.BookmakerCount)
	}
	if !almostEqual(chiefs.MeanDecimal, (1.8+1.9+1.7)/3) {
		t.Errorf("chiefs mean decimal = %v, want %v", chiefs.MeanDecimal, (1.8+1.9+1.7)/3)
	}
	if chiefs.MinDecimal != 1.7 || chiefs.MaxDecimal != 1.9 {
		t.Errorf("chiefs min/max = %v/%v, want 1.7/1.9", chiefs.MinDecimal, chiefs.MaxDecimal)
	}
	if !almostEqual(chiefs.MeanImpliedProb, (1/1.8+1/1.9+1/1.7)/3) {
		t.Errorf("chiefs mean implied prob = %v", chiefs.MeanImpliedProb)
	}

	bills := res.Outcomes[1]
	if bills.QuoteCount != 2 || bills.BookmakerCount != 2 {
		t.Errorf("bills counts = (%d quotes, %d bookmakers), want (2, 2)", bills.QuoteCount, bills.BookmakerCount)
	}
	if !almostEqual(bills.MeanDecimal, 2.05) {
		t.Errorf("bills mean decimal = %v, want 2.05", bills.MeanDecimal)
	}
}

func TestConsolidateSkipsUnenrichedQuotes(t *testing.T) {
	ev := h2hEvent(h2hBookmaker("draftkings",
		market.Quote{Name: "Kansas City Chiefs", Price: 1.0},
	))
	if err := EnrichQuotes(ev, market.FormatDecimal); err != nil {
		t.Fatalf("EnrichQuotes() error: %v", err)
	}

	res := Consolidate(ev)
	if len(res.Outcomes) != 0 {
		t.Errorf("got %d outcomes, want 0 when no quote is usable", len(res.Outcomes))
	}
	if res.TotalBookmakers != 1 {
		t.Errorf("TotalBookmakers = %d, want 1", res.TotalBookmakers)
	}
}

func TestConsolidateEmpty(t *testing.T) {
	if res := Consolidate(nil); len(res.Outcomes) != 0 || res.TotalBookmakers != 0 {
		t.Error("nil event should consolidate to empty")
	}
	if res := Consolidate(h2hEvent()); len(res.Outcomes) != 0 {
		t.Error("event without bookmakers should consolidate to empty")
	}
}
