package signal

import (
	"math"
	"testing"

	"github.com/lineshift/lineshift/pkg/consolidate"
	"github.com/lineshift/lineshift/pkg/market"
)

func twoWayCandidate(chiefsPrice, billsPrice string, liquidity float64, chiefsProb, billsProb float64) Candidate {
	return Candidate{
		Event: &market.Event{
			EventID:          "ev-1",
			MarketID:         "mk-1",
			OutcomesRaw:      `["Kansas City Chiefs", "Buffalo Bills"]`,
			OutcomePricesRaw: `["` + chiefsPrice + `", "` + billsPrice + `"]`,
			Liquidity:        market.JSONFloat(liquidity),
		},
		Book:       &market.BookEvent{ID: "bk-1"},
		Confidence: 0.95,
		Consolidated: consolidate.Result{
			TotalBookmakers: 3,
			Outcomes: []consolidate.ConsolidatedOutcome{
				{Name: "Kansas City Chiefs", QuoteCount: 3, MeanImpliedProb: chiefsProb},
				{Name: "Buffalo Bills", QuoteCount: 3, MeanImpliedProb: billsProb},
			},
		},
	}
}

func TestDetectAdmitsAtThreshold(t *testing.T) {
	// Chiefs: price 0.5 vs book 0.6, movement 0.1, profit exactly 0.2.
	c := twoWayCandidate("0.5", "0.99", 1000, 0.6, 0.01)

	opps := Detect([]Candidate{c}, Thresholds{MinProfit: 0.2, MinLiquidity: 100})
	if len(opps) != 1 {
		t.Fatalf("Detect() = %d opportunities, want 1 (threshold is inclusive)", len(opps))
	}

	opp := opps[0]
	if opp.OutcomeLabel != "Kansas City Chiefs" {
		t.Errorf("admitted outcome = %q", opp.OutcomeLabel)
	}
	if math.Abs(opp.ExpectedMovement-0.1) > 1e-9 {
		t.Errorf("ExpectedMovement = %v, want 0.1", opp.ExpectedMovement)
	}
	if math.Abs(opp.PotentialProfit-0.2) > 1e-9 {
		t.Errorf("PotentialProfit = %v, want 0.2", opp.PotentialProfit)
	}
	if opp.MarketType != MarketTwoWay {
		t.Errorf("MarketType = %q, want %q", opp.MarketType, MarketTwoWay)
	}
	if opp.Direction != "buy" {
		t.Errorf("Direction = %q, want buy", opp.Direction)
	}
	if opp.BookmakerCount != 3 {
		t.Errorf("BookmakerCount = %d, want 3", opp.BookmakerCount)
	}
}

func TestDetectRejectsBelowThreshold(t *testing.T) {
	c := twoWayCandidate("0.5", "0.99", 1000, 0.6, 0.01)

	opps := Detect([]Candidate{c}, Thresholds{MinProfit: 0.2000001, MinLiquidity: 100})
	if len(opps) != 0 {
		t.Errorf("Detect() = %d opportunities, want 0 below threshold", len(opps))
	}
}

func TestDetectLiquidityFloor(t *testing.T) {
	c := twoWayCandidate("0.5", "0.99", 50, 0.6, 0.01)

	opps := Detect([]Candidate{c}, Thresholds{MinProfit: 0.1, MinLiquidity: 100})
	if len(opps) != 0 {
		t.Errorf("Detect() = %d opportunities, want 0 under the liquidity floor", len(opps))
	}

	// Floor is inclusive.
	c = twoWayCandidate("0.5", "0.99", 100, 0.6, 0.01)
	opps = Detect([]Candidate{c}, Thresholds{MinProfit: 0.1, MinLiquidity: 100})
	if len(opps) != 1 {
		t.Errorf("Detect() = %d opportunities, want 1 at the floor", len(opps))
	}
}

func TestDetectZeroPriceSkipsOutcomeNotBatch(t *testing.T) {
	// Chiefs price is 0, which has no defined profit fraction. Bills still
	// score.
	c := twoWayCandidate("0", "0.4", 1000, 0.6, 0.6)

	opps := Detect([]Candidate{c}, Thresholds{MinProfit: 0.1, MinLiquidity: 0})
	if len(opps) != 1 {
		t.Fatalf("Detect() = %d opportunities, want 1", len(opps))
	}
	if opps[0].OutcomeLabel != "Buffalo Bills" {
		t.Errorf("surviving outcome = %q, want Buffalo Bills", opps[0].OutcomeLabel)
	}
}

func TestDetectThreeWayClassification(t *testing.T) {
	c := Candidate{
		Event: &market.Event{
			EventID:          "ev-2",
			OutcomesRaw:      `["Arsenal", "Chelsea", "Draw"]`,
			OutcomePricesRaw: `["0.40", "0.35", "0.25"]`,
			Liquidity:        market.JSONFloat(500),
		},
		Book: &market.BookEvent{ID: "bk-2"},
		Consolidated: consolidate.Result{
			Outcomes: []consolidate.ConsolidatedOutcome{
				{Name: "Arsenal", MeanImpliedProb: 0.50},
			},
		},
	}

	opps := Detect([]Candidate{c}, Thresholds{MinProfit: 0.1, MinLiquidity: 0})
	if len(opps) != 1 {
		t.Fatalf("Detect() = %d opportunities, want 1", len(opps))
	}
	if opps[0].MarketType != MarketThreeWay {
		t.Errorf("MarketType = %q, want %q", opps[0].MarketType, MarketThreeWay)
	}
}

func TestDetectUnsupportedMarketShapeDropsCandidate(t *testing.T) {
	bad := Candidate{
		Event: &market.Event{
			OutcomesRaw:      `["A", "B", "C", "D"]`,
			OutcomePricesRaw: `["0.25", "0.25", "0.25", "0.25"]`,
			Liquidity:        market.JSONFloat(1000),
		},
		Book: &market.BookEvent{ID: "bk-bad"},
		Consolidated: consolidate.Result{
			Outcomes: []consolidate.ConsolidatedOutcome{{Name: "A", MeanImpliedProb: 0.9}},
		},
	}
	good := twoWayCandidate("0.5", "0.99", 1000, 0.6, 0.01)

	opps := Detect([]Candidate{bad, good}, Thresholds{MinProfit: 0.1, MinLiquidity: 0})
	if len(opps) != 1 {
		t.Fatalf("Detect() = %d opportunities, want the good candidate only", len(opps))
	}
	if opps[0].EventID != "ev-1" {
		t.Errorf("surviving event = %q, want ev-1", opps[0].EventID)
	}
}

func TestDetectMalformedOutcomesDropsCandidate(t *testing.T) {
	bad := Candidate{
		Event: &market.Event{
			OutcomesRaw:      `not json`,
			OutcomePricesRaw: `["0.5"]`,
			Liquidity:        market.JSONFloat(1000),
		},
		Book: &market.BookEvent{ID: "bk-bad"},
	}

	opps := Detect([]Candidate{bad}, Thresholds{})
	if len(opps) != 0 {
		t.Errorf("Detect() = %d opportunities, want 0", len(opps))
	}
}

func TestDetectSellDirection(t *testing.T) {
	// Book consensus below the market price is a sell signal, but a sell
	// never clears a positive profit threshold under this profit definition,
	// so use a zero threshold to observe the direction.
	c := twoWayCandidate("0.6", "0.99", 1000, 0.5, 0.01)

	opps := Detect([]Candidate{c}, Thresholds{MinProfit: -1, MinLiquidity: 0})
	if len(opps) == 0 {
		t.Fatal("Detect() returned no opportunities")
	}
	if opps[0].Direction != "sell" {
		t.Errorf("Direction = %q, want sell", opps[0].Direction)
	}
}

func TestDetectEmptyInput(t *testing.T) {
	if opps := Detect(nil, Thresholds{}); len(opps) != 0 {
		t.Errorf("Detect(nil) = %d opportunities, want 0", len(opps))
	}
}
