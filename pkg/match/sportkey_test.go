package match

import (
	"testing"

	"github.com/lineshift/lineshift/pkg/market"
)

func TestSportResolverResolve(t *testing.T) {
	r := NewSportResolver(DefaultTaxonomy())

	tests := []struct {
		name    string
		event   market.Event
		wantKey string
		wantOK  bool
	}{
		{
			name:    "exact series ticker",
			event:   market.Event{SeriesTicker: "nfl"},
			wantKey: "americanfootball_nfl",
			wantOK:  true,
		},
		{
			name:    "exact ticker wins over prefix rules",
			event:   market.Event{SeriesTicker: "ncaa-cbb"},
			wantKey: "basketball_ncaab",
			wantOK:  true,
		},
		{
			name:    "versioned ticker resolves by prefix",
			event:   market.Event{SeriesTicker: "cfb-2026-week1"},
			wantKey: "americanfootball_ncaaf",
			wantOK:  true,
		},
		{
			name:    "ncaa-cbb fragment beats cfb prefix ordering",
			event:   market.Event{SeriesTicker: "ncaa-cbb-2026"},
			wantKey: "basketball_ncaab",
			wantOK:  true,
		},
		{
			name:    "ticker is case insensitive",
			event:   market.Event{SeriesTicker: "NBA"},
			wantKey: "basketball_nba",
			wantOK:  true,
		},
		{
			name: "roster substring on team names",
			event: market.Event{
				HomeTeamName: "Kansas City Chiefs",
				AwayTeamName: "Buffalo Bills",
			},
			wantKey: "americanfootball_nfl",
			wantOK:  true,
		},
		{
			name: "unknown ticker still resolved by roster",
			event: market.Event{
				SeriesTicker: "something-else",
				HomeTeamName: "Los Angeles Lakers",
				AwayTeamName: "Boston Celtics",
			},
			wantKey: "basketball_nba",
			wantOK:  true,
		},
		{
			name: "keyword fallback on question text",
			event: market.Event{
				Question: "Will the NHL game go to overtime?",
			},
			wantKey: "icehockey_nhl",
			wantOK:  true,
		},
		{
			name: "keyword fallback on description",
			event: market.Event{
				Description: "Moneyline market for tonight's college basketball matchup.",
			},
			wantKey: "basketball_ncaab",
			wantOK:  true,
		},
		{
			name:   "unresolvable event",
			event:  market.Event{Question: "Will it rain tomorrow?"},
			wantOK: false,
		},
		{
			name:   "empty event",
			event:  market.Event{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := r.Resolve(&tt.event)
			if ok != tt.wantOK {
				t.Fatalf("Resolve() ok = %v, want %v (key %q)", ok, tt.wantOK, key)
			}
			if ok && key != tt.wantKey {
				t.Errorf("Resolve() = %q, want %q", key, tt.wantKey)
			}
		})
	}
}

func TestSportResolverNilEvent(t *testing.T) {
	r := NewSportResolver(DefaultTaxonomy())
	if _, ok := r.Resolve(nil); ok {
		t.Error("nil event should not resolve")
	}
}

func TestResolveBookEvent(t *testing.T) {
	r := NewSportResolver(DefaultTaxonomy())

	if key, ok := r.ResolveBookEvent(&market.BookEvent{SportKey: "basketball_nba"}); !ok || key != "basketball_nba" {
		t.Errorf("ResolveBookEvent() = (%q, %v), want (basketball_nba, true)", key, ok)
	}
	if _, ok := r.ResolveBookEvent(&market.BookEvent{}); ok {
		t.Error("book event without a sport key should not resolve")
	}
	if _, ok := r.ResolveBookEvent(nil); ok {
		t.Error("nil book event should not resolve")
	}
}
