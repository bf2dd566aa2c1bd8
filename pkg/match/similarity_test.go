package match

import "testing"

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "chiefs", "chiefs", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "chiefs", "", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ratio(tt.a, tt.b); got != tt.want {
				t.Errorf("ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioSingleEdit(t *testing.T) {
	// One deletion against an 18-rune name: 1 - 1/18.
	got := ratio("kansa city chiefs", "kansas city chiefs")
	want := 1.0 - 1.0/18.0
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ratio() = %v, want %v", got, want)
	}
}

func TestTeamPairSimilarity(t *testing.T) {
	tests := []struct {
		name                           string
		pmHome, pmAway                 string
		bookHome, bookAway             string
		wantMin, wantMax               float64
	}{
		{
			name:   "exact match",
			pmHome: "kansas city chiefs", pmAway: "buffalo bills",
			bookHome: "kansas city chiefs", bookAway: "buffalo bills",
			wantMin: 1.0, wantMax: 1.0,
		},
		{
			name:   "exact match with teams swapped",
			pmHome: "buffalo bills", pmAway: "kansas city chiefs",
			bookHome: "kansas city chiefs", bookAway: "buffalo bills",
			wantMin: 1.0, wantMax: 1.0,
		},
		{
			name:   "single deletion stays above the penalty band",
			pmHome: "kansa city chiefs", pmAway: "buffalo bills",
			bookHome: "kansas city chiefs", bookAway: "buffalo bills",
			wantMin: 0.95, wantMax: 0.999,
		},
		{
			name:   "transposition lands in the mid penalty band",
			pmHome: "kansas city cheifs", pmAway: "buffalo bills",
			bookHome: "kansas city chiefs", bookAway: "buffalo bills",
			wantMin: 0.8, wantMax: 0.81,
		},
		{
			name:   "unrelated teams are crushed by the low band",
			pmHome: "boston celtics", pmAway: "miami heat",
			bookHome: "kansas city chiefs", bookAway: "buffalo bills",
			wantMin: 0.0, wantMax: 0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := teamPairSimilarity(tt.pmHome, tt.pmAway, tt.bookHome, tt.bookAway)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("teamPairSimilarity() = %v, want in [%v, %v]", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}
