package match

import (
	"github.com/agnivade/levenshtein"
)

// ratio is the normalized edit-distance similarity of two strings in [0, 1].
func ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	longer := len([]rune(a))
	if l := len([]rune(b)); l > longer {
		longer = l
	}
	return 1.0 - float64(dist)/float64(longer)
}

// teamPairSimilarity scores two (home, away) pairs. Exact equality in either
// team order is 1.0. Otherwise the per-team ratios are averaged for both the
// identity ordering and the swapped ordering and the better one is kept, then
// pushed through a penalty curve that suppresses weak fuzzy matches: short or
// common team-name fragments score deceptively well on raw edit distance.
func teamPairSimilarity(pmHome, pmAway, bookHome, bookAway string) float64 {
	if (pmHome == bookHome && pmAway == bookAway) || (pmHome == bookAway && pmAway == bookHome) {
		return 1.0
	}

	straight := (ratio(pmHome, bookHome) + ratio(pmAway, bookAway)) / 2.0
	swapped := (ratio(pmHome, bookAway) + ratio(pmAway, bookHome)) / 2.0

	sim := straight
	if swapped > sim {
		sim = swapped
	}

	switch {
	case sim < 0.8:
		sim *= 0.6
	case sim < 0.95:
		sim *= 0.85
	}
	return sim
}
