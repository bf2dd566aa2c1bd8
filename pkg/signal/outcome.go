// Package signal pairs prediction-market outcomes with consolidated
// sportsbook outcomes and surfaces the probability divergences worth trading.
package signal

import (
	"strings"

	"github.com/lineshift/lineshift/pkg/consolidate"
)

// MatchOutcome pairs one prediction-market outcome label with the best
// consolidated sportsbook outcome by bidirectional substring containment:
// the label contains the consolidated name or vice versa, case-insensitively.
// Among containment matches the tightest wins, measured by the length ratio
// shorter/longer. Deliberately not fuzzy: at this stage both names are
// expected to share a whole token, so edit distance would only invite false
// pairs.
func MatchOutcome(label string, outcomes []consolidate.ConsolidatedOutcome) (consolidate.ConsolidatedOutcome, bool) {
	needle := strings.ToLower(strings.TrimSpace(label))
	if needle == "" {
		return consolidate.ConsolidatedOutcome{}, false
	}

	var best consolidate.ConsolidatedOutcome
	bestRatio := 0.0
	found := false

	for _, oc := range outcomes {
		name := strings.ToLower(strings.TrimSpace(oc.Name))
		if name == "" {
			continue
		}
		if !strings.Contains(needle, name) && !strings.Contains(name, needle) {
			continue
		}
		r := lengthRatio(needle, name)
		if !found || r > bestRatio {
			best = oc
			bestRatio = r
			found = true
		}
	}
	return best, found
}

// lengthRatio is shorter/longer in (0, 1]; 1.0 means equal length.
func lengthRatio(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}
