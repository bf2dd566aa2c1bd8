package match

import (
	"strings"

	"github.com/lineshift/lineshift/pkg/market"
)

// ExtractorFunc produces canonical (home, away) team identifiers from a raw
// prediction-market event. Both strings are normalized; empty strings mean
// extraction failed and the event cannot be matched.
type ExtractorFunc func(ev *market.Event) (home, away string)

// ExtractorRegistry selects a team-name extractor by series-ticker: exact
// match first, then longest registered prefix, else the default extractor.
type ExtractorRegistry struct {
	byTicker map[string]ExtractorFunc
	fallback ExtractorFunc
}

// NewExtractorRegistry returns a registry with the stock sport variants
// registered. College football uses school names from the contract outcome
// labels; everything else uses the default variant.
func NewExtractorRegistry() *ExtractorRegistry {
	r := &ExtractorRegistry{
		byTicker: make(map[string]ExtractorFunc),
		fallback: ExtractDefault,
	}
	r.Register("cfb", ExtractCollege)
	return r
}

// Register adds or replaces the extractor for a series-ticker prefix.
func (r *ExtractorRegistry) Register(ticker string, fn ExtractorFunc) {
	r.byTicker[strings.ToLower(ticker)] = fn
}

// Lookup returns the extractor for a series ticker. Versioned tickers like
// "cfb-2025" resolve via their longest registered prefix.
func (r *ExtractorRegistry) Lookup(seriesTicker string) ExtractorFunc {
	ticker := strings.ToLower(strings.TrimSpace(seriesTicker))
	if ticker == "" {
		return r.fallback
	}

	if fn, ok := r.byTicker[ticker]; ok {
		return fn
	}

	best := ""
	for prefix := range r.byTicker {
		if strings.HasPrefix(ticker, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		return r.byTicker[best]
	}
	return r.fallback
}

// ExtractDefault reads the two contract outcome labels. Binary markets whose
// outcomes are literal "Yes"/"No" carry no team information in the labels, so
// those fall back to the display home/away team fields.
func ExtractDefault(ev *market.Event) (string, string) {
	outcomes, err := ev.Outcomes()
	if err == nil && len(outcomes) >= 2 {
		home := NormalizeName(outcomes[0])
		away := NormalizeName(outcomes[1])
		if home == "" || away == "" || isYesNo(home) || isYesNo(away) {
			return NormalizeName(ev.HomeTeamName), NormalizeName(ev.AwayTeamName)
		}
		return home, away
	}
	return NormalizeName(ev.HomeTeamName), NormalizeName(ev.AwayTeamName)
}

// ExtractCollege handles college sports, where the contract outcome labels
// carry full school names. Short display names (mascots) repeat across
// conferences, so the school name is combined with the display name unless it
// already ends with it ("Texas State" + "Bobcats" vs "SMU Mustangs" +
// "Mustangs"). Falls back to the default variant when school names are
// unavailable.
func ExtractCollege(ev *market.Event) (string, string) {
	outcomes, err := ev.Outcomes()
	if err != nil || len(outcomes) < 2 {
		return ExtractDefault(ev)
	}

	schoolHome := NormalizeName(outcomes[0])
	schoolAway := NormalizeName(outcomes[1])
	if schoolHome == "" || schoolAway == "" || isYesNo(schoolHome) || isYesNo(schoolAway) {
		return ExtractDefault(ev)
	}

	home := combineSchoolName(schoolHome, NormalizeName(ev.HomeTeamName))
	away := combineSchoolName(schoolAway, NormalizeName(ev.AwayTeamName))
	return home, away
}

// combineSchoolName appends the short display name to the school name unless
// the school name already ends with it, avoiding "texas texas" duplication.
func combineSchoolName(school, short string) string {
	if school == "" {
		return short
	}
	if short == "" || strings.HasSuffix(school, short) {
		return school
	}
	return school + " " + short
}

func isYesNo(s string) bool {
	return s == "yes" || s == "no"
}
