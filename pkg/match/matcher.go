package match

import (
	"time"

	"github.com/lineshift/lineshift/pkg/market"
)

// DefaultMinConfidence is the production admission threshold for event
// matches. Callers may pass looser thresholds for exploratory matching.
const DefaultMinConfidence = 0.8

// EventMatch pairs one prediction-market event with its best-scoring
// sportsbook event. At most one match exists per prediction-market event.
type EventMatch struct {
	Event      *market.Event
	Book       *market.BookEvent
	Confidence float64
}

// Matcher scores prediction-market events against sportsbook odds events.
type Matcher struct {
	extractors *ExtractorRegistry
	resolver   *SportResolver
}

// NewMatcher builds a matcher. Nil arguments select the stock extractor
// registry and the default taxonomy.
func NewMatcher(extractors *ExtractorRegistry, resolver *SportResolver) *Matcher {
	if extractors == nil {
		extractors = NewExtractorRegistry()
	}
	if resolver == nil {
		resolver = NewSportResolver(DefaultTaxonomy())
	}
	return &Matcher{extractors: extractors, resolver: resolver}
}

// Match pairs each prediction-market event with its best-scoring odds event.
// Ties break to the first-seen candidate, and a pair is admitted only when
// the best score reaches minConfidence. Output preserves the input order of
// the prediction-market events. A candidate that cannot be scored (malformed
// dates, empty outcomes, unresolvable teams) scores 0; it never aborts the
// pass.
func (m *Matcher) Match(events []*market.Event, books []*market.BookEvent, minConfidence float64) []EventMatch {
	var matches []EventMatch

	for _, ev := range events {
		var best *market.BookEvent
		bestScore := 0.0

		for _, book := range books {
			score := m.Score(ev, book)
			if score > bestScore {
				bestScore = score
				best = book
			}
		}

		if best != nil && bestScore >= minConfidence {
			matches = append(matches, EventMatch{Event: ev, Book: best, Confidence: bestScore})
		}
	}

	return matches
}

// Score computes the match confidence for one candidate pair in [0, 1].
//
// The score is team-name similarity gated by sport agreement and calendar-day
// coincidence. The date term is a binary gate: 1.0 when both sides carry a
// parseable timestamp on the same UTC calendar day or when either side's
// date is missing/unparseable (ambiguous dates are a neutral pass, not a
// penalty), 0.0 otherwise. The gate is symmetric in time.
func (m *Matcher) Score(ev *market.Event, book *market.BookEvent) float64 {
	if ev == nil || book == nil {
		return 0
	}

	// Sport gate: if both sides classify and disagree, this is not the
	// same real-world event no matter how similar the names are.
	evKey, evOK := m.resolver.Resolve(ev)
	bookKey, bookOK := m.resolver.ResolveBookEvent(book)
	if evOK && bookOK && evKey != bookKey {
		return 0
	}

	extract := m.extractors.Lookup(ev.SeriesTicker)
	pmHome, pmAway := extract(ev)
	if pmHome == "" || pmAway == "" {
		return 0
	}

	bookHome := NormalizeName(book.HomeTeam)
	bookAway := NormalizeName(book.AwayTeam)
	if bookHome == "" || bookAway == "" {
		return 0
	}

	sim := teamPairSimilarity(pmHome, pmAway, bookHome, bookAway)
	if sim == 0 {
		return 0
	}

	return sim * dateGate(bestTimestamp(ev), book.CommenceTime)
}

// bestTimestamp picks the most precise timestamp the event carries.
func bestTimestamp(ev *market.Event) string {
	if ev.StartTime != "" {
		return ev.StartTime
	}
	return ev.EventDate
}

// dateGate returns 1.0 when the two timestamps fall on the same UTC calendar
// day or when either is missing/unparseable, 0.0 otherwise.
func dateGate(a, b string) float64 {
	ta, okA := parseTimestamp(a)
	tb, okB := parseTimestamp(b)
	if !okA || !okB {
		return 1.0
	}
	ya, ma, da := ta.UTC().Date()
	yb, mb, db := tb.UTC().Date()
	if ya == yb && ma == mb && da == db {
		return 1.0
	}
	return 0.0
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
