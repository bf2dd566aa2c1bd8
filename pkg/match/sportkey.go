package match

import (
	"strings"

	"github.com/lineshift/lineshift/pkg/market"
)

// Taxonomy holds the static tables the sport resolver consults. It is plain
// data so tests and callers can substitute alternate tables; DefaultTaxonomy
// returns the production set.
type Taxonomy struct {
	// SeriesTickers maps a prediction-market series ticker to a canonical
	// sport key, e.g. "nfl" -> "americanfootball_nfl".
	SeriesTickers map[string]string

	// TickerPrefixes resolves versioned tickers ("cfb-2025") by prefix.
	// Order matters: earlier entries win, so the more specific patterns
	// must come first.
	TickerPrefixes []PrefixRule

	// Rosters maps a sport key to known team-name fragments for that league.
	Rosters []RosterRule

	// Keywords maps free-text question/description keywords to a sport key.
	Keywords []KeywordRule
}

// PrefixRule resolves a ticker prefix (or contained fragment) to a sport key.
type PrefixRule struct {
	Prefix   string
	Contains bool // match anywhere in the ticker instead of the start
	SportKey string
}

// RosterRule associates a league's known team names with its sport key.
type RosterRule struct {
	SportKey string
	Teams    []string
}

// KeywordRule associates free-text keywords with a sport key.
type KeywordRule struct {
	SportKey string
	Words    []string
}

// SportResolver maps a raw prediction-market event to a canonical sport key
// using a fixed priority cascade: exact ticker, ticker prefix, roster
// substring, then question/description keywords. Step order encodes
// precedence and must not be reordered; rosters collide across leagues that
// share team words.
type SportResolver struct {
	tax Taxonomy
}

// NewSportResolver builds a resolver over the given taxonomy tables.
func NewSportResolver(tax Taxonomy) *SportResolver {
	return &SportResolver{tax: tax}
}

// Resolve returns the canonical sport key for an event, or ("", false) when
// the event cannot be classified.
func (r *SportResolver) Resolve(ev *market.Event) (string, bool) {
	if ev == nil {
		return "", false
	}

	ticker := strings.ToLower(strings.TrimSpace(ev.SeriesTicker))
	if ticker != "" {
		if key, ok := r.tax.SeriesTickers[ticker]; ok {
			return key, true
		}
		for _, rule := range r.tax.TickerPrefixes {
			if rule.Contains {
				if strings.Contains(ticker, rule.Prefix) {
					return rule.SportKey, true
				}
			} else if strings.HasPrefix(ticker, rule.Prefix) {
				return rule.SportKey, true
			}
		}
	}

	teams := strings.ToLower(ev.HomeTeamName + " " + ev.AwayTeamName)
	for _, roster := range r.tax.Rosters {
		for _, team := range roster.Teams {
			if strings.Contains(teams, team) {
				return roster.SportKey, true
			}
		}
	}

	text := strings.ToLower(ev.Question + " " + ev.Description)
	for _, kw := range r.tax.Keywords {
		for _, word := range kw.Words {
			if strings.Contains(text, word) {
				return kw.SportKey, true
			}
		}
	}

	return "", false
}

// ResolveBookEvent returns the sport key carried by the odds feed itself.
func (r *SportResolver) ResolveBookEvent(ev *market.BookEvent) (string, bool) {
	if ev == nil || ev.SportKey == "" {
		return "", false
	}
	return ev.SportKey, true
}

// DefaultTaxonomy returns the production sport tables.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		SeriesTickers: map[string]string{
			"nfl":                       "americanfootball_nfl",
			"nba":                       "basketball_nba",
			"mlb":                       "baseball_mlb",
			"nhl":                       "icehockey_nhl",
			"ncaaf":                     "americanfootball_ncaaf",
			"ncaab":                     "basketball_ncaab",
			"cwbb":                      "basketball_ncaab",
			"cbb":                       "basketball_ncaab",
			"cfb":                       "americanfootball_ncaaf",
			"ncaa-cbb":                  "basketball_ncaab",
			"soccer":                    "soccer_epl",
			"ufc":                       "mma_mixed_martial_arts",
			"mma":                       "mma_mixed_martial_arts",
			"uef-qualifiers":            "soccer_fifa_world_cup_qualifiers_europe",
			"primera-divisin-argentina": "soccer_argentina_primera_division",
			"nba-2026":                  "basketball_nba",
			"odi":                       "cricket_odi",
			"cfb-2025":                  "americanfootball_ncaaf",
			"brazil-serie-a":            "soccer_brazil_campeonato",
		},
		TickerPrefixes: []PrefixRule{
			// ncaa-cbb must be tested before the bare cfb/cbb prefixes.
			{Prefix: "ncaa-cbb", Contains: true, SportKey: "basketball_ncaab"},
			{Prefix: "ncaa_cbb", Contains: true, SportKey: "basketball_ncaab"},
			{Prefix: "cfb", SportKey: "americanfootball_ncaaf"},
			{Prefix: "cbb-", SportKey: "basketball_ncaab"},
			{Prefix: "cbb_", SportKey: "basketball_ncaab"},
		},
		Rosters: []RosterRule{
			{SportKey: "americanfootball_nfl", Teams: []string{
				"patriots", "chiefs", "bills", "dolphins", "jets", "bengals", "ravens", "steelers",
				"browns", "texans", "colts", "jaguars", "titans", "broncos", "raiders", "chargers",
				"cowboys", "giants", "eagles", "commanders", "packers", "lions", "vikings", "bears",
				"falcons", "panthers", "saints", "buccaneers", "rams", "cardinals", "49ers", "seahawks",
			}},
			{SportKey: "basketball_nba", Teams: []string{
				"lakers", "celtics", "warriors", "nets", "knicks", "bulls", "heat", "mavericks",
				"clippers", "nuggets", "rockets", "suns", "bucks", "76ers", "raptors", "jazz",
				"trail blazers", "thunder", "spurs", "pistons", "cavaliers", "pacers", "hornets",
				"hawks", "wizards", "magic", "kings", "pelicans", "grizzlies", "timberwolves",
			}},
			{SportKey: "baseball_mlb", Teams: []string{
				"yankees", "red sox", "dodgers", "cubs", "astros", "braves",
				"mets", "phillies", "angels", "mariners", "padres", "rockies", "diamondbacks",
				"twins", "white sox", "royals", "guardians", "rays", "blue jays",
				"orioles", "athletics", "marlins", "nationals", "brewers", "pirates", "reds",
			}},
			{SportKey: "icehockey_nhl", Teams: []string{
				"bruins", "maple leafs", "canadiens", "islanders", "devils", "flyers",
				"capitals", "penguins", "hurricanes", "lightning", "sabres", "senators",
				"red wings", "blackhawks", "wild", "avalanche", "stars", "predators",
				"blues", "coyotes", "golden knights", "ducks", "sharks", "canucks",
				"flames", "oilers",
			}},
			{SportKey: "americanfootball_ncaaf", Teams: []string{
				"crimson tide", "bulldogs", "tigers", "buckeyes", "sooners", "longhorns", "trojans",
				"fighting irish", "seminoles", "badgers", "spartans", "wolverines",
				"cougars", "aggies", "razorbacks",
			}},
			{SportKey: "basketball_ncaab", Teams: []string{
				"blue devils", "tar heels", "wildcats", "jayhawks", "hoosiers",
				"cardinal", "bruins", "gators", "longhorns",
			}},
		},
		Keywords: []KeywordRule{
			{SportKey: "americanfootball_nfl", Words: []string{"nfl", "national football league", "football game"}},
			{SportKey: "basketball_nba", Words: []string{"nba", "national basketball association", "basketball game"}},
			{SportKey: "baseball_mlb", Words: []string{"mlb", "major league baseball", "baseball game"}},
			{SportKey: "icehockey_nhl", Words: []string{"nhl", "national hockey league", "hockey game"}},
			{SportKey: "americanfootball_ncaaf", Words: []string{"ncaaf", "college football", "cfb"}},
			{SportKey: "basketball_ncaab", Words: []string{"ncaab", "college basketball", "cbb", "cwbb"}},
			{SportKey: "mma_mixed_martial_arts", Words: []string{"ufc", "mma", "mixed martial arts", "fight"}},
			{SportKey: "soccer_epl", Words: []string{"soccer", "premier league", "mls", "football match"}},
		},
	}
}
