// Package pipeline runs the full reconciliation pass: fetch both feeds,
// match events per sport, consolidate bookmaker quotes, and detect
// opportunities.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/lineshift/lineshift/pkg/consolidate"
	"github.com/lineshift/lineshift/pkg/market"
	"github.com/lineshift/lineshift/pkg/match"
	"github.com/lineshift/lineshift/pkg/metrics"
	"github.com/lineshift/lineshift/pkg/signal"
)

// MarketSource supplies prediction-market events.
type MarketSource interface {
	FetchMarketEvents(ctx context.Context, seriesTickers ...string) ([]*market.Event, error)
}

// OddsSource supplies sportsbook events with bookmaker quotes for one sport
// key, plus the price format the quotes arrive in.
type OddsSource interface {
	ListOdds(ctx context.Context, sportKey string) ([]*market.BookEvent, error)
	OddsFormat() market.OddsFormat
}

// Config holds the pipeline's tunable settings.
type Config struct {
	SeriesTickers []string
	MinConfidence float64
	Thresholds    signal.Thresholds
}

// Pipeline wires the feeds to the matching engine.
type Pipeline struct {
	config   Config
	markets  MarketSource
	odds     OddsSource
	matcher  *match.Matcher
	resolver *match.SportResolver
	metrics  *metrics.PipelineMetrics

	onError func(error)
}

// New creates a pipeline. A nil matcher or resolver selects the stock
// taxonomy; nil metrics selects the shared default collector.
func New(config Config, markets MarketSource, odds OddsSource, matcher *match.Matcher, resolver *match.SportResolver, pm *metrics.PipelineMetrics) *Pipeline {
	if matcher == nil {
		matcher = match.NewMatcher(nil, nil)
	}
	if resolver == nil {
		resolver = match.NewSportResolver(match.DefaultTaxonomy())
	}
	if pm == nil {
		pm = metrics.Default()
	}
	if config.MinConfidence == 0 {
		config.MinConfidence = match.DefaultMinConfidence
	}
	return &Pipeline{
		config:   config,
		markets:  markets,
		odds:     odds,
		matcher:  matcher,
		resolver: resolver,
		metrics:  pm,
	}
}

// OnError sets a callback for non-fatal per-sport errors.
func (p *Pipeline) OnError(fn func(error)) {
	p.onError = fn
}

// Report is the outcome of one reconciliation pass.
type Report struct {
	Events        int
	Matches       []match.EventMatch
	Opportunities []signal.Opportunity
	SportErrors   map[string]error
	Elapsed       time.Duration
}

// Run executes one full pass. A prediction-market fetch failure aborts the
// pass; a failure fetching or processing one sport's odds is recorded in the
// report and the remaining sports still run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	started := time.Now()

	events, err := p.markets.FetchMarketEvents(ctx, p.config.SeriesTickers...)
	if err != nil {
		p.metrics.RecordRun("error", time.Since(started).Seconds())
		return nil, fmt.Errorf("fetching market events: %w", err)
	}

	report := &Report{
		Events:      len(events),
		SportErrors: make(map[string]error),
	}

	sports, groups := p.groupBySport(events)
	for _, sport := range sports {
		if err := p.runSport(ctx, sport, groups[sport], report); err != nil {
			report.SportErrors[sport] = err
			p.reportError(fmt.Errorf("sport %s: %w", sport, err))
		}
	}

	report.Elapsed = time.Since(started)
	p.metrics.RecordRun("ok", report.Elapsed.Seconds())
	return report, nil
}

// groupBySport buckets events by resolved sport key, preserving input order
// within each bucket and returning the keys in first-seen order so a pass
// over the same feed yields the same report. Unclassifiable events are
// dropped; without a sport key there is no odds feed to compare against.
func (p *Pipeline) groupBySport(events []*market.Event) ([]string, map[string][]*market.Event) {
	var order []string
	groups := make(map[string][]*market.Event)
	for _, ev := range events {
		key, ok := p.resolver.Resolve(ev)
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], ev)
	}
	return order, groups
}

func (p *Pipeline) runSport(ctx context.Context, sport string, events []*market.Event, report *Report) error {
	fetchStart := time.Now()
	books, err := p.odds.ListOdds(ctx, sport)
	if err != nil {
		p.metrics.RecordFeedRequest("oddsapi", "error", time.Since(fetchStart).Seconds())
		return fmt.Errorf("fetching odds: %w", err)
	}
	p.metrics.RecordFeedRequest("oddsapi", "ok", time.Since(fetchStart).Seconds())

	format := p.odds.OddsFormat()
	for _, book := range books {
		if err := consolidate.EnrichQuotes(book, format); err != nil {
			return fmt.Errorf("enriching quotes: %w", err)
		}
	}

	matches := p.matcher.Match(events, books, p.config.MinConfidence)

	confidences := make([]float64, len(matches))
	candidates := make([]signal.Candidate, len(matches))
	for i, m := range matches {
		confidences[i] = m.Confidence
		candidates[i] = signal.Candidate{
			Event:        m.Event,
			Book:         m.Book,
			Confidence:   m.Confidence,
			Consolidated: consolidate.Consolidate(m.Book),
		}
	}
	p.metrics.RecordMatchPass(sport, len(events), len(matches), confidences)

	opps := signal.Detect(candidates, p.config.Thresholds)
	for _, opp := range opps {
		p.metrics.RecordOpportunity(sport, opp.Direction, opp.MarketType, opp.ExpectedMovement, opp.PotentialProfit)
	}

	report.Matches = append(report.Matches, matches...)
	report.Opportunities = append(report.Opportunities, opps...)
	return nil
}

func (p *Pipeline) reportError(err error) {
	if p.onError != nil {
		p.onError(err)
	}
}
