// lineshift reconciles Polymarket sports markets against sportsbook odds and
// surfaces probability divergences worth trading.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/lineshift/lineshift/pkg/config"
	"github.com/lineshift/lineshift/pkg/export"
	"github.com/lineshift/lineshift/pkg/feeds/clob"
	"github.com/lineshift/lineshift/pkg/feeds/gamma"
	"github.com/lineshift/lineshift/pkg/feeds/oddsapi"
	"github.com/lineshift/lineshift/pkg/history"
	"github.com/lineshift/lineshift/pkg/market"
	"github.com/lineshift/lineshift/pkg/metrics"
	"github.com/lineshift/lineshift/pkg/pipeline"
	"github.com/lineshift/lineshift/pkg/pnl"
	"github.com/lineshift/lineshift/pkg/signal"
)

var (
	configPath = flag.String("config", "", "Path to config file (optional; env vars and defaults otherwise)")
	once       = flag.Bool("once", false, "Run a single pass and exit")
	track      = flag.Bool("track", false, "Open simulated positions on detected opportunities")
	stream     = flag.Bool("stream", false, "Record live CLOB price updates for matched markets")
	stakeSize  = flag.Float64("stake", 100, "Simulated stake size in shares")
	verbose    = flag.Bool("verbose", false, "Verbose logging")
)

func main() {
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("Starting lineshift")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	app, err := newApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer app.store.Close()

	if cfg.Metrics.Enabled {
		go app.serveMetrics(cfg.Metrics.Listen)
	}

	if *once {
		if err := app.runPass(ctx); err != nil {
			log.Fatalf("Pass failed: %v", err)
		}
		return
	}

	if *stream {
		go app.runStream(ctx)
	}

	ticker := time.NewTicker(cfg.Polymarket.PollInterval)
	defer ticker.Stop()

	if err := app.runPass(ctx); err != nil {
		log.Printf("[ERROR] %v", err)
	}

	for {
		select {
		case <-sigCh:
			log.Println("Shutting down...")
			cancel()
			app.printSummary()
			return
		case <-ticker.C:
			if err := app.runPass(ctx); err != nil {
				log.Printf("[ERROR] %v", err)
			}
		}
	}
}

type app struct {
	cfg     *config.Config
	pipe    *pipeline.Pipeline
	clob    *clob.Client
	prices  *clob.Stream
	store   *history.Store
	tracker *pnl.Tracker
	pm      *metrics.PipelineMetrics
}

func newApp(cfg *config.Config) (*app, error) {
	gammaClient := gamma.NewClient(gamma.WithBaseURL(cfg.Polymarket.GammaAPIURL))

	oddsClient, err := oddsapi.NewClient(cfg.OddsAPI.APIKey,
		oddsapi.WithBaseURL(cfg.OddsAPI.BaseURL),
		oddsapi.WithRegions(cfg.OddsAPI.Regions),
		oddsapi.WithMarkets(cfg.OddsAPI.Markets),
		oddsapi.WithOddsFormat(market.OddsFormat(cfg.OddsAPI.OddsFormat)),
	)
	if err != nil {
		return nil, err
	}

	store, err := history.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := store.CreateTables(context.Background()); err != nil {
		store.Close()
		return nil, err
	}

	pm := metrics.Default()

	pipe := pipeline.New(pipeline.Config{
		SeriesTickers: cfg.Polymarket.SeriesTickers,
		MinConfidence: cfg.Matching.MinConfidence,
		Thresholds: signal.Thresholds{
			MinProfit:    *cfg.Signals.MinProfit,
			MinLiquidity: *cfg.Signals.MinLiquidity,
		},
	}, gammaClient, oddsClient, nil, nil, pm)

	pipe.OnError(func(err error) {
		log.Printf("[WARN] %v", err)
	})

	a := &app{
		cfg:     cfg,
		pipe:    pipe,
		clob:    clob.NewClient(clob.WithBaseURL(cfg.Polymarket.CLOBAPIURL)),
		store:   store,
		tracker: pnl.NewTracker(),
		pm:      pm,
	}

	streamCfg := clob.DefaultStreamConfig()
	if cfg.Polymarket.CLOBWSSURL != "" {
		streamCfg.URL = cfg.Polymarket.CLOBWSSURL
	}
	a.prices = clob.NewStream(streamCfg, clob.StreamHandlers{
		OnPrice: a.recordLivePrice,
		OnConnect: func() {
			log.Println("Price stream connected")
		},
		OnDisconnect: func(err error) {
			log.Printf("[WARN] price stream disconnected: %v", err)
		},
	})
	return a, nil
}

// runStream consumes the CLOB websocket until shutdown. Tokens are subscribed
// as each pass discovers matched markets.
func (a *app) runStream(ctx context.Context) {
	if err := a.prices.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("[ERROR] price stream: %v", err)
	}
}

func (a *app) recordLivePrice(upd clob.PriceUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.store.Record(ctx, history.Snapshot{
		TokenID:    upd.TokenID,
		Price:      upd.Price,
		ObservedAt: upd.ObservedAt,
	})
	if err != nil {
		log.Printf("[WARN] recording live price: %v", err)
	}
}

func (a *app) runPass(ctx context.Context) error {
	report, err := a.pipe.Run(ctx)
	if err != nil {
		return err
	}

	log.Printf("Pass complete: %d events, %d matches, %d opportunities (%.1fs)",
		report.Events, len(report.Matches), len(report.Opportunities),
		report.Elapsed.Seconds())

	if *verbose {
		for _, m := range report.Matches {
			log.Printf("  match %.3f: %q <-> %s vs %s",
				m.Confidence, m.Event.Question, m.Book.HomeTeam, m.Book.AwayTeam)
		}
	}
	for _, opp := range report.Opportunities {
		log.Printf("[SIGNAL] %s %q @ %.3f vs book %.3f (profit %.1f%%, %d books)",
			opp.Direction, opp.OutcomeLabel, opp.MarketPrice, opp.SportsbookProb,
			opp.PotentialProfit*100, opp.BookmakerCount)
	}

	if len(report.Opportunities) > 0 {
		if err := a.exportResults(report.Opportunities); err != nil {
			log.Printf("[WARN] export: %v", err)
		}
	}

	if *track {
		a.openPositions(ctx, report)
	}
	if *stream {
		a.subscribeMatched(report)
	}
	a.recordSnapshots(ctx, report)
	return nil
}

func (a *app) subscribeMatched(report *pipeline.Report) {
	var tokens []string
	for _, m := range report.Matches {
		tokens = append(tokens, m.Event.ClobTokenIDs()...)
	}
	if len(tokens) == 0 {
		return
	}
	if err := a.prices.Subscribe(tokens...); err != nil {
		log.Printf("[WARN] subscribing price stream: %v", err)
	}
}

func (a *app) exportResults(opps []signal.Opportunity) error {
	stamp := time.Now().UTC().Format("20060102T150405Z")
	dir := a.cfg.Storage.OutputDir
	if err := export.WriteJSON(filepath.Join(dir, "opportunities_"+stamp+".json"), opps); err != nil {
		return err
	}
	return export.WriteOpportunitiesCSV(filepath.Join(dir, "opportunities_"+stamp+".csv"), opps)
}

// openPositions opens a simulated stake on each fresh opportunity so later
// passes can mark it against live CLOB prices.
func (a *app) openPositions(ctx context.Context, report *pipeline.Report) {
	byMarket := make(map[string]*market.Event, len(report.Matches))
	for _, m := range report.Matches {
		byMarket[m.Event.MarketID] = m.Event
	}

	for _, opp := range report.Opportunities {
		ev := byMarket[opp.MarketID]
		if ev == nil {
			continue
		}
		tokenID := tokenForOutcome(ev, opp.OutcomeLabel)
		if tokenID == "" {
			continue
		}

		pos, err := a.tracker.Open(opp, tokenID, decimal.NewFromFloat(*stakeSize))
		if err != nil {
			log.Printf("[WARN] open position: %v", err)
			continue
		}
		log.Printf("Opened %s position %s on %q @ %.3f", pos.Direction, pos.ID, pos.Outcome, opp.MarketPrice)
	}

	a.markPositions(ctx)
}

// tokenForOutcome pairs an outcome label with its CLOB token by array index.
func tokenForOutcome(ev *market.Event, label string) string {
	outcomes, err := ev.Outcomes()
	if err != nil {
		return ""
	}
	tokens := ev.ClobTokenIDs()
	for i, name := range outcomes {
		if name == label && i < len(tokens) {
			return tokens[i]
		}
	}
	return ""
}

func (a *app) markPositions(ctx context.Context) {
	open := a.tracker.OpenPositions()
	if len(open) == 0 {
		return
	}

	prices := make(map[string]decimal.Decimal, len(open))
	for _, pos := range open {
		price, err := a.clob.Snapshot(ctx, pos.TokenID)
		if err != nil {
			continue
		}
		prices[pos.TokenID] = decimal.NewFromFloat(price)
	}

	for _, pos := range a.tracker.CloseAtTarget(prices) {
		a.pm.AddRealizedPnL(pos.Direction, pos.RealizedPnL.InexactFloat64())
		log.Printf("Closed %s position %s on %q at %s, realized %s",
			pos.Direction, pos.ID, pos.Outcome, pos.ExitPrice.StringFixed(3), pos.RealizedPnL.StringFixed(2))
	}

	summary := a.tracker.Summarize(prices)
	a.pm.UpdatePositions("all", summary.OpenCount, summary.UnrealizedPnL.InexactFloat64())
	log.Printf("Positions: %d open, unrealized %s", summary.OpenCount, summary.UnrealizedPnL.StringFixed(2))
}

// recordSnapshots appends current prices of matched markets to the history
// store.
func (a *app) recordSnapshots(ctx context.Context, report *pipeline.Report) {
	var snaps []history.Snapshot
	now := time.Now().UTC()

	for _, m := range report.Matches {
		prices, err := m.Event.OutcomePrices()
		if err != nil {
			continue
		}
		tokens := m.Event.ClobTokenIDs()
		for i, tokenID := range tokens {
			if i >= len(prices) {
				break
			}
			snaps = append(snaps, history.Snapshot{
				TokenID:    tokenID,
				MarketID:   m.Event.MarketID,
				Price:      prices[i],
				Spread:     float64(m.Event.Spread),
				ObservedAt: now,
			})
		}
	}

	if err := a.store.RecordBatch(ctx, snaps); err != nil {
		log.Printf("[WARN] recording snapshots: %v", err)
	}
}

func (a *app) printSummary() {
	summary := a.tracker.Summarize(nil)
	log.Printf("Final: %d open, %d closed, realized %s",
		summary.OpenCount, summary.ClosedCount, summary.RealizedPnL.StringFixed(2))
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.pm.Registry(), promhttp.HandlerOpts{}))
	log.Printf("Metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("[ERROR] metrics server: %v", err)
	}
}
