// Package metrics provides Prometheus metrics for the reconciliation
// pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics collects and exposes pipeline-related Prometheus metrics.
type PipelineMetrics struct {
	registry *prometheus.Registry

	// Feed metrics
	FeedRequests *prometheus.CounterVec
	FeedLatency  *prometheus.HistogramVec

	// Matching metrics
	EventsScanned   *prometheus.CounterVec
	EventsMatched   *prometheus.CounterVec
	MatchConfidence *prometheus.HistogramVec

	// Signal metrics
	OpportunitiesTotal *prometheus.CounterVec
	ExpectedMovement   *prometheus.HistogramVec
	PotentialProfit    *prometheus.HistogramVec

	// Position metrics
	OpenPositions *prometheus.GaugeVec
	UnrealizedPnL *prometheus.GaugeVec
	RealizedPnL   *prometheus.CounterVec

	// Run metrics
	PipelineRuns    *prometheus.CounterVec
	PipelineElapsed *prometheus.HistogramVec
}

// NewPipelineMetrics creates a new metrics collector with its own registry.
func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	pm := &PipelineMetrics{
		registry: registry,

		FeedRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lineshift_feed_requests_total",
				Help: "Total upstream feed requests",
			},
			[]string{"feed", "status"},
		),
		FeedLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lineshift_feed_latency_seconds",
				Help:    "Upstream feed request latency",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"feed"},
		),

		EventsScanned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lineshift_events_scanned_total",
				Help: "Prediction-market events considered for matching",
			},
			[]string{"sport"},
		),
		EventsMatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lineshift_events_matched_total",
				Help: "Events paired with a sportsbook event",
			},
			[]string{"sport"},
		),
		MatchConfidence: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lineshift_match_confidence",
				Help:    "Confidence of admitted event matches",
				Buckets: prometheus.LinearBuckets(0.8, 0.02, 11),
			},
			[]string{"sport"},
		),

		OpportunitiesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lineshift_opportunities_total",
				Help: "Admitted opportunities",
			},
			[]string{"sport", "direction", "market_type"},
		),
		ExpectedMovement: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lineshift_expected_movement",
				Help:    "Sportsbook probability minus market price",
				Buckets: prometheus.LinearBuckets(-0.25, 0.05, 11),
			},
			[]string{"sport"},
		),
		PotentialProfit: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lineshift_potential_profit",
				Help:    "Expected movement as a fraction of entry price",
				Buckets: []float64{0.02, 0.05, 0.1, 0.15, 0.2, 0.3, 0.5, 1},
			},
			[]string{"sport"},
		),

		OpenPositions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lineshift_open_positions",
				Help: "Currently open simulated positions",
			},
			[]string{"direction"},
		),
		UnrealizedPnL: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lineshift_unrealized_pnl",
				Help: "Marked-to-market PnL of open positions",
			},
			[]string{"direction"},
		),
		RealizedPnL: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lineshift_realized_pnl_total",
				Help: "Realized PnL of closed positions",
			},
			[]string{"direction"},
		),

		PipelineRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lineshift_pipeline_runs_total",
				Help: "Full reconciliation passes",
			},
			[]string{"status"},
		),
		PipelineElapsed: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lineshift_pipeline_elapsed_seconds",
				Help:    "Wall time of one reconciliation pass",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"status"},
		),
	}

	pm.registerAll()
	return pm
}

func (pm *PipelineMetrics) registerAll() {
	pm.registry.MustRegister(
		pm.FeedRequests,
		pm.FeedLatency,
		pm.EventsScanned,
		pm.EventsMatched,
		pm.MatchConfidence,
		pm.OpportunitiesTotal,
		pm.ExpectedMovement,
		pm.PotentialProfit,
		pm.OpenPositions,
		pm.UnrealizedPnL,
		pm.RealizedPnL,
		pm.PipelineRuns,
		pm.PipelineElapsed,
	)
}

// Registry returns the underlying Prometheus registry for the HTTP handler.
func (pm *PipelineMetrics) Registry() *prometheus.Registry {
	return pm.registry
}

// RecordFeedRequest records one upstream request.
func (pm *PipelineMetrics) RecordFeedRequest(feed, status string, latencySec float64) {
	pm.FeedRequests.WithLabelValues(feed, status).Inc()
	pm.FeedLatency.WithLabelValues(feed).Observe(latencySec)
}

// RecordMatchPass records one per-sport matching pass.
func (pm *PipelineMetrics) RecordMatchPass(sport string, scanned, matched int, confidences []float64) {
	pm.EventsScanned.WithLabelValues(sport).Add(float64(scanned))
	pm.EventsMatched.WithLabelValues(sport).Add(float64(matched))
	for _, c := range confidences {
		pm.MatchConfidence.WithLabelValues(sport).Observe(c)
	}
}

// RecordOpportunity records one admitted opportunity.
func (pm *PipelineMetrics) RecordOpportunity(sport, direction, marketType string, movement, profit float64) {
	pm.OpportunitiesTotal.WithLabelValues(sport, direction, marketType).Inc()
	pm.ExpectedMovement.WithLabelValues(sport).Observe(movement)
	pm.PotentialProfit.WithLabelValues(sport).Observe(profit)
}

// RecordRun records one full pipeline pass.
func (pm *PipelineMetrics) RecordRun(status string, elapsedSec float64) {
	pm.PipelineRuns.WithLabelValues(status).Inc()
	pm.PipelineElapsed.WithLabelValues(status).Observe(elapsedSec)
}

// UpdatePositions updates the position gauges for one direction.
func (pm *PipelineMetrics) UpdatePositions(direction string, open int, unrealized float64) {
	pm.OpenPositions.WithLabelValues(direction).Set(float64(open))
	pm.UnrealizedPnL.WithLabelValues(direction).Set(unrealized)
}

// AddRealizedPnL accumulates realized PnL for one direction. Counters only
// go up; negative results are recorded as zero-clamped losses elsewhere.
func (pm *PipelineMetrics) AddRealizedPnL(direction string, pnl float64) {
	if pnl > 0 {
		pm.RealizedPnL.WithLabelValues(direction).Add(pnl)
	}
}

var (
	defaultMetrics *PipelineMetrics
	defaultOnce    sync.Once
)

// Default returns the shared metrics instance.
func Default() *PipelineMetrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewPipelineMetrics()
	})
	return defaultMetrics
}
