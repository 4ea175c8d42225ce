// Package metrics exposes Prometheus metrics for the analytics monitor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges tracking the latest analysis per user.
var (
	PortfolioValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sentinel_portfolio_value",
		Help: "Latest portfolio valuation.",
	}, []string{"user"})

	PortfolioPeak = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sentinel_portfolio_peak_value",
		Help: "Running high-water mark of the portfolio.",
	}, []string{"user"})

	DrawdownCurrent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sentinel_drawdown_current_ratio",
		Help: "Current drawdown as a signed ratio (-0.15 = 15% below peak).",
	}, []string{"user"})

	DrawdownMax = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sentinel_drawdown_max_ratio",
		Help: "Maximum drawdown over the analyzed window as a signed ratio.",
	}, []string{"user"})

	VolatilityAnnualized = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sentinel_volatility_annualized",
		Help: "Annualized volatility of daily returns.",
	}, []string{"user"})

	SharpeRatio = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sentinel_sharpe_ratio",
		Help: "Annualized Sharpe ratio.",
	}, []string{"user"})

	DrawdownEventsOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sentinel_drawdown_events_open",
		Help: "1 when the portfolio is currently in an open drawdown.",
	}, []string{"user"})
)

// Counters and histograms for the monitor loop itself.
var (
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_analyses_total",
		Help: "Completed analyses by outcome.",
	}, []string{"outcome"})

	AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_alerts_total",
		Help: "Alerts generated by level.",
	}, []string{"level"})

	AlertsSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_alerts_suppressed_total",
		Help: "Alerts dropped by the dispatch rate limiter.",
	})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sentinel_analysis_duration_seconds",
		Help:    "Wall time of one full analysis.",
		Buckets: prometheus.DefBuckets,
	})
)
