// Package monitor runs the periodic drawdown evaluation loop: pull the
// latest series per user, run the analyzer, record metrics, and
// dispatch threshold alerts.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tathienbao/folio-sentinel/internal/alerting"
	"github.com/tathienbao/folio-sentinel/internal/analytics"
	"github.com/tathienbao/folio-sentinel/internal/config"
	"github.com/tathienbao/folio-sentinel/internal/metrics"
	"github.com/tathienbao/folio-sentinel/internal/types"
)

// SeriesProvider supplies a user's valuation series for a date range.
// The snapshot repository implements it; the engine itself never
// depends on the storage technology.
type SeriesProvider interface {
	GetValuationSeries(ctx context.Context, userID string, from, to time.Time) (types.ValuationSeries, error)
}

// ThresholdProvider supplies per-user alert tier configuration.
// A nil config means the user has no override and the monitor falls
// back to the configured defaults.
type ThresholdProvider interface {
	GetThresholds(ctx context.Context, userID string) (*types.AlertThresholdConfig, error)
}

// UserLister enumerates the users with stored valuations.
type UserLister interface {
	ListUsers(ctx context.Context) ([]string, error)
}

// Monitor periodically evaluates every user's drawdown state.
type Monitor struct {
	cfg        *config.Config
	analyzer   *analytics.Analyzer
	series     SeriesProvider
	thresholds ThresholdProvider
	users      UserLister
	alerter    alerting.Alerter
	recorder   *metrics.Recorder
	limiter    *rate.Limiter
	logger     *slog.Logger

	// live high-water marks across passes, one tracker per user
	trackersMu sync.Mutex
	trackers   map[string]*analytics.LiveTracker
}

// New creates a monitor. alerter may be nil to disable dispatch.
func New(
	cfg *config.Config,
	series SeriesProvider,
	thresholds ThresholdProvider,
	users UserLister,
	alerter alerting.Alerter,
	logger *slog.Logger,
) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		cfg:        cfg,
		analyzer:   analytics.NewAnalyzer(logger),
		series:     series,
		thresholds: thresholds,
		users:      users,
		alerter:    alerter,
		recorder:   metrics.NewRecorder(),
		limiter:    rate.NewLimiter(rate.Limit(cfg.Monitor.AlertsPerMinute/60), cfg.Monitor.AlertBurst),
		logger:     logger,
		trackers:   make(map[string]*analytics.LiveTracker),
	}
}

// Run evaluates all users once immediately and then on every interval
// tick until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor starting",
		"interval", m.cfg.MonitorInterval(),
		"lookback_days", m.cfg.Analytics.LookbackDays,
	)

	ticker := time.NewTicker(m.cfg.MonitorInterval())
	defer ticker.Stop()

	m.evaluateAll(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopping")
			return ctx.Err()
		case <-ticker.C:
			m.evaluateAll(ctx)
		}
	}
}

// evaluateAll runs one evaluation pass over every known user.
// Per-user failures are logged and counted, not fatal to the pass.
func (m *Monitor) evaluateAll(ctx context.Context) {
	users, err := m.users.ListUsers(ctx)
	if err != nil {
		m.logger.Error("list users failed", "err", err)
		m.recorder.RecordAnalysisError()
		return
	}

	for _, user := range users {
		if ctx.Err() != nil {
			return
		}
		if err := m.EvaluateUser(ctx, user); err != nil {
			m.logger.Error("evaluation failed", "user", user, "err", err)
			m.recorder.RecordAnalysisError()
		}
	}
}

// EvaluateUser analyzes one user's series, records metrics, and
// dispatches any breached-tier alerts.
func (m *Monitor) EvaluateUser(ctx context.Context, userID string) error {
	timer := metrics.NewTimer()
	defer timer.ObserveAnalysis()

	var from time.Time
	if m.cfg.Analytics.LookbackDays > 0 {
		from = time.Now().UTC().AddDate(0, 0, -m.cfg.Analytics.LookbackDays)
	}

	series, err := m.series.GetValuationSeries(ctx, userID, from, time.Time{})
	if err != nil {
		return fmt.Errorf("fetch series: %w", err)
	}

	thresholds, err := m.thresholds.GetThresholds(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetch thresholds: %w", err)
	}
	if thresholds == nil {
		defaults := m.cfg.ThresholdConfig()
		thresholds = &defaults
	}

	result, err := m.analyzer.Analyze(series, analytics.Options{
		MinDrawdownPercent: m.cfg.MinDrawdownPercentDecimal(),
		RiskFreeRate:       m.cfg.RiskFreeRateDecimal(),
		Thresholds:         thresholds,
	})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	m.record(userID, series, result)
	m.dispatch(ctx, userID, result.Alerts)

	return nil
}

func (m *Monitor) record(userID string, series types.ValuationSeries, result *analytics.Result) {
	hasOpen := false
	for _, ev := range result.Events {
		if !ev.IsRecovered {
			hasOpen = true
			break
		}
	}

	m.recorder.RecordAnalysis(userID, result.Statistics, hasOpen)

	last, ok := series.Last()
	if !ok {
		return
	}

	// The live tracker holds the peak across passes even when the
	// analysis lookback window slides past it.
	tracker := m.trackerFor(userID, last)
	tracker.Update(last.Value, last.Date)
	peak, _ := tracker.Peak()
	m.recorder.RecordValuation(userID, tracker.Current(), peak)
}

func (m *Monitor) trackerFor(userID string, seed types.ValuationPoint) *analytics.LiveTracker {
	m.trackersMu.Lock()
	defer m.trackersMu.Unlock()

	tracker, ok := m.trackers[userID]
	if !ok {
		tracker = analytics.NewLiveTracker(seed.Value, seed.Date)
		m.trackers[userID] = tracker
	}
	return tracker
}

// dispatch sends alerts through the configured channel, dropping
// (and counting) anything beyond the rate limit to avoid paging storms
// when many users breach at once.
func (m *Monitor) dispatch(ctx context.Context, userID string, alerts []types.Alert) {
	if m.alerter == nil {
		return
	}

	for _, alert := range alerts {
		m.recorder.RecordAlert(alert.Level)

		if !m.limiter.Allow() {
			m.recorder.RecordAlertSuppressed()
			m.logger.Warn("alert suppressed by rate limit",
				"user", userID,
				"level", alert.Level.String(),
			)
			continue
		}

		if err := m.alerter.Dispatch(ctx, alert); err != nil {
			m.logger.Error("alert dispatch failed",
				"user", userID,
				"alerter", m.alerter.Name(),
				"err", err,
			)
		}
	}
}
