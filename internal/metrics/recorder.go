package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tathienbao/folio-sentinel/internal/types"
)

// Recorder provides methods for recording analytics metrics.
type Recorder struct{}

// NewRecorder creates a new metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordAnalysis records the headline figures of a completed analysis.
func (r *Recorder) RecordAnalysis(user string, stats types.PerformanceStatistics, hasOpenEvent bool) {
	DrawdownCurrent.WithLabelValues(user).Set(stats.CurrentDrawdownPercent.InexactFloat64())
	DrawdownMax.WithLabelValues(user).Set(stats.MaxDrawdownPercent.InexactFloat64())

	if stats.VolatilityAnnualized != nil {
		VolatilityAnnualized.WithLabelValues(user).Set(stats.VolatilityAnnualized.InexactFloat64())
	}
	if stats.SharpeRatio != nil {
		SharpeRatio.WithLabelValues(user).Set(stats.SharpeRatio.InexactFloat64())
	}

	open := 0.0
	if hasOpenEvent {
		open = 1.0
	}
	DrawdownEventsOpen.WithLabelValues(user).Set(open)

	AnalysesTotal.WithLabelValues("ok").Inc()
}

// RecordValuation records the latest portfolio value and peak.
func (r *Recorder) RecordValuation(user string, value, peak decimal.Decimal) {
	PortfolioValue.WithLabelValues(user).Set(value.InexactFloat64())
	PortfolioPeak.WithLabelValues(user).Set(peak.InexactFloat64())
}

// RecordAnalysisError records a failed analysis.
func (r *Recorder) RecordAnalysisError() {
	AnalysesTotal.WithLabelValues("error").Inc()
}

// RecordAlert records a generated alert.
func (r *Recorder) RecordAlert(level types.AlertLevel) {
	AlertsTotal.WithLabelValues(level.String()).Inc()
}

// RecordAlertSuppressed records an alert dropped by rate limiting.
func (r *Recorder) RecordAlertSuppressed() {
	AlertsSuppressed.Inc()
}

// Timer is a helper for measuring analysis latency.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed duration.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// ObserveAnalysis observes the elapsed time as analysis duration.
func (t *Timer) ObserveAnalysis() {
	AnalysisDuration.Observe(t.Elapsed().Seconds())
}
