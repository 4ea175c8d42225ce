package analytics

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tathienbao/folio-sentinel/internal/alerting"
	"github.com/tathienbao/folio-sentinel/internal/types"
)

// Options controls a single analytics request.
type Options struct {
	// From/To restrict the analysis window; zero values leave the
	// corresponding side unbounded.
	From time.Time
	To   time.Time

	// MinDrawdownPercent filters the returned event list by magnitude
	// in percentage points (e.g. 1 drops events shallower than 1%).
	// Zero keeps every event. Statistics are always computed over the
	// unfiltered events.
	MinDrawdownPercent decimal.Decimal

	// RiskFreeRate is the annual risk-free rate for the Sharpe ratio.
	RiskFreeRate decimal.Decimal

	// Thresholds enables alert evaluation when non-nil.
	Thresholds *types.AlertThresholdConfig

	// Now is the clock used for alert timestamps. Zero means time.Now().
	Now time.Time
}

// Result is the combined analytics output for one request.
type Result struct {
	Current         *types.CurrentDrawdownSummary `json:"current_drawdown,omitempty"`
	Events          []types.DrawdownEvent         `json:"events"`
	UnderwaterCurve []types.UnderwaterPoint       `json:"underwater_curve"`
	Statistics      types.PerformanceStatistics   `json:"statistics"`
	Alerts          []types.Alert                 `json:"alerts,omitempty"`
	Thresholds      *types.AlertThresholdConfig   `json:"thresholds,omitempty"`
}

// Analyzer orchestrates the full drawdown analysis pipeline. It holds
// no state across requests and is safe for concurrent use.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// Analyze validates the series and runs high-water mark tracking,
// drawdown segmentation, the underwater curve, performance statistics,
// and (when thresholds are configured) alert evaluation. The first
// invariant violation aborts the whole request; partial results are
// never returned.
//
// An empty series (or one emptied by the window) is not an error: it
// yields empty events and curve and undefined statistics.
func (a *Analyzer) Analyze(series types.ValuationSeries, opts Options) (*Result, error) {
	if opts.Thresholds != nil {
		if err := opts.Thresholds.Validate(); err != nil {
			return nil, err
		}
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}

	windowed := series.Window(opts.From, opts.To)

	marks := TrackHighWaterMarks(windowed)
	events, err := SegmentDrawdowns(windowed, marks)
	if err != nil {
		return nil, err
	}
	curve := BuildUnderwaterCurve(windowed, marks)

	statistics := NewStatisticsCalculator(windowed, curve, events, opts.RiskFreeRate).Compute()

	result := &Result{
		Current:         currentSummary(windowed, marks, curve),
		Events:          filterEvents(events, opts.MinDrawdownPercent),
		UnderwaterCurve: curve,
		Statistics:      statistics,
		Thresholds:      opts.Thresholds,
	}

	if opts.Thresholds != nil {
		now := opts.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}

		magnitude := statistics.CurrentDrawdownPercent.Neg().Mul(decimal.NewFromInt(100))
		alerts, err := alerting.Evaluate(magnitude, *opts.Thresholds, now)
		if err != nil {
			return nil, err
		}
		result.Alerts = alerts
	}

	a.logger.Debug("analysis complete",
		"points", len(windowed),
		"events", len(events),
		"current_drawdown", statistics.CurrentDrawdownPercent,
		"alerts", len(result.Alerts),
	)

	return result, nil
}

// currentSummary describes the latest point relative to its running
// peak. Nil for an empty window.
func currentSummary(series types.ValuationSeries, marks []types.HighWaterMark, curve []types.UnderwaterPoint) *types.CurrentDrawdownSummary {
	last, ok := series.Last()
	if !ok {
		return nil
	}

	mark := marks[len(marks)-1]
	point := curve[len(curve)-1]

	days := 0
	if point.DrawdownPercent.IsNegative() {
		days = types.DaysBetween(mark.PeakDate, last.Date)
	}

	return &types.CurrentDrawdownSummary{
		CurrentDrawdownPercent: point.DrawdownPercent,
		CurrentDrawdownAmount:  point.DrawdownAmount,
		PeakValue:              mark.PeakValue,
		PeakDate:               mark.PeakDate,
		DaysInDrawdown:         days,
	}
}

// filterEvents drops events shallower than minPercent (a magnitude in
// percentage points). Materiality filtering is a presentation concern,
// which is why it happens here and not in the segmenter.
func filterEvents(events []types.DrawdownEvent, minPercent decimal.Decimal) []types.DrawdownEvent {
	if !minPercent.IsPositive() {
		return events
	}

	out := make([]types.DrawdownEvent, 0, len(events))
	for _, ev := range events {
		magnitude := ev.MaxDrawdownPercent.Neg().Mul(decimal.NewFromInt(100))
		if magnitude.GreaterThanOrEqual(minPercent) {
			out = append(out, ev)
		}
	}
	return out
}
