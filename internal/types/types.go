// Package types defines shared types used across the analytics engine.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationPoint is a single daily portfolio valuation observation.
type ValuationPoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// ValuationSeries is a chronologically ordered sequence of valuations.
// Dates must be strictly increasing and values non-negative; Validate
// enforces both before the series enters any computation.
type ValuationSeries []ValuationPoint

// Validate checks the series invariants: strictly increasing dates,
// no duplicate dates, no negative values.
func (s ValuationSeries) Validate() error {
	for i, p := range s {
		if p.Value.IsNegative() {
			return &InvalidSeriesError{
				Reason: ErrNegativeValue,
				Date:   p.Date,
				Value:  p.Value,
			}
		}
		if i == 0 {
			continue
		}
		prev := s[i-1]
		if p.Date.Equal(prev.Date) {
			return &InvalidSeriesError{
				Reason: ErrDuplicateDate,
				Date:   p.Date,
				Value:  p.Value,
			}
		}
		if p.Date.Before(prev.Date) {
			return &InvalidSeriesError{
				Reason: ErrUnsortedSeries,
				Date:   p.Date,
				Value:  p.Value,
			}
		}
	}
	return nil
}

// Window returns the sub-series with dates in [from, to].
// A zero from or to leaves that side unbounded.
func (s ValuationSeries) Window(from, to time.Time) ValuationSeries {
	out := make(ValuationSeries, 0, len(s))
	for _, p := range s {
		if !from.IsZero() && p.Date.Before(from) {
			continue
		}
		if !to.IsZero() && p.Date.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Last returns the most recent point. The second return is false for an
// empty series.
func (s ValuationSeries) Last() (ValuationPoint, bool) {
	if len(s) == 0 {
		return ValuationPoint{}, false
	}
	return s[len(s)-1], true
}

// HighWaterMark records the running peak as of a given observation date.
type HighWaterMark struct {
	Date      time.Time       `json:"date"`
	PeakValue decimal.Decimal `json:"peak_value"`
	PeakDate  time.Time       `json:"peak_date"`
}

// DrawdownEvent is one peak-to-trough-to-recovery episode.
// Recovery fields are nil while the event is open.
type DrawdownEvent struct {
	ID                 string           `json:"id"`
	PeakValue          decimal.Decimal  `json:"peak_value"`
	PeakDate           time.Time        `json:"peak_date"`
	TroughValue        decimal.Decimal  `json:"trough_value"`
	TroughDate         time.Time        `json:"trough_date"`
	RecoveryValue      *decimal.Decimal `json:"recovery_value,omitempty"`
	RecoveryDate       *time.Time       `json:"recovery_date,omitempty"`
	MaxDrawdownAmount  decimal.Decimal  `json:"max_drawdown_amount"`
	MaxDrawdownPercent decimal.Decimal  `json:"max_drawdown_percent"` // signed, <= 0
	DurationDays       int              `json:"duration_days"`
	RecoveryDays       *int             `json:"recovery_days,omitempty"`
	IsRecovered        bool             `json:"is_recovered"`
}

// UnderwaterPoint is one point of the underwater curve.
// DrawdownPercent is signed: 0 at or above the peak, negative below it.
type UnderwaterPoint struct {
	Date            time.Time       `json:"date"`
	PortfolioValue  decimal.Decimal `json:"portfolio_value"`
	PeakValue       decimal.Decimal `json:"peak_value"`
	DrawdownAmount  decimal.Decimal `json:"drawdown_amount"`
	DrawdownPercent decimal.Decimal `json:"drawdown_percent"`
}

// PerformanceStatistics aggregates return and risk metrics over a series.
// Pointer fields distinguish "not computable from the available data"
// (nil) from a genuine zero.
type PerformanceStatistics struct {
	TotalEvents            int              `json:"total_events"`
	MaxDrawdownPercent     decimal.Decimal  `json:"max_drawdown_percent"`
	MaxDrawdownAmount      decimal.Decimal  `json:"max_drawdown_amount"`
	AverageDrawdownPercent decimal.Decimal  `json:"average_drawdown_percent"`
	AverageRecoveryDays    decimal.Decimal  `json:"average_recovery_days"`
	LongestDrawdownDays    int              `json:"longest_drawdown_days"`
	CurrentDrawdownPercent decimal.Decimal  `json:"current_drawdown_percent"`
	VolatilityAnnualized   *decimal.Decimal `json:"volatility_annualized,omitempty"`
	SharpeRatio            *decimal.Decimal `json:"sharpe_ratio,omitempty"`
	SortinoRatio           *decimal.Decimal `json:"sortino_ratio,omitempty"`
	TimeWeightedReturn     *decimal.Decimal `json:"time_weighted_return,omitempty"`
}

// CurrentDrawdownSummary describes the state of the open drawdown, if any.
type CurrentDrawdownSummary struct {
	CurrentDrawdownPercent decimal.Decimal `json:"current_drawdown_percent"`
	CurrentDrawdownAmount  decimal.Decimal `json:"current_drawdown_amount"`
	PeakValue              decimal.Decimal `json:"peak_value"`
	PeakDate               time.Time       `json:"peak_date"`
	DaysInDrawdown         int             `json:"days_in_drawdown"`
}

// AlertLevel is the severity tier of a drawdown alert.
type AlertLevel int

const (
	AlertLevelWarning AlertLevel = iota
	AlertLevelCritical
	AlertLevelEmergency
)

func (l AlertLevel) String() string {
	switch l {
	case AlertLevelWarning:
		return "warning"
	case AlertLevelCritical:
		return "critical"
	case AlertLevelEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so levels serialize as
// their lowercase names in JSON.
func (l AlertLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ThresholdTier pairs an alert level with its configured threshold.
type ThresholdTier struct {
	Level     AlertLevel
	Threshold decimal.Decimal
}

// AlertThresholdConfig holds the per-user drawdown alert tiers, in
// percentage points (e.g. 15 means 15%).
type AlertThresholdConfig struct {
	WarningPct   decimal.Decimal `json:"warning_pct"`
	CriticalPct  decimal.Decimal `json:"critical_pct"`
	EmergencyPct decimal.Decimal `json:"emergency_pct"`
}

// Validate checks 0 < warning < critical < emergency <= 100.
// A misconfigured ordering is surfaced, never silently corrected.
func (c AlertThresholdConfig) Validate() error {
	switch {
	case !c.WarningPct.IsPositive():
		return &InvalidThresholdConfigError{Detail: "warning threshold must be positive"}
	case c.CriticalPct.LessThanOrEqual(c.WarningPct):
		return &InvalidThresholdConfigError{Detail: "critical threshold must exceed warning"}
	case c.EmergencyPct.LessThanOrEqual(c.CriticalPct):
		return &InvalidThresholdConfigError{Detail: "emergency threshold must exceed critical"}
	case c.EmergencyPct.GreaterThan(decimal.NewFromInt(100)):
		return &InvalidThresholdConfigError{Detail: "emergency threshold must not exceed 100"}
	}
	return nil
}

// Tiers returns the configured tiers ordered from lowest to highest
// severity.
func (c AlertThresholdConfig) Tiers() []ThresholdTier {
	return []ThresholdTier{
		{AlertLevelWarning, c.WarningPct},
		{AlertLevelCritical, c.CriticalPct},
		{AlertLevelEmergency, c.EmergencyPct},
	}
}

// Alert is one breached threshold tier, generated fresh per evaluation.
type Alert struct {
	ID                     string          `json:"id"`
	Level                  AlertLevel      `json:"level"`
	Threshold              decimal.Decimal `json:"threshold"`
	CurrentDrawdownPercent decimal.Decimal `json:"current_drawdown_percent"` // unsigned magnitude
	Message                string          `json:"message"`
	TriggeredAt            time.Time       `json:"triggered_at"`
}

// DaysBetween returns the whole days from a to b (plain date
// subtraction, exclusive of the start day).
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
