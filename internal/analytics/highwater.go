// Package analytics implements the drawdown and performance analytics
// engine: high-water mark tracking, drawdown event segmentation, the
// underwater curve, and aggregate performance statistics. Everything in
// this package is a pure function of its inputs.
package analytics

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tathienbao/folio-sentinel/internal/types"
)

// TrackHighWaterMarks produces one running-peak record per input point:
// the maximum value observed at or before that date and the earliest
// date achieving it. Single forward pass; an empty series yields an
// empty result.
func TrackHighWaterMarks(series types.ValuationSeries) []types.HighWaterMark {
	marks := make([]types.HighWaterMark, 0, len(series))

	var peak decimal.Decimal
	var peakDate time.Time

	for i, p := range series {
		if i == 0 || p.Value.GreaterThan(peak) {
			peak = p.Value
			peakDate = p.Date
		}
		marks = append(marks, types.HighWaterMark{
			Date:      p.Date,
			PeakValue: peak,
			PeakDate:  peakDate,
		})
	}

	return marks
}

// LiveTracker tracks the running peak of a stream of valuations as
// they arrive, without re-reading history. Safe for concurrent use.
type LiveTracker struct {
	mu       sync.RWMutex
	peak     decimal.Decimal
	peakDate time.Time
	current  decimal.Decimal
}

// NewLiveTracker creates a tracker seeded with an initial valuation.
func NewLiveTracker(initial decimal.Decimal, date time.Time) *LiveTracker {
	return &LiveTracker{
		peak:     initial,
		peakDate: date,
		current:  initial,
	}
}

// Update records a new valuation and adjusts the peak if necessary.
// Returns true if a new peak was set.
func (t *LiveTracker) Update(value decimal.Decimal, date time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = value

	if value.GreaterThan(t.peak) {
		t.peak = value
		t.peakDate = date
		return true
	}

	return false
}

// Current returns the latest valuation.
func (t *LiveTracker) Current() decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Peak returns the high-water mark and the date it was set.
func (t *LiveTracker) Peak() (decimal.Decimal, time.Time) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.peak, t.peakDate
}

// Drawdown returns the current drawdown as an unsigned ratio:
// (peak - current) / peak, zero at or above the peak.
func (t *LiveTracker) Drawdown() decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.peak.IsZero() || t.current.GreaterThanOrEqual(t.peak) {
		return decimal.Zero
	}

	return t.peak.Sub(t.current).Div(t.peak)
}
