package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tathienbao/folio-sentinel/internal/types"
)

// segmenter state. The open episode exists only in stateInDrawdown, so
// at most one event can be open at any time.
type segState int

const (
	stateAtPeak segState = iota
	stateInDrawdown
)

// openEpisode is the candidate trough being tracked for the current
// peak while in stateInDrawdown.
type openEpisode struct {
	peakValue  decimal.Decimal
	peakDate   time.Time
	trough     decimal.Decimal
	troughDate time.Time
}

// SegmentDrawdowns walks the series and its high-water marks once and
// produces the ordered peak-to-trough-to-recovery episodes. The final
// event has IsRecovered false if the series ends underwater.
//
// Every decline is recorded; materiality filtering by minimum drawdown
// percent is applied later by the facade. Within one episode the
// earliest date achieving the minimum value is the trough (ties do not
// move the trough). A series with fewer than 2 points yields no events.
func SegmentDrawdowns(series types.ValuationSeries, marks []types.HighWaterMark) ([]types.DrawdownEvent, error) {
	events := make([]types.DrawdownEvent, 0)

	state := stateAtPeak
	var open openEpisode

	for i, p := range series {
		mark := marks[i]

		switch state {
		case stateAtPeak:
			if p.Value.LessThan(mark.PeakValue) {
				if !mark.PeakValue.IsPositive() {
					return nil, &types.InvalidSeriesError{
						Reason: types.ErrNonPositivePeak,
						Date:   mark.PeakDate,
						Value:  mark.PeakValue,
					}
				}
				open = openEpisode{
					peakValue:  mark.PeakValue,
					peakDate:   mark.PeakDate,
					trough:     p.Value,
					troughDate: p.Date,
				}
				state = stateInDrawdown
			}

		case stateInDrawdown:
			if p.Value.GreaterThanOrEqual(open.peakValue) {
				events = append(events, closeEpisode(open, p.Value, p.Date))
				state = stateAtPeak
			} else if p.Value.LessThan(open.trough) {
				open.trough = p.Value
				open.troughDate = p.Date
			}
		}
	}

	if state == stateInDrawdown {
		events = append(events, openEvent(open))
	}

	return events, nil
}

// closeEpisode builds a recovered event from an episode and the point
// that brought the value back to or above the peak.
func closeEpisode(ep openEpisode, recoveryValue decimal.Decimal, recoveryDate time.Time) types.DrawdownEvent {
	amount := ep.peakValue.Sub(ep.trough)
	recoveryDays := types.DaysBetween(ep.troughDate, recoveryDate)
	rv := recoveryValue
	rd := recoveryDate

	return types.DrawdownEvent{
		ID:                 eventID(ep),
		PeakValue:          ep.peakValue,
		PeakDate:           ep.peakDate,
		TroughValue:        ep.trough,
		TroughDate:         ep.troughDate,
		RecoveryValue:      &rv,
		RecoveryDate:       &rd,
		MaxDrawdownAmount:  amount,
		MaxDrawdownPercent: amount.Div(ep.peakValue).Neg(),
		DurationDays:       types.DaysBetween(ep.peakDate, ep.troughDate),
		RecoveryDays:       &recoveryDays,
		IsRecovered:        true,
	}
}

// openEvent builds the still-open event for a series ending underwater.
func openEvent(ep openEpisode) types.DrawdownEvent {
	amount := ep.peakValue.Sub(ep.trough)

	return types.DrawdownEvent{
		ID:                 eventID(ep),
		PeakValue:          ep.peakValue,
		PeakDate:           ep.peakDate,
		TroughValue:        ep.trough,
		TroughDate:         ep.troughDate,
		MaxDrawdownAmount:  amount,
		MaxDrawdownPercent: amount.Div(ep.peakValue).Neg(),
		DurationDays:       types.DaysBetween(ep.peakDate, ep.troughDate),
		IsRecovered:        false,
	}
}

// eventID derives a stable identifier from the episode's peak and
// trough dates, keeping the whole analysis a pure function of its
// input.
func eventID(ep openEpisode) string {
	return fmt.Sprintf("dd-%s-%s",
		ep.peakDate.Format("20060102"), ep.troughDate.Format("20060102"))
}
