package alerting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tathienbao/folio-sentinel/internal/types"
)

// Evaluate compares the current drawdown (an unsigned magnitude in
// percentage points, e.g. 16.2 meaning 16.2%) against the configured
// tiers and returns one alert per breached tier, ordered from lowest to
// highest severity. A tier is breached when the drawdown reaches the
// threshold exactly. No side effects: dispatch belongs to an Alerter.
func Evaluate(currentDrawdownPct decimal.Decimal, cfg types.AlertThresholdConfig, now time.Time) ([]types.Alert, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	alerts := make([]types.Alert, 0, 3)
	for _, tier := range cfg.Tiers() {
		if currentDrawdownPct.LessThan(tier.Threshold) {
			break
		}
		alerts = append(alerts, types.Alert{
			ID:                     alertID(tier.Level, now),
			Level:                  tier.Level,
			Threshold:              tier.Threshold,
			CurrentDrawdownPercent: currentDrawdownPct,
			Message:                alertMessage(tier.Level, tier.Threshold, currentDrawdownPct),
			TriggeredAt:            now,
		})
	}

	return alerts, nil
}

// alertID derives a stable identifier from the breached tier and the
// evaluation clock, so repeated evaluation of the same inputs is
// bit-identical. Delivery-unique IDs belong to the dispatch layer.
func alertID(level types.AlertLevel, now time.Time) string {
	return fmt.Sprintf("al-%s-%s", now.UTC().Format("20060102T150405Z"), level)
}

// alertMessage renders the templated alert text. Values are rounded for
// display only.
func alertMessage(level types.AlertLevel, threshold, current decimal.Decimal) string {
	return fmt.Sprintf("portfolio drawdown %s%% breached the %s threshold of %s%%",
		current.StringFixed(2), level, threshold.StringFixed(2))
}
