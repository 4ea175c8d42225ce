package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/tathienbao/folio-sentinel/internal/types"
)

// BuildUnderwaterCurve zips the series with its high-water marks into
// one underwater point per input date. DrawdownAmount is always >= 0;
// DrawdownPercent is signed (<= 0) and guarded to 0 when the peak is
// not positive.
func BuildUnderwaterCurve(series types.ValuationSeries, marks []types.HighWaterMark) []types.UnderwaterPoint {
	curve := make([]types.UnderwaterPoint, 0, len(series))

	for i, p := range series {
		mark := marks[i]
		amount := mark.PeakValue.Sub(p.Value)

		percent := decimal.Zero
		if mark.PeakValue.IsPositive() && amount.IsPositive() {
			percent = amount.Div(mark.PeakValue).Neg()
		}

		curve = append(curve, types.UnderwaterPoint{
			Date:            p.Date,
			PortfolioValue:  p.Value,
			PeakValue:       mark.PeakValue,
			DrawdownAmount:  amount,
			DrawdownPercent: percent,
		})
	}

	return curve
}
