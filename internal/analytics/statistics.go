package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/tathienbao/folio-sentinel/internal/types"
	"github.com/tathienbao/folio-sentinel/pkg/stat"
)

// TradingDaysPerYear is the annualization base for volatility and
// Sharpe computations.
const TradingDaysPerYear = 252

// StatisticsCalculator computes aggregate return and risk metrics from
// a valuation series, its underwater curve, and its drawdown events.
// All percentages are signed decimals computed in full precision;
// rounding for display is a caller concern.
type StatisticsCalculator struct {
	series       types.ValuationSeries
	curve        []types.UnderwaterPoint
	events       []types.DrawdownEvent
	riskFreeRate decimal.Decimal // annual, e.g. 0.05 for 5%
}

// NewStatisticsCalculator creates a calculator over precomputed curve
// and events so the cross-component invariants (max drawdown from the
// curve, event aggregates from the segmenter) hold by construction.
func NewStatisticsCalculator(
	series types.ValuationSeries,
	curve []types.UnderwaterPoint,
	events []types.DrawdownEvent,
	riskFreeRate decimal.Decimal,
) *StatisticsCalculator {
	return &StatisticsCalculator{
		series:       series,
		curve:        curve,
		events:       events,
		riskFreeRate: riskFreeRate,
	}
}

// Compute assembles the full statistics record. Statistics that cannot
// be computed from the available data are nil, never zero.
func (c *StatisticsCalculator) Compute() types.PerformanceStatistics {
	maxDDPercent, maxDDAmount := c.maxDrawdown()

	return types.PerformanceStatistics{
		TotalEvents:            len(c.events),
		MaxDrawdownPercent:     maxDDPercent,
		MaxDrawdownAmount:      maxDDAmount,
		AverageDrawdownPercent: c.averageDrawdownPercent(),
		AverageRecoveryDays:    c.averageRecoveryDays(),
		LongestDrawdownDays:    c.longestDrawdownDays(),
		CurrentDrawdownPercent: c.currentDrawdownPercent(),
		VolatilityAnnualized:   c.AnnualizedVolatility(),
		SharpeRatio:            c.SharpeRatio(),
		SortinoRatio:           c.SortinoRatio(),
		TimeWeightedReturn:     c.TimeWeightedReturn(),
	}
}

// PeriodicReturns computes value[i]/value[i-1] - 1 for each adjacent
// pair. Periods with a zero starting value are skipped, not zeroed.
func (c *StatisticsCalculator) PeriodicReturns() []decimal.Decimal {
	if len(c.series) < 2 {
		return nil
	}

	returns := make([]decimal.Decimal, 0, len(c.series)-1)
	for i := 1; i < len(c.series); i++ {
		prev := c.series[i-1].Value
		if prev.IsZero() {
			continue
		}
		returns = append(returns, c.series[i].Value.Div(prev).Sub(decimal.NewFromInt(1)))
	}

	return returns
}

// TimeWeightedReturn geometrically compounds the periodic returns.
// Correct in the presence of cash flows only when the caller supplies a
// flow-adjusted series. Nil when the series has fewer than 2 points.
func (c *StatisticsCalculator) TimeWeightedReturn() *decimal.Decimal {
	if len(c.series) < 2 {
		return nil
	}

	one := decimal.NewFromInt(1)
	compounded := one
	for _, r := range c.PeriodicReturns() {
		compounded = compounded.Mul(one.Add(r))
	}

	twr := compounded.Sub(one)
	return &twr
}

// AnnualizedVolatility returns the sample standard deviation of the
// periodic returns scaled by sqrt(252). Nil when fewer than 2 return
// observations exist; a zero-variance series yields a computable zero.
func (c *StatisticsCalculator) AnnualizedVolatility() *decimal.Decimal {
	returns := c.PeriodicReturns()
	if len(returns) < 2 {
		return nil
	}

	vol := stat.SampleStdDev(returns).
		Mul(decimal.NewFromFloat(math.Sqrt(TradingDaysPerYear)))
	return &vol
}

// SharpeRatio returns (annualized mean return - risk-free rate) divided
// by annualized volatility. Nil when volatility is nil or zero.
func (c *StatisticsCalculator) SharpeRatio() *decimal.Decimal {
	vol := c.AnnualizedVolatility()
	if vol == nil || vol.IsZero() {
		return nil
	}

	annualizedMean := stat.Mean(c.PeriodicReturns()).
		Mul(decimal.NewFromInt(TradingDaysPerYear))
	sharpe := annualizedMean.Sub(c.riskFreeRate).Div(*vol)
	return &sharpe
}

// SortinoRatio is SharpeRatio with downside deviation in the
// denominator. Nil when there are too few negative returns to measure.
func (c *StatisticsCalculator) SortinoRatio() *decimal.Decimal {
	returns := c.PeriodicReturns()
	if len(returns) < 2 {
		return nil
	}

	downside := stat.DownsideDeviation(returns, decimal.Zero).
		Mul(decimal.NewFromFloat(math.Sqrt(TradingDaysPerYear)))
	if downside.IsZero() {
		return nil
	}

	annualizedMean := stat.Mean(returns).Mul(decimal.NewFromInt(TradingDaysPerYear))
	sortino := annualizedMean.Sub(c.riskFreeRate).Div(downside)
	return &sortino
}

// maxDrawdown returns the most negative drawdown percent across the
// underwater curve and its corresponding amount.
func (c *StatisticsCalculator) maxDrawdown() (percent, amount decimal.Decimal) {
	for _, p := range c.curve {
		if p.DrawdownPercent.LessThan(percent) {
			percent = p.DrawdownPercent
			amount = p.DrawdownAmount
		}
	}
	return percent, amount
}

func (c *StatisticsCalculator) currentDrawdownPercent() decimal.Decimal {
	if len(c.curve) == 0 {
		return decimal.Zero
	}
	return c.curve[len(c.curve)-1].DrawdownPercent
}

// closedEvents filters to recovered episodes; the aggregates below are
// defined over those only.
func (c *StatisticsCalculator) closedEvents() []types.DrawdownEvent {
	closed := make([]types.DrawdownEvent, 0, len(c.events))
	for _, ev := range c.events {
		if ev.IsRecovered {
			closed = append(closed, ev)
		}
	}
	return closed
}

func (c *StatisticsCalculator) averageDrawdownPercent() decimal.Decimal {
	closed := c.closedEvents()
	if len(closed) == 0 {
		return decimal.Zero
	}

	percents := make([]decimal.Decimal, len(closed))
	for i, ev := range closed {
		percents[i] = ev.MaxDrawdownPercent
	}
	return stat.Mean(percents)
}

func (c *StatisticsCalculator) averageRecoveryDays() decimal.Decimal {
	closed := c.closedEvents()
	if len(closed) == 0 {
		return decimal.Zero
	}

	days := make([]decimal.Decimal, 0, len(closed))
	for _, ev := range closed {
		if ev.RecoveryDays != nil {
			days = append(days, decimal.NewFromInt(int64(*ev.RecoveryDays)))
		}
	}
	return stat.Mean(days)
}

func (c *StatisticsCalculator) longestDrawdownDays() int {
	longest := 0
	for _, ev := range c.closedEvents() {
		if ev.DurationDays > longest {
			longest = ev.DurationDays
		}
	}
	return longest
}
