// Package stat provides basic descriptive statistics over decimal values.
package stat

import (
	"math"

	"github.com/shopspring/decimal"
)

// Mean returns the arithmetic mean of values, or zero for an empty slice.
func Mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}

	return sum.Div(decimal.NewFromInt(int64(len(values))))
}

// SampleStdDev returns the sample standard deviation (n-1 denominator).
// Returns zero when fewer than 2 values are supplied; callers that need
// to distinguish that case must check the length themselves.
func SampleStdDev(values []decimal.Decimal) decimal.Decimal {
	if len(values) < 2 {
		return decimal.Zero
	}

	m := Mean(values)
	sumSquares := decimal.Zero

	for _, v := range values {
		diff := v.Sub(m)
		sumSquares = sumSquares.Add(diff.Mul(diff))
	}

	variance := sumSquares.Div(decimal.NewFromInt(int64(len(values) - 1)))

	// sqrt via float conversion; decimal has no native square root
	varianceFloat := variance.InexactFloat64()
	if varianceFloat < 0 {
		return decimal.Zero
	}

	return decimal.NewFromFloat(math.Sqrt(varianceFloat))
}

// DownsideDeviation returns the sample standard deviation of the values
// below target. Returns zero when fewer than 2 such values exist.
func DownsideDeviation(values []decimal.Decimal, target decimal.Decimal) decimal.Decimal {
	below := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		if v.LessThan(target) {
			below = append(below, v)
		}
	}

	return SampleStdDev(below)
}
