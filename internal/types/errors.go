package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors for the analytics engine.
var (
	// Series validation errors
	ErrEmptySeries     = errors.New("valuation series is empty")
	ErrUnsortedSeries  = errors.New("valuation series is not sorted by date")
	ErrDuplicateDate   = errors.New("duplicate date in valuation series")
	ErrNegativeValue   = errors.New("negative portfolio value")
	ErrNonPositivePeak = errors.New("non-positive high-water mark")

	// Configuration errors
	ErrInvalidThresholds = errors.New("invalid alert threshold configuration")
	ErrInvalidConfig     = errors.New("invalid configuration")

	// Provider errors
	ErrSeriesNotFound = errors.New("no valuation series for user")
)

// InvalidSeriesError reports a data-quality problem in the input series,
// including the offending date and value for upstream diagnosis.
type InvalidSeriesError struct {
	Reason error
	Date   time.Time
	Value  decimal.Decimal
}

func (e *InvalidSeriesError) Error() string {
	return fmt.Sprintf("invalid series: %v (date=%s value=%s)",
		e.Reason, e.Date.Format("2006-01-02"), e.Value)
}

func (e *InvalidSeriesError) Unwrap() error {
	return e.Reason
}

// InvalidThresholdConfigError reports misordered or out-of-range alert
// threshold tiers.
type InvalidThresholdConfigError struct {
	Detail string
}

func (e *InvalidThresholdConfigError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidThresholds, e.Detail)
}

func (e *InvalidThresholdConfigError) Unwrap() error {
	return ErrInvalidThresholds
}
