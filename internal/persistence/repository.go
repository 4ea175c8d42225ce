// Package persistence stores daily valuation snapshots, benchmark
// series, and per-user alert threshold configuration. It is the adapter
// behind the engine's provider ports; the analytics packages never
// import it.
package persistence

import (
	"context"
	"time"

	"github.com/tathienbao/folio-sentinel/internal/types"
)

// Repository defines the interface for analytics data persistence.
type Repository interface {
	// Valuation snapshots
	SaveValuation(ctx context.Context, userID string, point types.ValuationPoint) error
	SaveValuationSeries(ctx context.Context, userID string, series types.ValuationSeries) error
	GetValuationSeries(ctx context.Context, userID string, from, to time.Time) (types.ValuationSeries, error)
	GetLatestValuation(ctx context.Context, userID string) (*types.ValuationPoint, error)
	ListUsers(ctx context.Context) ([]string, error)

	// Benchmark series (for risk-adjusted statistics)
	SaveBenchmarkPoint(ctx context.Context, name string, point types.ValuationPoint) error
	GetBenchmarkSeries(ctx context.Context, name string, from, to time.Time) (types.ValuationSeries, error)

	// Alert threshold configuration
	SaveThresholds(ctx context.Context, userID string, cfg types.AlertThresholdConfig) error
	GetThresholds(ctx context.Context, userID string) (*types.AlertThresholdConfig, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
