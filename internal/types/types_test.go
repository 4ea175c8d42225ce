package types

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func point(n int, value string) ValuationPoint {
	return ValuationPoint{Date: day(n), Value: decimal.RequireFromString(value)}
}

func TestValuationSeries_Validate(t *testing.T) {
	tests := []struct {
		name    string
		series  ValuationSeries
		wantErr error
	}{
		{
			name:   "empty is valid",
			series: ValuationSeries{},
		},
		{
			name:   "single point",
			series: ValuationSeries{point(0, "100")},
		},
		{
			name:   "sorted series",
			series: ValuationSeries{point(0, "100"), point(1, "110"), point(2, "90")},
		},
		{
			name:    "duplicate date",
			series:  ValuationSeries{point(0, "100"), point(0, "110")},
			wantErr: ErrDuplicateDate,
		},
		{
			name:    "unsorted",
			series:  ValuationSeries{point(1, "100"), point(0, "110")},
			wantErr: ErrUnsortedSeries,
		},
		{
			name:    "negative value",
			series:  ValuationSeries{point(0, "100"), point(1, "-5")},
			wantErr: ErrNegativeValue,
		},
		{
			name:   "zero value is allowed",
			series: ValuationSeries{point(0, "0"), point(1, "100")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}

			var invalid *InvalidSeriesError
			if !errors.As(err, &invalid) {
				t.Fatalf("Validate() error is not *InvalidSeriesError: %v", err)
			}
		})
	}
}

func TestValuationSeries_Window(t *testing.T) {
	series := ValuationSeries{point(0, "100"), point(1, "110"), point(2, "90"), point(3, "95")}

	got := series.Window(day(1), day(2))
	if len(got) != 2 {
		t.Fatalf("Window returned %d points, want 2", len(got))
	}
	if !got[0].Date.Equal(day(1)) || !got[1].Date.Equal(day(2)) {
		t.Errorf("Window dates = %v..%v, want %v..%v", got[0].Date, got[1].Date, day(1), day(2))
	}

	if got := series.Window(time.Time{}, time.Time{}); len(got) != 4 {
		t.Errorf("unbounded Window returned %d points, want 4", len(got))
	}
}

func TestAlertThresholdConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		warning   string
		critical  string
		emergency string
		wantErr   bool
	}{
		{"valid", "15", "20", "25", false},
		{"non-increasing", "20", "15", "25", true},
		{"equal tiers", "15", "15", "25", true},
		{"zero warning", "0", "15", "25", true},
		{"negative warning", "-5", "15", "25", true},
		{"emergency above 100", "15", "20", "101", true},
		{"emergency exactly 100", "15", "20", "100", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AlertThresholdConfig{
				WarningPct:   decimal.RequireFromString(tt.warning),
				CriticalPct:  decimal.RequireFromString(tt.critical),
				EmergencyPct: decimal.RequireFromString(tt.emergency),
			}

			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidThresholds) {
					t.Fatalf("Validate() = %v, want ErrInvalidThresholds", err)
				}
			} else if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestAlertLevel_String(t *testing.T) {
	tests := []struct {
		level AlertLevel
		want  string
	}{
		{AlertLevelWarning, "warning"},
		{AlertLevelCritical, "critical"},
		{AlertLevelEmergency, "emergency"},
		{AlertLevel(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(day(1), day(4)); got != 3 {
		t.Errorf("DaysBetween = %d, want 3", got)
	}
	if got := DaysBetween(day(2), day(2)); got != 0 {
		t.Errorf("DaysBetween(same) = %d, want 0", got)
	}
}
