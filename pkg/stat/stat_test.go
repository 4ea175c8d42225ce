package stat

import (
	"testing"

	"github.com/shopspring/decimal"
)

func fromStrings(vals ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"empty", nil, "0"},
		{"single", []string{"5"}, "5"},
		{"simple", []string{"1", "2", "3"}, "2"},
		{"negative mix", []string{"-2", "2"}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mean(fromStrings(tt.values...))
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("Mean = %s, want %s", got, want)
			}
		})
	}
}

func TestSampleStdDev(t *testing.T) {
	// Known sample: {2, 4, 4, 4, 5, 5, 7, 9} has sample stddev ~2.138
	values := fromStrings("2", "4", "4", "4", "5", "5", "7", "9")

	got := SampleStdDev(values)
	want := decimal.RequireFromString("2.138")

	if got.Sub(want).Abs().GreaterThan(decimal.RequireFromString("0.001")) {
		t.Errorf("SampleStdDev = %s, want ~%s", got, want)
	}
}

func TestSampleStdDev_InsufficientData(t *testing.T) {
	if got := SampleStdDev(fromStrings("5")); !got.IsZero() {
		t.Errorf("SampleStdDev(single) = %s, want 0", got)
	}
	if got := SampleStdDev(nil); !got.IsZero() {
		t.Errorf("SampleStdDev(nil) = %s, want 0", got)
	}
}

func TestSampleStdDev_ZeroVariance(t *testing.T) {
	if got := SampleStdDev(fromStrings("3", "3", "3")); !got.IsZero() {
		t.Errorf("SampleStdDev(constant) = %s, want 0", got)
	}
}

func TestDownsideDeviation(t *testing.T) {
	values := fromStrings("0.01", "-0.02", "0.03", "-0.04", "-0.01")

	// Only {-0.02, -0.04, -0.01} are below zero.
	got := DownsideDeviation(values, decimal.Zero)
	if got.IsZero() {
		t.Fatal("DownsideDeviation = 0, want positive")
	}

	// With fewer than 2 values below target, result is zero.
	few := fromStrings("0.01", "-0.02", "0.03")
	if got := DownsideDeviation(few, decimal.Zero); !got.IsZero() {
		t.Errorf("DownsideDeviation(one below) = %s, want 0", got)
	}
}
