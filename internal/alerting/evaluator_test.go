package alerting

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tathienbao/folio-sentinel/internal/types"
)

func thresholds(warning, critical, emergency string) types.AlertThresholdConfig {
	return types.AlertThresholdConfig{
		WarningPct:   decimal.RequireFromString(warning),
		CriticalPct:  decimal.RequireFromString(critical),
		EmergencyPct: decimal.RequireFromString(emergency),
	}
}

func TestEvaluate(t *testing.T) {
	cfg := thresholds("10", "20", "30")
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		drawdown   string
		wantLevels []types.AlertLevel
	}{
		{
			name:       "below all thresholds",
			drawdown:   "5",
			wantLevels: nil,
		},
		{
			name:       "warning only",
			drawdown:   "16.5",
			wantLevels: []types.AlertLevel{types.AlertLevelWarning},
		},
		{
			name:       "warning and critical",
			drawdown:   "22",
			wantLevels: []types.AlertLevel{types.AlertLevelWarning, types.AlertLevelCritical},
		},
		{
			name:     "all three",
			drawdown: "35",
			wantLevels: []types.AlertLevel{
				types.AlertLevelWarning,
				types.AlertLevelCritical,
				types.AlertLevelEmergency,
			},
		},
		{
			name:       "exact threshold breaches",
			drawdown:   "20",
			wantLevels: []types.AlertLevel{types.AlertLevelWarning, types.AlertLevelCritical},
		},
		{
			name:       "zero drawdown",
			drawdown:   "0",
			wantLevels: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts, err := Evaluate(decimal.RequireFromString(tt.drawdown), cfg, now)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if len(alerts) != len(tt.wantLevels) {
				t.Fatalf("got %d alerts, want %d", len(alerts), len(tt.wantLevels))
			}
			for i, want := range tt.wantLevels {
				if alerts[i].Level != want {
					t.Errorf("alerts[%d].Level = %s, want %s", i, alerts[i].Level, want)
				}
				if !alerts[i].TriggeredAt.Equal(now) {
					t.Errorf("alerts[%d].TriggeredAt = %s, want %s", i, alerts[i].TriggeredAt, now)
				}
				if alerts[i].ID == "" {
					t.Errorf("alerts[%d].ID is empty", i)
				}
			}
		})
	}
}

func TestEvaluate_Message(t *testing.T) {
	cfg := thresholds("10", "20", "30")
	alerts, err := Evaluate(decimal.RequireFromString("16.5"), cfg, time.Now())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}

	msg := alerts[0].Message
	for _, want := range []string{"16.50%", "warning", "10.00%"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
	if !alerts[0].CurrentDrawdownPercent.Equal(decimal.RequireFromString("16.5")) {
		t.Errorf("CurrentDrawdownPercent = %s, want 16.5", alerts[0].CurrentDrawdownPercent)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	cfg := thresholds("10", "20", "30")
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	drawdown := decimal.RequireFromString("22")

	first, err := Evaluate(drawdown, cfg, now)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	second, err := Evaluate(drawdown, cfg, now)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("alert counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("alerts[%d].ID differs across runs: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}

	// Different clocks produce different IDs.
	later, err := Evaluate(drawdown, cfg, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if later[0].ID == first[0].ID {
		t.Errorf("IDs should differ across trigger times, both %s", later[0].ID)
	}
}

func TestEvaluate_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.AlertThresholdConfig
	}{
		{"zero warning", thresholds("0", "20", "30")},
		{"critical below warning", thresholds("25", "20", "30")},
		{"emergency below critical", thresholds("10", "20", "15")},
		{"emergency above 100", thresholds("10", "20", "150")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(decimal.NewFromInt(50), tt.cfg, time.Now())
			if !errors.Is(err, types.ErrInvalidThresholds) {
				t.Errorf("err = %v, want ErrInvalidThresholds", err)
			}
		})
	}
}
