package alerting

import (
	"context"
	"log/slog"

	"github.com/tathienbao/folio-sentinel/internal/types"
)

// ConsoleAlerter logs alerts using slog.
// Useful for development and as a fallback channel.
type ConsoleAlerter struct {
	logger *slog.Logger
}

// NewConsoleAlerter creates a new console alerter.
func NewConsoleAlerter(logger *slog.Logger) *ConsoleAlerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleAlerter{logger: logger}
}

// Name returns the name of the alerter.
func (c *ConsoleAlerter) Name() string {
	return "console"
}

// Dispatch logs the alert at a level matching its severity.
func (c *ConsoleAlerter) Dispatch(ctx context.Context, alert types.Alert) error {
	attrs := []any{
		"level", alert.Level.String(),
		"threshold", alert.Threshold,
		"current_drawdown_pct", alert.CurrentDrawdownPercent,
		"triggered_at", alert.TriggeredAt,
	}

	switch alert.Level {
	case types.AlertLevelEmergency:
		c.logger.Error("[ALERT] "+alert.Message, attrs...)
	case types.AlertLevelCritical:
		c.logger.Error("[ALERT] "+alert.Message, attrs...)
	default:
		c.logger.Warn("[ALERT] "+alert.Message, attrs...)
	}

	return nil
}
