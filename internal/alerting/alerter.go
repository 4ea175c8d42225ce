// Package alerting evaluates drawdown alert thresholds and provides
// notification channels for breached tiers. Evaluation is pure;
// dispatch is a separate concern behind the Alerter interface.
package alerting

import (
	"context"
	"fmt"

	"github.com/tathienbao/folio-sentinel/internal/types"
)

// Alerter defines the interface for dispatching drawdown alerts.
type Alerter interface {
	// Dispatch sends one alert through the channel.
	Dispatch(ctx context.Context, alert types.Alert) error
	// Name returns the name of the alerter.
	Name() string
}

// levelEmoji returns an emoji for the alert level, used by the
// human-facing channels.
func levelEmoji(level types.AlertLevel) string {
	switch level {
	case types.AlertLevelWarning:
		return "⚠️"
	case types.AlertLevelCritical:
		return "🔴"
	case types.AlertLevelEmergency:
		return "🚨"
	default:
		return "❓"
	}
}

// formatAlertLine renders a single-line summary of an alert.
func formatAlertLine(alert types.Alert) string {
	return fmt.Sprintf("%s [%s] %s", levelEmoji(alert.Level), alert.Level, alert.Message)
}
