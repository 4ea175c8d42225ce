// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/tathienbao/folio-sentinel/internal/types"
)

// Config represents the full application configuration.
type Config struct {
	Analytics   AnalyticsConfig   `yaml:"analytics"`
	Thresholds  ThresholdsConfig  `yaml:"thresholds"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Alerting    AlertingConfig    `yaml:"alerting"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Monitor     MonitorConfig     `yaml:"monitor"`
}

// AnalyticsConfig holds analysis settings.
type AnalyticsConfig struct {
	RiskFreeRate       float64 `yaml:"risk_free_rate"`       // annual, e.g. 0.05
	MinDrawdownPercent float64 `yaml:"min_drawdown_percent"` // event filter, pct points
	LookbackDays       int     `yaml:"lookback_days"`        // 0 = full history
}

// ThresholdsConfig holds the default alert tiers, in percentage points.
// Per-user overrides live in the threshold store.
type ThresholdsConfig struct {
	WarningPct   float64 `yaml:"warning_pct"`
	CriticalPct  float64 `yaml:"critical_pct"`
	EmergencyPct float64 `yaml:"emergency_pct"`
}

// PersistenceConfig holds snapshot store settings.
type PersistenceConfig struct {
	Path string `yaml:"path"` // sqlite database file
}

// AlertingConfig holds alerting settings.
type AlertingConfig struct {
	Enabled  bool            `yaml:"enabled"`
	Channels []ChannelConfig `yaml:"channels"`
}

// ChannelConfig holds a single alert channel configuration.
type ChannelConfig struct {
	Type     string `yaml:"type"` // console | telegram
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// MonitorConfig holds monitor loop settings.
type MonitorConfig struct {
	IntervalSec        int     `yaml:"interval_sec"`
	AlertsPerMinute    float64 `yaml:"alerts_per_minute"` // dispatch rate limit
	AlertBurst         int     `yaml:"alert_burst"`
	ShutdownTimeoutSec int     `yaml:"shutdown_timeout_sec"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes.
func LoadFromBytes(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration and applies defaults.
func (c *Config) Validate() error {
	var errs []string

	if c.Analytics.RiskFreeRate < 0 || c.Analytics.RiskFreeRate > 1 {
		errs = append(errs, "analytics.risk_free_rate must be between 0 and 1")
	}
	if c.Analytics.MinDrawdownPercent < 0 || c.Analytics.MinDrawdownPercent > 100 {
		errs = append(errs, "analytics.min_drawdown_percent must be between 0 and 100")
	}
	if c.Analytics.LookbackDays < 0 {
		errs = append(errs, "analytics.lookback_days must not be negative")
	}

	if err := c.ThresholdConfig().Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if c.Persistence.Path == "" {
		errs = append(errs, "persistence.path is required")
	}

	for i, ch := range c.Alerting.Channels {
		switch ch.Type {
		case "console":
		case "telegram":
			if ch.BotToken == "" || ch.ChatID == "" {
				errs = append(errs, fmt.Sprintf("alerting.channels[%d]: telegram requires bot_token and chat_id", i))
			}
		default:
			errs = append(errs, fmt.Sprintf("alerting.channels[%d]: unknown type '%s'", i, ch.Type))
		}
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 {
			c.Metrics.Port = 9090 // default
		}
		if c.Metrics.Path == "" {
			c.Metrics.Path = "/metrics"
		}
	}

	if c.Monitor.IntervalSec <= 0 {
		c.Monitor.IntervalSec = 300 // default: 5 minutes
	}
	if c.Monitor.AlertsPerMinute <= 0 {
		c.Monitor.AlertsPerMinute = 6
	}
	if c.Monitor.AlertBurst <= 0 {
		c.Monitor.AlertBurst = 3
	}
	if c.Monitor.ShutdownTimeoutSec <= 0 {
		c.Monitor.ShutdownTimeoutSec = 10
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", types.ErrInvalidConfig, strings.Join(errs, "; "))
	}

	return nil
}

// ThresholdConfig converts the default tiers to the engine type.
func (c *Config) ThresholdConfig() types.AlertThresholdConfig {
	return types.AlertThresholdConfig{
		WarningPct:   decimal.NewFromFloat(c.Thresholds.WarningPct),
		CriticalPct:  decimal.NewFromFloat(c.Thresholds.CriticalPct),
		EmergencyPct: decimal.NewFromFloat(c.Thresholds.EmergencyPct),
	}
}

// RiskFreeRateDecimal returns the risk-free rate as a decimal.
func (c *Config) RiskFreeRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Analytics.RiskFreeRate)
}

// MinDrawdownPercentDecimal returns the event filter as a decimal.
func (c *Config) MinDrawdownPercentDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Analytics.MinDrawdownPercent)
}

// MonitorInterval returns the monitor loop interval.
func (c *Config) MonitorInterval() time.Duration {
	return time.Duration(c.Monitor.IntervalSec) * time.Second
}

// ShutdownTimeout returns the shutdown timeout duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Monitor.ShutdownTimeoutSec) * time.Second
}
