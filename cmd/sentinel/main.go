// Package main is the entry point for the portfolio drawdown sentinel.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tathienbao/folio-sentinel/internal/alerting"
	"github.com/tathienbao/folio-sentinel/internal/analytics"
	"github.com/tathienbao/folio-sentinel/internal/config"
	"github.com/tathienbao/folio-sentinel/internal/metrics"
	"github.com/tathienbao/folio-sentinel/internal/monitor"
	"github.com/tathienbao/folio-sentinel/internal/persistence"
	"github.com/tathienbao/folio-sentinel/internal/types"
	"github.com/tathienbao/folio-sentinel/internal/valuation"
)

// Version information (set by build flags).
var (
	Version   = "0.2.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version", "-v", "--version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	case "analyze":
		cmdAnalyze(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "monitor":
		cmdMonitor(os.Args[2:])
	case "validate":
		cmdValidate(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Folio Sentinel - Portfolio Drawdown & Performance Analytics

Usage:
  sentinel <command> [options]

Commands:
  analyze    Analyze a valuation series from a CSV file
  import     Import a CSV valuation series into the snapshot store
  monitor    Run the periodic drawdown monitor
  validate   Validate configuration file
  version    Show version information
  help       Show this help message

Examples:
  sentinel analyze --data valuations.csv --warning 15 --critical 20 --emergency 25
  sentinel import --config config.yaml --data valuations.csv --user alice
  sentinel monitor --config config.yaml

Use "sentinel <command> --help" for more information about a command.`)
}

func cmdVersion() {
	fmt.Printf("sentinel version %s\n", Version)
	fmt.Printf("  Build time: %s\n", BuildTime)
	fmt.Printf("  Git commit: %s\n", GitCommit)
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to configuration file")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration is valid!")
	fmt.Printf("  Snapshot store:   %s\n", cfg.Persistence.Path)
	fmt.Printf("  Monitor interval: %s\n", cfg.MonitorInterval())
	fmt.Printf("  Thresholds:       %.1f / %.1f / %.1f %%\n",
		cfg.Thresholds.WarningPct, cfg.Thresholds.CriticalPct, cfg.Thresholds.EmergencyPct)
	fmt.Printf("  Risk-free rate:   %.2f%%\n", cfg.Analytics.RiskFreeRate*100)
}

func cmdAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	dataPath := fs.String("data", "", "Path to CSV valuation file (required)")
	riskFree := fs.Float64("rf", 0, "Annual risk-free rate (e.g. 0.05)")
	minDD := fs.Float64("min-dd", 0, "Minimum drawdown percent for the event list")
	warning := fs.Float64("warning", 0, "Warning threshold in percent (0 disables alerts)")
	critical := fs.Float64("critical", 0, "Critical threshold in percent")
	emergency := fs.Float64("emergency", 0, "Emergency threshold in percent")
	verbose := fs.Bool("verbose", false, "Verbose output")
	_ = fs.Parse(args)

	if *dataPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --data is required")
		fs.Usage()
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	source := valuation.NewCSVSource(*dataPath)
	series, err := source.GetValuationSeries(context.Background(), "", time.Time{}, time.Time{})
	if err != nil {
		slog.Error("failed to load valuations", "err", err)
		os.Exit(1)
	}

	opts := analytics.Options{
		MinDrawdownPercent: decimal.NewFromFloat(*minDD),
		RiskFreeRate:       decimal.NewFromFloat(*riskFree),
	}
	if *warning > 0 {
		opts.Thresholds = &types.AlertThresholdConfig{
			WarningPct:   decimal.NewFromFloat(*warning),
			CriticalPct:  decimal.NewFromFloat(*critical),
			EmergencyPct: decimal.NewFromFloat(*emergency),
		}
	}

	result, err := analytics.NewAnalyzer(logger).Analyze(series, opts)
	if err != nil {
		slog.Error("analysis failed", "err", err)
		os.Exit(1)
	}

	printResult(result, len(series))
}

func printResult(result *analytics.Result, points int) {
	hundred := decimal.NewFromInt(100)

	fmt.Println("\n=== DRAWDOWN ANALYSIS ===")
	fmt.Printf("Observations:     %d\n", points)
	if result.Current != nil {
		fmt.Printf("Peak Value:       $%s (%s)\n",
			result.Current.PeakValue.StringFixed(2),
			result.Current.PeakDate.Format("2006-01-02"))
		fmt.Printf("Current Drawdown: %s%%\n",
			result.Current.CurrentDrawdownPercent.Mul(hundred).StringFixed(2))
		fmt.Printf("Days In Drawdown: %d\n", result.Current.DaysInDrawdown)
	}

	stats := result.Statistics
	fmt.Println("\n=== PERFORMANCE ===")
	fmt.Printf("Max Drawdown:     %s%%\n", stats.MaxDrawdownPercent.Mul(hundred).StringFixed(2))
	fmt.Printf("Total Events:     %d\n", stats.TotalEvents)
	fmt.Printf("Avg Drawdown:     %s%%\n", stats.AverageDrawdownPercent.Mul(hundred).StringFixed(2))
	fmt.Printf("Avg Recovery:     %s days\n", stats.AverageRecoveryDays.StringFixed(1))
	fmt.Printf("Longest Decline:  %d days\n", stats.LongestDrawdownDays)
	if stats.TimeWeightedReturn != nil {
		fmt.Printf("TWR:              %s%%\n", stats.TimeWeightedReturn.Mul(hundred).StringFixed(2))
	}
	if stats.VolatilityAnnualized != nil {
		fmt.Printf("Volatility (ann): %s%%\n", stats.VolatilityAnnualized.Mul(hundred).StringFixed(2))
	} else {
		fmt.Println("Volatility (ann): insufficient history")
	}
	if stats.SharpeRatio != nil {
		fmt.Printf("Sharpe Ratio:     %s\n", stats.SharpeRatio.StringFixed(2))
	} else {
		fmt.Println("Sharpe Ratio:     insufficient history")
	}
	if stats.SortinoRatio != nil {
		fmt.Printf("Sortino Ratio:    %s\n", stats.SortinoRatio.StringFixed(2))
	}

	if len(result.Events) > 0 {
		fmt.Println("\n=== DRAWDOWN EVENTS ===")
		for _, ev := range result.Events {
			state := "open"
			if ev.IsRecovered {
				state = "recovered"
			}
			fmt.Printf("%s  peak $%s (%s)  trough $%s (%s)  depth %s%%  [%s]\n",
				ev.ID,
				ev.PeakValue.StringFixed(2), ev.PeakDate.Format("2006-01-02"),
				ev.TroughValue.StringFixed(2), ev.TroughDate.Format("2006-01-02"),
				ev.MaxDrawdownPercent.Mul(hundred).StringFixed(2),
				state)
		}
	}

	for _, alert := range result.Alerts {
		fmt.Printf("\nALERT [%s]: %s\n", alert.Level, alert.Message)
	}
}

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to configuration file")
	dataPath := fs.String("data", "", "Path to CSV valuation file (required)")
	userID := fs.String("user", "", "User ID to import for (required)")
	_ = fs.Parse(args)

	if *dataPath == "" || *userID == "" {
		fmt.Fprintln(os.Stderr, "Error: --data and --user are required")
		fs.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	source := valuation.NewCSVSource(*dataPath)
	series, err := source.GetValuationSeries(context.Background(), "", time.Time{}, time.Time{})
	if err != nil {
		slog.Error("failed to load valuations", "err", err)
		os.Exit(1)
	}

	repo, err := persistence.NewSQLiteRepository(cfg.Persistence.Path)
	if err != nil {
		slog.Error("failed to open snapshot store", "err", err)
		os.Exit(1)
	}
	defer func() { _ = repo.Close() }()

	if err := repo.SaveValuationSeries(context.Background(), *userID, series); err != nil {
		slog.Error("import failed", "err", err)
		os.Exit(1)
	}

	slog.Info("import complete", "user", *userID, "points", len(series))
}

func cmdMonitor(args []string) {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to configuration file")
	_ = fs.Parse(args)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("sentinel starting",
		"version", Version,
		"interval", cfg.MonitorInterval(),
		"store", cfg.Persistence.Path,
	)

	repo, err := persistence.NewSQLiteRepository(cfg.Persistence.Path)
	if err != nil {
		slog.Error("failed to open snapshot store", "err", err)
		os.Exit(1)
	}
	defer func() { _ = repo.Close() }()

	alerter := buildAlerter(cfg, logger)

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics, logger)
		metricsServer.RegisterStoreCheck(func(ctx context.Context) error {
			_, err := repo.ListUsers(ctx)
			return err
		})
		metricsServer.Start()
	}

	mon := monitor.New(cfg, repo, repo, repo, alerter, logger)
	if err := mon.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("monitor error", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics shutdown error", "err", err)
		}
	}

	slog.Info("sentinel shutdown complete")
}

// buildAlerter assembles the configured alert channels.
func buildAlerter(cfg *config.Config, logger *slog.Logger) alerting.Alerter {
	if !cfg.Alerting.Enabled {
		return nil
	}

	multi := alerting.NewMultiAlerter(logger)
	for _, ch := range cfg.Alerting.Channels {
		switch ch.Type {
		case "console":
			multi.AddAlerter(alerting.NewConsoleAlerter(logger))
		case "telegram":
			multi.AddAlerter(alerting.NewTelegramAlerter(alerting.TelegramConfig{
				BotToken: ch.BotToken,
				ChatID:   ch.ChatID,
			}))
		}
	}
	return multi
}
