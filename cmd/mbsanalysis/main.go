package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/rewired-gh/mbsanalysis/internal/analysis"
	"github.com/rewired-gh/mbsanalysis/internal/config"
	"github.com/rewired-gh/mbsanalysis/internal/logger"
	"github.com/rewired-gh/mbsanalysis/internal/mbs"
	"github.com/rewired-gh/mbsanalysis/internal/report"
	"github.com/rewired-gh/mbsanalysis/internal/telegram"
)

const (
	exitFailure      = 1
	exitInvalidInput = 2
)

func main() {
	flags := pflag.NewFlagSet("mbsanalysis", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "Path to configuration file (optional)")
	config.RegisterFlags(flags)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mbsanalysis [flags]")
		fmt.Fprintln(os.Stderr, "Project MBS cash flows under a PSA prepayment speed and report WAL and price.")
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	// Load configuration
	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(exitFailure)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(exitFailure)
	}

	// Setup logging with level support
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if *configPath != "" {
		logger.Debug("Configuration loaded from %s", *configPath)
	}

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		logger.Fatal("Invalid output format: %v", err)
	}

	// Initialize Telegram client
	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	result, err := analysis.Run(cfg.AnalysisInput())
	if err != nil {
		if telegramClient != nil {
			if sendErr := telegramClient.SendError(err); sendErr != nil {
				logger.Warn("Failed to send error notification to Telegram: %v", sendErr)
			}
		}
		os.Exit(reportFailure(err))
	}
	logger.Info("Valuation %s: WAL %s, price %s", result.ID, result.WALLabel(), result.PriceLabel())

	opts := report.Options{
		Format:      format,
		ChartWidth:  cfg.Output.ChartWidth,
		ChartHeight: cfg.Output.ChartHeight,
	}
	if cfg.Output.FilePath != "" {
		if err := report.WriteFile(cfg.Output.FilePath, result, opts); err != nil {
			logger.Fatal("Failed to write report: %v", err)
		}
		logger.Info("Report written to %s", cfg.Output.FilePath)
	} else if err := report.Render(os.Stdout, result, opts); err != nil {
		logger.Fatal("Failed to render report: %v", err)
	}

	if telegramClient != nil {
		if err := telegramClient.SendResult(result); err != nil {
			logger.Error("Failed to send Telegram notification: %v", err)
		} else {
			logger.Info("Sent Telegram notification for valuation %s", result.ID)
		}
	}
}

// reportFailure prints a user-facing message for a failed valuation and
// returns the process exit code.
func reportFailure(err error) int {
	var mbsErr *mbs.Error
	if errors.As(err, &mbsErr) && mbsErr.Kind == mbs.InvalidInput {
		fmt.Fprintf(os.Stderr, "Error: invalid %s: %s (got %g)\n", mbsErr.Field, mbsErr.Constraint, mbsErr.Value)
		return exitInvalidInput
	}
	logger.Error("Valuation failed: %v", err)
	return exitFailure
}
