package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadAndValidate(t *testing.T) {
	// Create temp config file
	content := `
loan:
  principal: 250000
  coupon_rate_pct: 6.5
  term_years: 15

prepayment:
  psa_pct: 150

pricing:
  discount_rate_pct: 5.25

output:
  format: "json"
  chart_width: 60
  chart_height: 10
  file_path: "out/report.json"

telegram:
  bot_token: "test_token"
  chat_id: "12345"
  enabled: true
  max_retries: 2
  retry_delay_base: 500ms

logging:
  level: "debug"
  format: "json"
`
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	// Test Load
	cfg, err := Load(tmpfile.Name(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify values
	if cfg.Loan.Principal != 250000 {
		t.Errorf("Unexpected principal: %f", cfg.Loan.Principal)
	}
	if cfg.Prepayment.PSAPct != 150 {
		t.Errorf("Unexpected PSA: %f", cfg.Prepayment.PSAPct)
	}
	if cfg.Output.FilePath != "out/report.json" {
		t.Errorf("Unexpected output file path: %q", cfg.Output.FilePath)
	}
	if cfg.Telegram.RetryDelayBase != 500*time.Millisecond {
		t.Errorf("Unexpected retry delay: %v", cfg.Telegram.RetryDelayBase)
	}

	in := cfg.AnalysisInput()
	if in.CouponRatePct != 6.5 || in.TermYears != 15 || in.DiscountRatePct != 5.25 {
		t.Errorf("Unexpected analysis input: %+v", in)
	}

	// Test Validate
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	in := cfg.AnalysisInput()
	if in.Principal != 1_000_000 || in.CouponRatePct != 5.0 || in.TermYears != 30 || in.PSAPct != 100 || in.DiscountRatePct != 4.0 {
		t.Errorf("Unexpected defaults: %+v", in)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Unexpected output format: %s", cfg.Output.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed on defaults: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/mbs-analysis.yaml", nil); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("MBS_ANALYSIS_LOAN_PRINCIPAL", "500000")
	t.Setenv("MBS_ANALYSIS_PREPAYMENT_PSA_PCT", "300")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--psa", "250", "--format", "csv"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", fs)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Environment overrides defaults
	if cfg.Loan.Principal != 500000 {
		t.Errorf("Expected principal from env, got %f", cfg.Loan.Principal)
	}
	// Flags override environment
	if cfg.Prepayment.PSAPct != 250 {
		t.Errorf("Expected PSA from flag, got %f", cfg.Prepayment.PSAPct)
	}
	if cfg.Output.Format != "csv" {
		t.Errorf("Expected format from flag, got %s", cfg.Output.Format)
	}
	// Unset flags leave defaults in place
	if cfg.Loan.TermYears != 30 {
		t.Errorf("Expected default term, got %f", cfg.Loan.TermYears)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load("../../configs/config.yaml", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"-o", "valuation.csv"}); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("../../configs/config.yaml", fs)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.FilePath != "valuation.csv" {
		t.Errorf("Expected output.file_path from flag, got %q", cfg.Output.FilePath)
	}
}

func validConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format:      "text",
			ChartWidth:  72,
			ChartHeight: 14,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "unknown output format",
			mutate:  func(c *Config) { c.Output.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "chart too narrow",
			mutate:  func(c *Config) { c.Output.ChartWidth = 5 },
			wantErr: true,
		},
		{
			name:    "chart too short",
			mutate:  func(c *Config) { c.Output.ChartHeight = 1 },
			wantErr: true,
		},
		{
			name: "missing telegram token when enabled",
			mutate: func(c *Config) {
				c.Telegram = TelegramConfig{Enabled: true, ChatID: "1", MaxRetries: 3}
			},
			wantErr: true,
		},
		{
			name: "missing telegram chat when enabled",
			mutate: func(c *Config) {
				c.Telegram = TelegramConfig{Enabled: true, BotToken: "token", MaxRetries: 3}
			},
			wantErr: true,
		},
		{
			name: "telegram disabled ignores credentials",
			mutate: func(c *Config) {
				c.Telegram = TelegramConfig{Enabled: false}
			},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: true,
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
