package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rewired-gh/mbsanalysis/internal/analysis"
)

// EnvPrefix is prepended to every environment override, e.g. MBS_ANALYSIS_LOAN_PRINCIPAL.
const EnvPrefix = "MBS_ANALYSIS"

// Config represents the complete application configuration
type Config struct {
	Loan       LoanConfig       `mapstructure:"loan"`
	Prepayment PrepaymentConfig `mapstructure:"prepayment"`
	Pricing    PricingConfig    `mapstructure:"pricing"`
	Output     OutputConfig     `mapstructure:"output"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// LoanConfig holds the loan inputs in form units
type LoanConfig struct {
	Principal     float64 `mapstructure:"principal"`
	CouponRatePct float64 `mapstructure:"coupon_rate_pct"`
	TermYears     float64 `mapstructure:"term_years"`
}

// PrepaymentConfig holds the PSA speed
type PrepaymentConfig struct {
	PSAPct float64 `mapstructure:"psa_pct"`
}

// PricingConfig holds the discounting assumption
type PricingConfig struct {
	DiscountRatePct float64 `mapstructure:"discount_rate_pct"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format      string `mapstructure:"format"`
	ChartWidth  int    `mapstructure:"chart_width"`
	ChartHeight int    `mapstructure:"chart_height"`
	FilePath    string `mapstructure:"file_path"` // empty writes to stdout
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"principal":    "loan.principal",
	"coupon":       "loan.coupon_rate_pct",
	"term":         "loan.term_years",
	"psa":          "prepayment.psa_pct",
	"discount":     "pricing.discount_rate_pct",
	"format":       "output.format",
	"chart-width":  "output.chart_width",
	"chart-height": "output.chart_height",
	"output":       "output.file_path",
	"telegram":     "telegram.enabled",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
}

// RegisterFlags declares the override flags Load knows how to bind.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Float64("principal", 0, "Principal amount ($)")
	fs.Float64("coupon", 0, "Annual coupon rate (%)")
	fs.Float64("term", 0, "Term (years)")
	fs.Float64("psa", 0, "PSA prepayment speed (%)")
	fs.Float64("discount", 0, "Annual discount rate (%)")
	fs.String("format", "", "Report format: text, json or csv")
	fs.Int("chart-width", 0, "Chart width in columns (text format)")
	fs.Int("chart-height", 0, "Chart height in rows (text format)")
	fs.StringP("output", "o", "", "Write the report to this file instead of stdout")
	fs.Bool("telegram", false, "Send the valuation summary to Telegram")
	fs.String("log-level", "", "Log level: debug, info, warn, error")
	fs.String("log-format", "", "Log format: json or text")
}

// Load reads configuration from defaults, an optional file, environment variables
// and any flags registered with RegisterFlags, in increasing order of precedence.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Loan defaults
	v.SetDefault("loan.principal", 1_000_000.0)
	v.SetDefault("loan.coupon_rate_pct", 5.0)
	v.SetDefault("loan.term_years", 30.0)

	// Prepayment and pricing defaults
	v.SetDefault("prepayment.psa_pct", 100.0)
	v.SetDefault("pricing.discount_rate_pct", 4.0)

	// Output defaults
	v.SetDefault("output.format", "text")
	v.SetDefault("output.chart_width", 72)
	v.SetDefault("output.chart_height", 14)
	v.SetDefault("output.file_path", "")

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid. Loan inputs are
// checked by analysis.Input.Validate so the error names the form field.
func (c *Config) Validate() error {
	// Validate Output config
	validFormats := map[string]bool{"text": true, "json": true, "csv": true}
	if !validFormats[strings.ToLower(c.Output.Format)] {
		return fmt.Errorf("output.format must be one of: text, json, csv")
	}
	if c.Output.ChartWidth < 10 {
		return fmt.Errorf("output.chart_width must be at least 10")
	}
	if c.Output.ChartHeight < 3 {
		return fmt.Errorf("output.chart_height must be at least 3")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
		if c.Telegram.MaxRetries < 1 {
			return fmt.Errorf("telegram.max_retries must be at least 1")
		}
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// AnalysisInput returns a snapshot of the form inputs for one valuation.
func (c *Config) AnalysisInput() analysis.Input {
	return analysis.Input{
		Principal:       c.Loan.Principal,
		CouponRatePct:   c.Loan.CouponRatePct,
		TermYears:       c.Loan.TermYears,
		PSAPct:          c.Prepayment.PSAPct,
		DiscountRatePct: c.Pricing.DiscountRatePct,
	}
}
