// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Polymarket PolymarketConfig `mapstructure:"polymarket"`
	OddsAPI    OddsAPIConfig    `mapstructure:"odds_api"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	Signals    SignalsConfig    `mapstructure:"signals"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// PolymarketConfig holds the prediction-market feed settings.
type PolymarketConfig struct {
	GammaAPIURL   string        `mapstructure:"gamma_api_url"`
	CLOBAPIURL    string        `mapstructure:"clob_api_url"`
	CLOBWSSURL    string        `mapstructure:"clob_wss_url"`
	SeriesTickers []string      `mapstructure:"series_tickers"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// OddsAPIConfig holds the sportsbook feed settings.
type OddsAPIConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Regions    string `mapstructure:"regions"`
	Markets    string `mapstructure:"markets"`
	OddsFormat string `mapstructure:"odds_format"`
}

// MatchingConfig holds event-match admission settings.
type MatchingConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// SignalsConfig holds opportunity admission settings. Thresholds carry no
// sane defaults; a run without them is a configuration error.
type SignalsConfig struct {
	MinProfit    *float64 `mapstructure:"min_profit"`
	MinLiquidity *float64 `mapstructure:"min_liquidity"`
}

// StorageConfig holds output and history settings.
type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	OutputDir    string `mapstructure:"output_dir"`
}

// MetricsConfig holds the Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// Load reads configuration from an optional file plus LINESHIFT_* environment
// variables. An empty path skips the file and uses defaults and environment
// only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("LINESHIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("polymarket.gamma_api_url", "https://gamma-api.polymarket.com")
	v.SetDefault("polymarket.clob_api_url", "https://clob.polymarket.com")
	v.SetDefault("polymarket.clob_wss_url", "wss://ws-subscriptions-clob.polymarket.com/ws/market")
	v.SetDefault("polymarket.series_tickers", []string{"nfl", "nba", "mlb", "nhl", "cfb", "cbb"})
	v.SetDefault("polymarket.poll_interval", "5m")
	v.SetDefault("polymarket.timeout", "30s")

	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com/v4")
	// Registered empty so the environment override is visible to Unmarshal.
	v.SetDefault("odds_api.api_key", "")
	v.SetDefault("odds_api.regions", "us")
	v.SetDefault("odds_api.markets", "h2h")
	v.SetDefault("odds_api.odds_format", "decimal")

	v.SetDefault("matching.min_confidence", 0.8)

	v.SetDefault("storage.database_path", "data/lineshift.db")
	v.SetDefault("storage.output_dir", "out")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen", ":9185")
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if c.Polymarket.GammaAPIURL == "" {
		return fmt.Errorf("polymarket.gamma_api_url is required")
	}
	if c.Polymarket.CLOBAPIURL == "" {
		return fmt.Errorf("polymarket.clob_api_url is required")
	}
	if c.Polymarket.PollInterval < 10*time.Second {
		return fmt.Errorf("polymarket.poll_interval must be at least 10s")
	}

	if c.OddsAPI.APIKey == "" {
		return fmt.Errorf("odds_api.api_key is required")
	}
	switch c.OddsAPI.OddsFormat {
	case "american", "decimal":
	default:
		return fmt.Errorf("odds_api.odds_format must be american or decimal")
	}

	if c.Matching.MinConfidence < 0 || c.Matching.MinConfidence > 1 {
		return fmt.Errorf("matching.min_confidence must be between 0.0 and 1.0")
	}

	if c.Signals.MinProfit == nil {
		return fmt.Errorf("signals.min_profit is required")
	}
	if *c.Signals.MinProfit < 0 {
		return fmt.Errorf("signals.min_profit must not be negative")
	}
	if c.Signals.MinLiquidity == nil {
		return fmt.Errorf("signals.min_liquidity is required")
	}
	if *c.Signals.MinLiquidity < 0 {
		return fmt.Errorf("signals.min_liquidity must not be negative")
	}

	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path is required")
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen is required when metrics are enabled")
	}
	return nil
}
