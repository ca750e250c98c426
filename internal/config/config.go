package config

import (
	"os"
	"time"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
	"github.com/arcadia-lab/sentinel-trading/pkg/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration. Symbol, interval and position
// sizing are explicit values here rather than hard-coded constants.
type Config struct {
	Symbol   string `yaml:"symbol" validate:"required"`
	Interval string `yaml:"interval" validate:"required"`

	// CandleLimit is the trailing window loaded for indicator computation.
	CandleLimit int `yaml:"candle_limit" validate:"gt=0"`
	// SnapshotHistory is the number of trailing snapshots attached to the
	// oracle payload as trend context.
	SnapshotHistory int `yaml:"snapshot_history" validate:"gt=0"`

	// PositionSize is the fixed contract quantity used when executing a signal.
	PositionSize float64 `yaml:"position_size" validate:"gt=0"`
	Leverage     float64 `yaml:"leverage" validate:"gte=0"`

	// CallTimeout bounds every external call (market data, oracle, exchange,
	// messaging). A timeout is treated as that boundary's failure.
	CallTimeout time.Duration `yaml:"call_timeout" validate:"gt=0"`

	DatabasePath string `yaml:"database_path" validate:"required"`

	MarketData MarketDataConfig `yaml:"market_data"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Oracle     OracleConfig     `yaml:"oracle"`
	Telegram   TelegramConfig   `yaml:"telegram"`

	// InternalAPIKey guards the internally exposed read endpoints.
	// Leaving it empty disables those endpoints entirely.
	InternalAPIKey string `yaml:"internal_api_key"`
}

// MarketDataConfig selects and configures the candle source.
type MarketDataConfig struct {
	// Provider is "bybit" or "binance".
	Provider string `yaml:"provider" validate:"required,oneof=bybit binance"`
}

// ExchangeConfig holds Bybit v5 credentials and endpoint selection.
type ExchangeConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	Testnet   bool   `yaml:"testnet"`
}

// OracleConfig configures the decision oracle endpoint.
type OracleConfig struct {
	BaseURL     string  `yaml:"base_url" validate:"required"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model" validate:"required"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
}

// TelegramConfig configures the notification gateway and its webhook server.
type TelegramConfig struct {
	BotToken   string `yaml:"bot_token" validate:"required"`
	ChatID     string `yaml:"chat_id" validate:"required"`
	ListenAddr string `yaml:"listen_addr" validate:"required"`
}

// DefaultConfig returns a config populated with the standard defaults.
func DefaultConfig() Config {
	return Config{
		Symbol:          "BTCUSDT",
		Interval:        "240",
		CandleLimit:     1000,
		SnapshotHistory: 10,
		PositionSize:    0.01,
		Leverage:        3,
		CallTimeout:     30 * time.Second,
		DatabasePath:    "sentinel.db",
		MarketData:      MarketDataConfig{Provider: "bybit"},
		Exchange:        ExchangeConfig{APIKey: "", APISecret: "", BaseURL: "", Testnet: true},
		Oracle: OracleConfig{
			BaseURL:     "https://api.openai.com/v1",
			APIKey:      "",
			Model:       "gpt-4o-mini",
			Temperature: 0.6,
		},
		Telegram:       TelegramConfig{BotToken: "", ChatID: "", ListenAddr: ":8085"},
		InternalAPIKey: "",
	}
}

// Load reads and validates a YAML config file. Missing fields fall back to
// the defaults from DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if _, ok := types.IntervalDuration(c.Interval); !ok {
		return errors.Newf(errors.ErrCodeInvalidInterval, "interval %q is not a minutes label", c.Interval)
	}

	return nil
}

// IntervalDuration returns the tick cadence implied by the configured interval.
func (c *Config) IntervalDuration() time.Duration {
	d, _ := types.IntervalDuration(c.Interval)

	return d
}
