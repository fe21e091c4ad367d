package infra

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Defaults for the grid engine. These were magic literals in earlier
// incarnations of the strategy; here they are named and overridable.
const (
	DefaultMaxOpenRungs        = 5
	DefaultPollIntervalSec     = 2
	DefaultHedgeRetrySec       = 1
	DefaultHedgeMaxAttempts    = 300
	DefaultTradeArchiveMinutes = 60
)

// Config holds the whole application configuration. Secrets loaded from the
// file can be overridden through environment variables after load.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		FTX struct {
			RestURL    string `yaml:"rest_url"`
			WSURL      string `yaml:"ws_url"`
			Key        string `yaml:"key"`
			Secret     string `yaml:"secret"`
			Subaccount string `yaml:"subaccount"`
		} `yaml:"ftx"`
	} `yaml:"api"`

	Trading struct {
		Market              string          `yaml:"market"`
		Mode                string          `yaml:"mode"` // "sell" or "buy"
		OrderSize           decimal.Decimal `yaml:"order_size"`
		StepRate            decimal.Decimal `yaml:"step_rate"`
		TriggerRate         decimal.Decimal `yaml:"trigger_rate"`
		MaxOpenRungs        int             `yaml:"max_open_rungs"`
		PollIntervalSec     int             `yaml:"poll_interval_sec"`
		HedgeRetrySec       int             `yaml:"hedge_retry_sec"`
		HedgeMaxAttempts    int             `yaml:"hedge_max_attempts"`
		TradeArchiveMinutes int             `yaml:"trade_archive_minutes"`
	} `yaml:"trading"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file, applies environment
// overrides and defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Trading.MaxOpenRungs <= 0 {
		c.Trading.MaxOpenRungs = DefaultMaxOpenRungs
	}
	if c.Trading.PollIntervalSec <= 0 {
		c.Trading.PollIntervalSec = DefaultPollIntervalSec
	}
	if c.Trading.HedgeRetrySec <= 0 {
		c.Trading.HedgeRetrySec = DefaultHedgeRetrySec
	}
	if c.Trading.HedgeMaxAttempts <= 0 {
		c.Trading.HedgeMaxAttempts = DefaultHedgeMaxAttempts
	}
	if c.Trading.TradeArchiveMinutes <= 0 {
		c.Trading.TradeArchiveMinutes = DefaultTradeArchiveMinutes
	}
	if c.Trading.Mode == "" {
		c.Trading.Mode = "sell"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/grid.db"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.API.FTX.Key == "" {
		return fmt.Errorf("FTX API key is required")
	}
	if c.API.FTX.Secret == "" {
		return fmt.Errorf("FTX API secret is required")
	}
	if c.Trading.Market == "" {
		return fmt.Errorf("trading market is required")
	}
	if c.Trading.Mode != "sell" && c.Trading.Mode != "buy" {
		return fmt.Errorf("trading mode must be sell or buy, got %q", c.Trading.Mode)
	}
	if !c.Trading.OrderSize.IsPositive() {
		return fmt.Errorf("order size must be positive")
	}
	if !c.Trading.StepRate.IsPositive() {
		return fmt.Errorf("step rate must be positive")
	}
	if !c.Trading.TriggerRate.IsPositive() {
		return fmt.Errorf("trigger rate must be positive")
	}

	return nil
}

// overrideWithEnv overrides sensitive configuration from the environment.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("GRID_FTX_KEY"); key != "" {
		cfg.API.FTX.Key = key
	}
	if secret := os.Getenv("GRID_FTX_SECRET"); secret != "" {
		cfg.API.FTX.Secret = secret
	}
	if sub := os.Getenv("GRID_FTX_SUBACCOUNT"); sub != "" {
		cfg.API.FTX.Subaccount = sub
	}
}
