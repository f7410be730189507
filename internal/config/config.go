package config

import (
	"fmt"
	"os"
	"strconv"

	"WolfHunter/internal/model"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Data providers.
const (
	ProviderMEXC    = "mexc"
	ProviderBybit   = "bybit"
	ProviderYahoo   = "yahoo"
	ProviderMock    = "mock"
	ProviderArchive = "archive"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url"`
		Symbol   string `yaml:"symbol"`
		Category string `yaml:"category"` // bybit market category
		Limit    int    `yaml:"limit"`
	} `yaml:"data_source"`
	Engine struct {
		Timeframes []string `yaml:"timeframes"`
	} `yaml:"engine"`
	Schedule struct {
		EvaluateCron string `yaml:"evaluate_cron"`
	} `yaml:"schedule"`
	Alert struct {
		Threshold int    `yaml:"threshold"`
		StateFile string `yaml:"state_file"`
	} `yaml:"alert"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	// MEXC_BASE_URL only applies to the MEXC provider, which is also the default.
	if v := os.Getenv("MEXC_BASE_URL"); v != "" &&
		(cfg.DataSource.Provider == "" || cfg.DataSource.Provider == ProviderMEXC) {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("EVALUATE_CRON"); v != "" {
		cfg.Schedule.EvaluateCron = v
	}
	if v := os.Getenv("ALERT_THRESHOLD"); v != "" {
		threshold, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("ALERT_THRESHOLD: %w", err)
		}
		cfg.Alert.Threshold = threshold
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.ListenAddr = v
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = ProviderMEXC
	}
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "OKMUSDT"
	}
	if cfg.DataSource.Category == "" {
		cfg.DataSource.Category = "spot"
	}
	if cfg.DataSource.Limit == 0 {
		cfg.DataSource.Limit = 100
	}
	if len(cfg.Engine.Timeframes) == 0 {
		cfg.Engine.Timeframes = []string{"15m", "1h", "4h", "1d"}
	}
	if cfg.Schedule.EvaluateCron == "" {
		cfg.Schedule.EvaluateCron = "0 */5 * * * *"
	}
	if cfg.Alert.Threshold == 0 {
		cfg.Alert.Threshold = 70
	}
	if cfg.Alert.StateFile == "" {
		cfg.Alert.StateFile = "data/alert_state.json"
	}

	return cfg, nil
}

// Timeframes returns the configured timeframes, parsed.
func (c *Config) Timeframes() ([]model.Timeframe, error) {
	out := make([]model.Timeframe, 0, len(c.Engine.Timeframes))
	for _, s := range c.Engine.Timeframes {
		tf, err := model.ParseTimeframe(s)
		if err != nil {
			return nil, fmt.Errorf("engine.timeframes: %w", err)
		}
		out = append(out, tf)
	}
	return out, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if err := c.ValidateSource(); err != nil {
		return err
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).
		Parse(c.Schedule.EvaluateCron); err != nil {
		return fmt.Errorf("schedule.evaluate_cron: %w", err)
	}
	if c.Alert.Threshold < 1 || c.Alert.Threshold > 100 {
		return fmt.Errorf("alert.threshold must be between 1 and 100, got %d", c.Alert.Threshold)
	}
	return nil
}

// ValidateSource checks only what is needed to fetch and evaluate, without Telegram.
func (c *Config) ValidateSource() error {
	switch c.DataSource.Provider {
	case ProviderMEXC, ProviderBybit, ProviderYahoo, ProviderMock:
	case ProviderArchive:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("data_source.provider %q requires database.sqlite_path", ProviderArchive)
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.Symbol == "" {
		return fmt.Errorf("data_source.symbol is required")
	}
	if c.DataSource.Limit < 35 || c.DataSource.Limit > 1000 {
		return fmt.Errorf("data_source.limit must be between 35 and 1000, got %d", c.DataSource.Limit)
	}
	if _, err := c.Timeframes(); err != nil {
		return err
	}
	return nil
}
