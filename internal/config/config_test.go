package config

import (
	"os"
	"path/filepath"
	"testing"

	"WolfHunter/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderMEXC, cfg.DataSource.Provider)
	assert.Equal(t, "OKMUSDT", cfg.DataSource.Symbol)
	assert.Equal(t, 100, cfg.DataSource.Limit)
	assert.Equal(t, []string{"15m", "1h", "4h", "1d"}, cfg.Engine.Timeframes)
	assert.Equal(t, "0 */5 * * * *", cfg.Schedule.EvaluateCron)
	assert.Equal(t, 70, cfg.Alert.Threshold)
	assert.Equal(t, "data/alert_state.json", cfg.Alert.StateFile)
	assert.Empty(t, cfg.Database.SQLitePath)
	assert.NoError(t, cfg.ValidateSource())
	assert.ErrorContains(t, cfg.Validate(), "bot_token")
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: file-token
  chat_id: "123"
data_source:
  provider: bybit
  symbol: BTCUSDT
  limit: 200
engine:
  timeframes: [1m, 10m]
alert:
  threshold: 60
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("SYMBOL", "ETHUSDT")
	t.Setenv("ALERT_THRESHOLD", "80")
	t.Setenv("METRICS_ADDR", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "123", cfg.Telegram.ChatID)
	assert.Equal(t, ProviderBybit, cfg.DataSource.Provider)
	assert.Equal(t, "ETHUSDT", cfg.DataSource.Symbol)
	assert.Equal(t, 200, cfg.DataSource.Limit)
	assert.Equal(t, 80, cfg.Alert.Threshold)
	assert.Equal(t, ":9100", cfg.Metrics.ListenAddr)

	tfs, err := cfg.Timeframes()
	require.NoError(t, err)
	assert.Equal(t, []model.Timeframe{model.Timeframe1m, model.Timeframe10m}, tfs)
}

func TestLoad_BadInput(t *testing.T) {
	_, err := Load(writeConfig(t, "telegram: [unclosed"))
	assert.ErrorContains(t, err, "parse config")

	t.Setenv("ALERT_THRESHOLD", "high")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "ALERT_THRESHOLD")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		cfg.Telegram.BotToken = "token"
		cfg.Telegram.ChatID = "1"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "kraken" }, "not supported"},
		{"archive without db", func(c *Config) { c.DataSource.Provider = ProviderArchive }, "sqlite_path"},
		{"bad timeframe", func(c *Config) { c.Engine.Timeframes = []string{"1h", "2h"} }, "engine.timeframes"},
		{"limit too small", func(c *Config) { c.DataSource.Limit = 20 }, "data_source.limit"},
		{"bad cron", func(c *Config) { c.Schedule.EvaluateCron = "every minute" }, "evaluate_cron"},
		{"threshold range", func(c *Config) { c.Alert.Threshold = 120 }, "alert.threshold"},
		{"missing chat", func(c *Config) { c.Telegram.ChatID = "" }, "chat_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLoad_MEXCBaseURLOnlyForMEXC(t *testing.T) {
	t.Setenv("MEXC_BASE_URL", "http://mexc.local")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://mexc.local", cfg.DataSource.BaseURL, "mexc is the default provider")

	cfg, err = Load(writeConfig(t, "data_source:\n  provider: yahoo\n  base_url: http://yahoo.local\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://yahoo.local", cfg.DataSource.BaseURL)

	t.Setenv("DATA_PROVIDER", "bybit")
	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.DataSource.BaseURL)
}
