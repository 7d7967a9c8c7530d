package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50, cfg.Analysis.RecentWindow)
	assert.Equal(t, 10, cfg.Analysis.TopMain)
	assert.Equal(t, 6, cfg.Analysis.TopBonus)
	assert.InDelta(t, 0.6, cfg.Analysis.FrequencyWeight, 1e-12)
	assert.InDelta(t, 0.4, cfg.Analysis.GapWeight, 1e-12)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data:
  source: "draws.csv"
analysis:
  recent_window: 30
  top_main: 12
  top_bonus: 6
  balanced_main: 7
  balanced_bonus: 3
  frequency_weight: 0.5
  gap_weight: 0.5
api:
  timeout: 5s
  retry_count: 1
  retry_delay: 100ms
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "draws.csv", cfg.Data.Source)
	assert.Equal(t, 30, cfg.Analysis.RecentWindow)
	assert.Equal(t, 12, cfg.Analysis.TopMain)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.API.RetryDelay)
	// 未出现的字段保留默认值
	assert.Equal(t, "docs/index.html", cfg.Report.HTMLPath)
}

func TestLoadConfig_ExplicitMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("LOTTO_DATA_SOURCE", "https://example.org/results.csv")
	t.Setenv("LOTTO_SEED", "1234")
	t.Setenv("LOTTO_TELEGRAM_TOKEN", "secret")

	cfg, err := LoadConfig(writeConfig(t, "app:\n  log_level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://example.org/results.csv", cfg.Data.Source)
	assert.Equal(t, uint64(1234), cfg.Predict.Seed)
	assert.Equal(t, "secret", cfg.Telegram.Token)
	assert.Equal(t, "debug", cfg.App.LogLevel)
}

func TestLoadConfig_BadSeed(t *testing.T) {
	t.Setenv("LOTTO_SEED", "-1")
	_, err := LoadConfig(writeConfig(t, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOTTO_SEED")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero recent window", func(c *Config) { c.Analysis.RecentWindow = 0 }},
		{"top main below picks", func(c *Config) { c.Analysis.TopMain = 4 }},
		{"top bonus above domain", func(c *Config) { c.Analysis.TopBonus = 13 }},
		{"both weights zero", func(c *Config) { c.Analysis.FrequencyWeight, c.Analysis.GapWeight = 0, 0 }},
		{"negative weight", func(c *Config) { c.Analysis.GapWeight = -1 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }},
		{"telegram without token", func(c *Config) { c.Telegram.Enabled = true; c.Telegram.ChatIDs = []int64{1} }},
		{"from database without database", func(c *Config) { c.Data.FromDatabase = true }},
		{"bad log format", func(c *Config) { c.App.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetDSN(t *testing.T) {
	d := Database{Driver: "sqlite", Path: "x.db"}
	assert.Equal(t, "x.db", d.GetDSN())

	d = Database{Driver: "mysql", Host: "db", Port: 3306, Username: "u", Password: "p", Database: "lotto"}
	assert.Equal(t, "u:p@tcp(db:3306)/lotto?charset=utf8mb4&parseTime=True&loc=Local", d.GetDSN())

	d.DSN = "override"
	assert.Equal(t, "override", d.GetDSN())
}
