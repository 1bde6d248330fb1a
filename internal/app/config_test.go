package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/retailpulse/retailpulse/testing"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	unsetEnv(t, "DATA_SOURCE", "DATA_YEAR", "CACHE_TTL", "WARMUP_CRON", "LOG_LEVEL")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "static", cfg.DataSource)
	assert.Equal(t, 2024, cfg.DataYear)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "*/30 * * * *", cfg.WarmupCron)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigReadsEnvFile(t *testing.T) {
	unsetEnv(t, "DATA_SOURCE", "DATA_YEAR", "DATA_SEED")
	t.Setenv("DATA_SEED", "7")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATA_SOURCE=generated\nDATA_YEAR=2023\nDATA_SEED=99\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "generated", cfg.DataSource)
	assert.Equal(t, 2023, cfg.DataYear)
	assert.Equal(t, int64(7), cfg.DataSeed, "process environment wins over the file")
}

func TestConfigValidate(t *testing.T) {
	valid := Config{SessionSecret: "s", CSRFSecret: "c", DataSource: "static", DataYear: 2024, LogLevel: "info"}
	require.NoError(t, valid.Validate())

	cases := map[string]func(*Config){
		"missing session secret": func(c *Config) { c.SessionSecret = "" },
		"missing csrf secret":    func(c *Config) { c.CSRFSecret = "" },
		"unknown source":         func(c *Config) { c.DataSource = "postgres" },
		"year out of range":      func(c *Config) { c.DataYear = 1999 },
		"bad log level":          func(c *Config) { c.LogLevel = "chatty" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAsynqRedisOpt(t *testing.T) {
	cfg := Config{RedisAddr: "redis://:secret@cache.internal:6380/2"}
	opt, err := cfg.AsynqRedisOpt()
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)

	cfg.RedisAddr = "127.0.0.1:6379"
	opt, err = cfg.AsynqRedisOpt()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opt.Addr)
}

func TestIsProduction(t *testing.T) {
	var cfg *Config
	assert.False(t, cfg.IsProduction())
	assert.True(t, (&Config{AppEnv: "production"}).IsProduction())
}

func TestNewLoggerHonoursFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"})
	logger.Info("hidden")
	logger.Warn("shown", slog.String("component", "test"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "test", entry["component"])
}

func TestInTestMode(t *testing.T) {
	t.Cleanup(RefreshTestMode)
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
