package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/hibiken/asynq"
	"github.com/kelseyhightower/envconfig"

	"github.com/retailpulse/retailpulse/internal/dashboard/provider"
	"github.com/retailpulse/retailpulse/internal/platform/cache"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	CacheTTL   time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	DataSource string        `envconfig:"DATA_SOURCE" default:"static"`
	DataYear   int           `envconfig:"DATA_YEAR" default:"2024"`
	DataSeed   int64         `envconfig:"DATA_SEED" default:"42"`

	WarmupCron string `envconfig:"WARMUP_CRON" default:"*/30 * * * *"`
}

// LoadConfig reads configuration from environment variables, after
// applying any .env files found in the working directory.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		// Existing environment variables win over file values.
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings envconfig cannot check on its own.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret must be provided")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	switch c.DataSource {
	case provider.SourceStatic, provider.SourceGenerated:
	default:
		return fmt.Errorf("unknown data source %q", c.DataSource)
	}
	if c.DataYear < 2000 || c.DataYear > 2100 {
		return fmt.Errorf("data year %d out of range", c.DataYear)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// AsynqRedisOpt converts RedisAddr into Asynq connection options.
func (c *Config) AsynqRedisOpt() (asynq.RedisClientOpt, error) {
	opts, err := cache.Options(c.RedisAddr)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
