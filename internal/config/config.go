package config

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	TelegramToken      string        `env:"TELEGRAM_TOKEN,required"`
	OperatorID         int64         `env:"OPERATOR_ID,required"`
	BotDebug           bool          `env:"BOT_DEBUG" envDefault:"false"`
	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	StateTTL           time.Duration `env:"STATE_TTL" envDefault:"24h"`
	StateMaxUsers      int           `env:"STATE_MAX_USERS" envDefault:"10000"`
	StateSweepInterval time.Duration `env:"STATE_SWEEP_INTERVAL" envDefault:"10m"`
	DispatchRetryDelay time.Duration `env:"DISPATCH_RETRY_DELAY" envDefault:"2s"`
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
}

var (
	ErrInvalidToken    = errors.New("TELEGRAM_TOKEN must look like <bot id>:<secret>")
	ErrInvalidOperator = errors.New("OPERATOR_ID must be a non-zero chat id")
)

var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]{20,}$`)

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate reports the first malformed setting.
func (c *Config) Validate() error {
	if !tokenPattern.MatchString(c.TelegramToken) {
		return ErrInvalidToken
	}
	if c.OperatorID == 0 {
		return ErrInvalidOperator
	}
	if c.StateTTL < 0 {
		return fmt.Errorf("STATE_TTL must not be negative, got %s", c.StateTTL)
	}
	if c.StateMaxUsers < 0 {
		return fmt.Errorf("STATE_MAX_USERS must not be negative, got %d", c.StateMaxUsers)
	}
	if c.StateSweepInterval <= 0 {
		return fmt.Errorf("STATE_SWEEP_INTERVAL must be positive, got %s", c.StateSweepInterval)
	}
	return nil
}
