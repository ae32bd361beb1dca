package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port               int    `env:"PORT" envDefault:"8080"`
	DatabaseURL        string `env:"DATABASE_URL,required"`
	RedisURL           string `env:"REDIS_URL,required"`
	RootTelegramID     int64  `env:"ROOT_TELEGRAM_ID,required"`
	WebhookSecret      string `env:"WEBHOOK_SECRET"`
	OpsToken           string `env:"OPS_TOKEN"`
	MeetAPIBaseURL     string `env:"MEET_API_BASE_URL,required"`
	MeetAPITimeoutSecs int    `env:"MEET_API_TIMEOUT_SECONDS" envDefault:"15"`
	MasterAPIBaseURL   string `env:"MASTER_API_BASE_URL" envDefault:""`
	BulkTakeMax        int    `env:"BULK_TAKE_MAX" envDefault:"20"`
	CodeListLimit      int    `env:"CODE_LIST_LIMIT" envDefault:"30"`
	SnapshotCacheSecs  int    `env:"SNAPSHOT_CACHE_SECONDS" envDefault:"10"`
	FixtureCodesPath   string `env:"FIXTURE_CODES_PATH" envDefault:""`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) MeetAPITimeout() time.Duration {
	return time.Duration(c.MeetAPITimeoutSecs) * time.Second
}

func (c *Config) SnapshotCacheTTL() time.Duration {
	return time.Duration(c.SnapshotCacheSecs) * time.Second
}

func (c *Config) Validate() error {
	if c.RootTelegramID <= 0 {
		return fmt.Errorf("ROOT_TELEGRAM_ID must be a positive chat user id")
	}
	if c.BulkTakeMax <= 0 {
		return fmt.Errorf("BULK_TAKE_MAX must be positive")
	}
	if c.MeetAPITimeoutSecs <= 0 {
		return fmt.Errorf("MEET_API_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
