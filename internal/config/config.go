package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

type Config struct {
	Port                 int    `env:"PORT,default=3000"`
	UpstreamURL          string `env:"UPSTREAM_URL,required=true"`
	VerifyTimeoutMillis  int    `env:"VERIFY_TIMEOUT_MS,default=30000"`
	RateLimitDelayMillis int    `env:"RATE_LIMIT_DELAY_MS,default=100"`
	BatchSize            int    `env:"BATCH_SIZE,default=50"`
	MaxBatchEmails       int    `env:"MAX_BATCH_EMAILS,default=1000"`
	// MaxConcurrent is reserved for a future multi-worker drain pool; the
	// queue currently services exactly one job at a time.
	MaxConcurrent      int    `env:"MAX_CONCURRENT_REQUESTS,default=5"`
	ShutdownPollMillis int    `env:"SHUTDOWN_POLL_MS,default=100"`
	InboundRatePerSec  int    `env:"INBOUND_RATE_PER_SEC,default=0"`
	LogLevel           string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.UpstreamURL) == "" {
		return fmt.Errorf("UPSTREAM_URL must not be blank")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.VerifyTimeoutMillis <= 0 {
		return fmt.Errorf("VERIFY_TIMEOUT_MS must be positive, got %d", c.VerifyTimeoutMillis)
	}
	if c.RateLimitDelayMillis < 0 {
		return fmt.Errorf("RATE_LIMIT_DELAY_MS must not be negative, got %d", c.RateLimitDelayMillis)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be at least 1, got %d", c.BatchSize)
	}
	if c.MaxBatchEmails < c.BatchSize {
		return fmt.Errorf("MAX_BATCH_EMAILS must be at least BATCH_SIZE, got %d", c.MaxBatchEmails)
	}
	if c.ShutdownPollMillis < 1 {
		return fmt.Errorf("SHUTDOWN_POLL_MS must be at least 1, got %d", c.ShutdownPollMillis)
	}
	return nil
}

func (c *Config) VerifyTimeout() time.Duration {
	return time.Duration(c.VerifyTimeoutMillis) * time.Millisecond
}

func (c *Config) RateLimitDelay() time.Duration {
	return time.Duration(c.RateLimitDelayMillis) * time.Millisecond
}

func (c *Config) ShutdownPollInterval() time.Duration {
	return time.Duration(c.ShutdownPollMillis) * time.Millisecond
}
