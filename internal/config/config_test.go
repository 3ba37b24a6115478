package config

import (
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("UPSTREAM_URL", "https://verify.example.com/api/check")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.VerifyTimeoutMillis != 30000 {
		t.Errorf("VerifyTimeoutMillis = %d, want 30000", cfg.VerifyTimeoutMillis)
	}
	if cfg.RateLimitDelayMillis != 100 {
		t.Errorf("RateLimitDelayMillis = %d, want 100", cfg.RateLimitDelayMillis)
	}
	if cfg.BatchSize != 50 {
		t.Errorf("BatchSize = %d, want 50", cfg.BatchSize)
	}
	if cfg.MaxBatchEmails != 1000 {
		t.Errorf("MaxBatchEmails = %d, want 1000", cfg.MaxBatchEmails)
	}
	if cfg.MaxConcurrent != 5 {
		t.Errorf("MaxConcurrent = %d, want 5", cfg.MaxConcurrent)
	}
	if cfg.InboundRatePerSec != 0 {
		t.Errorf("InboundRatePerSec = %d, want 0", cfg.InboundRatePerSec)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("VERIFY_TIMEOUT_MS", "5000")
	t.Setenv("RATE_LIMIT_DELAY_MS", "250")
	t.Setenv("BATCH_SIZE", "25")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.VerifyTimeoutMillis != 5000 {
		t.Errorf("VerifyTimeoutMillis = %d, want 5000", cfg.VerifyTimeoutMillis)
	}
	if cfg.RateLimitDelayMillis != 250 {
		t.Errorf("RateLimitDelayMillis = %d, want 250", cfg.RateLimitDelayMillis)
	}
	if cfg.BatchSize != 25 {
		t.Errorf("BatchSize = %d, want 25", cfg.BatchSize)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
}

func TestLoad_MissingUpstreamURL(t *testing.T) {
	t.Setenv("PORT", "3000")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing UPSTREAM_URL, got nil")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero timeout", key: "VERIFY_TIMEOUT_MS", value: "0"},
		{name: "negative delay", key: "RATE_LIMIT_DELAY_MS", value: "-1"},
		{name: "zero batch size", key: "BATCH_SIZE", value: "0"},
		{name: "port out of range", key: "PORT", value: "70000"},
		{name: "zero shutdown poll", key: "SHUTDOWN_POLL_MS", value: "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.key, tc.value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s, got nil", tc.key, tc.value)
			}
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VERIFY_TIMEOUT_MS", "1500")
	t.Setenv("RATE_LIMIT_DELAY_MS", "200")
	t.Setenv("SHUTDOWN_POLL_MS", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.VerifyTimeout().Milliseconds(); got != 1500 {
		t.Errorf("VerifyTimeout = %dms, want 1500ms", got)
	}
	if got := cfg.RateLimitDelay().Milliseconds(); got != 200 {
		t.Errorf("RateLimitDelay = %dms, want 200ms", got)
	}
	if got := cfg.ShutdownPollInterval().Milliseconds(); got != 50 {
		t.Errorf("ShutdownPollInterval = %dms, want 50ms", got)
	}
}
