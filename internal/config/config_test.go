package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		General: GeneralConfig{DefaultTimeframe: "daily", HistoryBars: 250},
		Feed:    FeedConfig{Provider: "csv", Timeout: 15 * time.Second, MaxRetries: 3},
		Advisor: AdvisorConfig{Model: "gpt-4o", MaxTokens: 512, Temperature: 0.7},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults pass",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown timeframe",
			mutate:  func(c *Config) { c.General.DefaultTimeframe = "hourly" },
			wantErr: "default_timeframe",
		},
		{
			name:    "zero history bars",
			mutate:  func(c *Config) { c.General.HistoryBars = 0 },
			wantErr: "history_bars",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Feed.Provider = "bloomberg" },
			wantErr: "feed provider",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.Feed.MaxRetries = -1 },
			wantErr: "max_retries",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Advisor.Temperature = 3.5 },
			wantErr: "temperature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("STOCK_OUTLOOK_TIMEFRAME", "weekly")
	t.Setenv("STOCK_OUTLOOK_PROVIDER", "yahoo")
	t.Setenv("STOCK_OUTLOOK_LOG_LEVEL", "debug")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := validConfig()
	applyEnvOverrides(cfg)

	if cfg.General.DefaultTimeframe != "weekly" {
		t.Errorf("timeframe = %s, want weekly", cfg.General.DefaultTimeframe)
	}
	if cfg.Feed.Provider != "yahoo" {
		t.Errorf("provider = %s, want yahoo", cfg.Feed.Provider)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %s, want debug", cfg.Logging.Level)
	}
	if cfg.Credentials.OpenAIAPIKey != "sk-test" {
		t.Errorf("api key not picked up from environment")
	}
}

func TestAdvisorReady(t *testing.T) {
	cfg := validConfig()
	if cfg.AdvisorReady() {
		t.Error("advisor should not be ready while disabled")
	}
	cfg.Advisor.Enabled = true
	if cfg.AdvisorReady() {
		t.Error("advisor should not be ready without an API key")
	}
	cfg.Credentials.OpenAIAPIKey = "sk-test"
	if !cfg.AdvisorReady() {
		t.Error("advisor should be ready with key and enabled flag")
	}
}
