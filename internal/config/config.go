// Package config provides configuration management for the outlook CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	General     GeneralConfig `mapstructure:"general"`
	Feed        FeedConfig    `mapstructure:"feed"`
	Store       StoreConfig   `mapstructure:"store"`
	Advisor     AdvisorConfig `mapstructure:"advisor"`
	Watch       WatchConfig   `mapstructure:"watch"`
	Logging     LoggingConfig `mapstructure:"logging"`
	UI          UIConfig      `mapstructure:"ui"`
	Credentials Credentials   `mapstructure:"-"` // Loaded from the environment
}

// GeneralConfig holds analysis defaults.
type GeneralConfig struct {
	DefaultTimeframe string `mapstructure:"default_timeframe"` // daily, weekly, monthly
	HistoryBars      int    `mapstructure:"history_bars"`      // bars fetched per analysis
}

// FeedConfig holds market-data provider configuration.
type FeedConfig struct {
	Provider   string        `mapstructure:"provider"` // "csv" or "yahoo"
	CSVDir     string        `mapstructure:"csv_dir"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// StoreConfig holds the analysis-run log configuration.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// AdvisorConfig holds the optional narrative-advisor configuration.
type AdvisorConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// WatchConfig holds the watch-command configuration.
type WatchConfig struct {
	Schedule  string `mapstructure:"schedule"` // cron spec
	Watchlist string `mapstructure:"watchlist"`
	Notify    bool   `mapstructure:"notify"` // bell + desktop notification on outlook change
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Console  bool   `mapstructure:"console"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// Credentials holds API credentials, sourced from the environment or a
// .env file rather than the TOML config.
type Credentials struct {
	OpenAIAPIKey string
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/stock-outlook"
	}
	return filepath.Join(home, ".config", "stock-outlook")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env is optional; when present it feeds the credential lookups below.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir, name)
		}
		return err
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("general.default_timeframe", "daily")
	v.SetDefault("general.history_bars", 250)

	v.SetDefault("feed.provider", "csv")
	v.SetDefault("feed.csv_dir", filepath.Join(configDir, "data"))
	v.SetDefault("feed.timeout", 15*time.Second)
	v.SetDefault("feed.max_retries", 3)

	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", filepath.Join(configDir, "outlook.db"))

	v.SetDefault("advisor.enabled", false)
	v.SetDefault("advisor.model", "gpt-4o")
	v.SetDefault("advisor.max_tokens", 512)
	v.SetDefault("advisor.temperature", 0.7)

	v.SetDefault("watch.schedule", "0 18 * * 1-5")
	v.SetDefault("watch.watchlist", filepath.Join(configDir, "watchlist.yaml"))
	v.SetDefault("watch.notify", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "outlook.log"))

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "2006-01-02")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STOCK_OUTLOOK_TIMEFRAME"); v != "" {
		cfg.General.DefaultTimeframe = v
	}
	if v := os.Getenv("STOCK_OUTLOOK_PROVIDER"); v != "" {
		cfg.Feed.Provider = v
	}
	if v := os.Getenv("STOCK_OUTLOOK_CSV_DIR"); v != "" {
		cfg.Feed.CSVDir = v
	}
	if v := os.Getenv("STOCK_OUTLOOK_DB"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("STOCK_OUTLOOK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// OpenAI credentials
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAIAPIKey = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.General.DefaultTimeframe {
	case "daily", "weekly", "monthly":
	default:
		return fmt.Errorf("invalid default_timeframe: %s (must be 'daily', 'weekly' or 'monthly')", c.General.DefaultTimeframe)
	}
	if c.General.HistoryBars <= 0 {
		return fmt.Errorf("history_bars must be positive")
	}

	switch c.Feed.Provider {
	case "csv", "yahoo":
	default:
		return fmt.Errorf("invalid feed provider: %s (must be 'csv' or 'yahoo')", c.Feed.Provider)
	}
	if c.Feed.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}

	if c.Advisor.Temperature < 0 || c.Advisor.Temperature > 2 {
		return fmt.Errorf("advisor temperature must be between 0 and 2")
	}
	if c.Advisor.MaxTokens < 0 {
		return fmt.Errorf("advisor max_tokens must be non-negative")
	}

	return nil
}

// AdvisorReady returns true when the narrative advisor can actually run:
// enabled in config and an API key is present.
func (c *Config) AdvisorReady() bool {
	return c.Advisor.Enabled && c.Credentials.OpenAIAPIKey != ""
}
