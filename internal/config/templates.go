package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Stock Outlook Configuration

[general]
# Default analysis timeframe: "daily", "weekly" or "monthly"
default_timeframe = "daily"
# Bars fetched per analysis (the trailing report window is 20 bars;
# the 200-day display average needs at least 200)
history_bars = 250

[feed]
# Market-data provider: "csv" or "yahoo"
provider = "csv"
# Directory with per-symbol CSV bar files (<SYMBOL>.csv)
csv_dir = ""
# Request timeout for remote providers
timeout = "15s"
# Retry attempts for remote providers
max_retries = 3

[store]
# Persist analysis runs to the local database
enabled = true
# Database path (defaults under the config directory)
path = ""

[advisor]
# Enable the plain-language commentary (needs OPENAI_API_KEY in the
# environment or a .env file)
enabled = false
model = "gpt-4o"
max_tokens = 512
temperature = 0.7

[watch]
# Cron schedule for watchlist re-analysis (minute hour dom month dow)
schedule = "0 18 * * 1-5"
# Watchlist file (YAML: entries of symbol + timeframe)
watchlist = ""
# Terminal bell + desktop notification when an outlook changes
notify = false

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log to the console
console = true
# Log to a rotated file
file = true
# Log file path (defaults under the config directory)
file_path = ""

[ui]
# Enable colored output
color_enabled = true
# Date format for tables
date_format = "2006-01-02"
`

const watchlistTemplate = `# Stock Outlook watchlist
# One entry per symbol; timeframe defaults to daily when omitted.
symbols:
  - symbol: "600519"
    timeframe: daily
  - symbol: "000001"
    timeframe: weekly
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}

// CreateTemplateWatchlist writes a starter watchlist if none exists yet.
func CreateTemplateWatchlist(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating watchlist directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(watchlistTemplate), 0644); err != nil {
		return fmt.Errorf("writing watchlist template: %w", err)
	}
	return nil
}
