package feed

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "stock-outlook/internal/errors"
	"stock-outlook/internal/models"
)

// WatchEntry is one symbol/timeframe pair in a watchlist file.
type WatchEntry struct {
	Symbol    string `yaml:"symbol"`
	Timeframe string `yaml:"timeframe"`
}

// Watchlist is the parsed contents of a watchlist YAML file.
type Watchlist struct {
	Symbols []WatchEntry `yaml:"symbols"`
}

// LoadWatchlist reads and parses a watchlist YAML file.
func LoadWatchlist(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "read watchlist %s", path)
	}
	wl, err := ParseWatchlist(data)
	if err != nil {
		return nil, apperrors.Wrapf(err, "watchlist %s", path)
	}
	return wl, nil
}

// ParseWatchlist parses watchlist YAML. Entries are trimmed, blank
// symbols dropped, and a missing timeframe defaults to daily.
func ParseWatchlist(data []byte) (*Watchlist, error) {
	var wl Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, apperrors.Wrap(err, "parse watchlist")
	}

	out := make([]WatchEntry, 0, len(wl.Symbols))
	for _, e := range wl.Symbols {
		e.Symbol = strings.TrimSpace(e.Symbol)
		e.Timeframe = strings.ToLower(strings.TrimSpace(e.Timeframe))
		if e.Symbol == "" {
			continue
		}
		if e.Timeframe == "" {
			e.Timeframe = string(models.TimeframeDaily)
		}
		out = append(out, e)
	}
	wl.Symbols = out
	return &wl, nil
}
