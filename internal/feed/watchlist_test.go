package feed

import (
	"path/filepath"
	"testing"

	"stock-outlook/internal/config"
)

func TestParseWatchlist(t *testing.T) {
	data := []byte(`symbols:
  - symbol: "600519"
    timeframe: daily
  - symbol: " 000001 "
    timeframe: " Weekly "
  - symbol: AAPL
  - symbol: ""
    timeframe: monthly
`)

	wl, err := ParseWatchlist(data)
	if err != nil {
		t.Fatalf("ParseWatchlist: %v", err)
	}
	if len(wl.Symbols) != 3 {
		t.Fatalf("len(symbols) = %d, want 3 (blank symbol dropped)", len(wl.Symbols))
	}

	want := []WatchEntry{
		{Symbol: "600519", Timeframe: "daily"},
		{Symbol: "000001", Timeframe: "weekly"},
		{Symbol: "AAPL", Timeframe: "daily"},
	}
	for i, e := range want {
		if wl.Symbols[i] != e {
			t.Errorf("symbols[%d] = %+v, want %+v", i, wl.Symbols[i], e)
		}
	}
}

func TestParseWatchlistRejectsMalformedYAML(t *testing.T) {
	if _, err := ParseWatchlist([]byte("symbols: [unclosed")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadWatchlistMissingFile(t *testing.T) {
	if _, err := LoadWatchlist(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatal("expected error for missing watchlist")
	}
}

func TestLoadWatchlistTemplateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	if err := config.CreateTemplateWatchlist(path); err != nil {
		t.Fatalf("CreateTemplateWatchlist: %v", err)
	}

	wl, err := LoadWatchlist(path)
	if err != nil {
		t.Fatalf("LoadWatchlist: %v", err)
	}
	if len(wl.Symbols) != 2 {
		t.Fatalf("len(symbols) = %d, want 2", len(wl.Symbols))
	}
	if wl.Symbols[0].Symbol != "600519" || wl.Symbols[0].Timeframe != "daily" {
		t.Errorf("symbols[0] = %+v", wl.Symbols[0])
	}
	if wl.Symbols[1].Symbol != "000001" || wl.Symbols[1].Timeframe != "weekly" {
		t.Errorf("symbols[1] = %+v", wl.Symbols[1])
	}
}
