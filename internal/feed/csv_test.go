package feed

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "stock-outlook/internal/errors"
)

const barHeader = "date,open,high,low,close,volume,turnover,pct_chg\n"

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestCSVHistoryParsesBars(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600519.csv", barHeader+
		"2024-01-02,10.0,10.5,9.8,10.2,1000,10400.0,1.5\n"+
		"2024-01-03,10.2,10.8,10.1,10.6,1200,12600.0,3.9\n"+
		"2024-01-04,10.6,11.0,10.3,10.9,1500,16200.0,2.8\n")

	p := NewCSVProvider(dir)
	series, err := p.History(context.Background(), "600519", "daily", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("len(series) = %d, want 3", len(series))
	}

	first := series[0]
	if want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC); !first.Date.Equal(want) {
		t.Errorf("first date = %v, want %v", first.Date, want)
	}
	if first.Close != 10.2 {
		t.Errorf("first close = %v, want 10.2", first.Close)
	}
	if first.Volume != 1000 {
		t.Errorf("first volume = %d, want 1000", first.Volume)
	}
	if first.Turnover != 10400.0 {
		t.Errorf("first turnover = %v, want 10400.0", first.Turnover)
	}
	if last := series[2]; last.ChangePercent != 2.8 {
		t.Errorf("last pct_chg = %v, want 2.8", last.ChangePercent)
	}
}

func TestCSVHistoryBlankCloseBecomesNull(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600519.csv", barHeader+
		"2024-01-02,10.0,10.5,9.8,10.2,1000,10400.0,1.5\n"+
		"2024-01-03,10.2,10.8,10.1,,1200,,\n"+
		"2024-01-04,10.6,11.0,10.3,10.9,1500,16200.0,2.8\n")

	p := NewCSVProvider(dir)
	series, err := p.History(context.Background(), "600519", "daily", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("blank close must not drop the row: len = %d, want 3", len(series))
	}

	mid := series[1]
	if !math.IsNaN(mid.Close) {
		t.Errorf("blank close = %v, want NaN", mid.Close)
	}
	if mid.HasClose() {
		t.Error("HasClose() = true for a null bar")
	}
	if !math.IsNaN(mid.Turnover) || !math.IsNaN(mid.ChangePercent) {
		t.Errorf("blank turnover/pct_chg = %v/%v, want NaN", mid.Turnover, mid.ChangePercent)
	}
	if mid.Open != 10.2 {
		t.Errorf("open on the null bar = %v, want 10.2", mid.Open)
	}
}

func TestCSVHistorySortsRowsByDate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "000001.csv", barHeader+
		"2024-01-04,10.6,11.0,10.3,10.9,1500,16200.0,2.8\n"+
		"2024-01-02,10.0,10.5,9.8,10.2,1000,10400.0,1.5\n"+
		"2024-01-03,10.2,10.8,10.1,10.6,1200,12600.0,3.9\n")

	p := NewCSVProvider(dir)
	series, err := p.History(context.Background(), "000001", "daily", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	for i := 1; i < len(series); i++ {
		if !series[i-1].Date.Before(series[i].Date) {
			t.Fatalf("dates out of order at %d: %v >= %v", i, series[i-1].Date, series[i].Date)
		}
	}
	if series[0].Close != 10.2 {
		t.Errorf("oldest close = %v, want 10.2", series[0].Close)
	}
}

func TestCSVHistoryTrimsToLookback(t *testing.T) {
	dir := t.TempDir()
	content := barHeader
	for day := 2; day <= 6; day++ {
		content += time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02") +
			",10,11,9,10.5,1000,10500,0.1\n"
	}
	writeFile(t, dir, "IBM.csv", content)

	p := NewCSVProvider(dir)
	series, err := p.History(context.Background(), "IBM", "daily", 3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("len(series) = %d, want 3", len(series))
	}
	if want := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC); !series[0].Date.Equal(want) {
		t.Errorf("trim kept %v first, want %v", series[0].Date, want)
	}
}

func TestCSVHistoryMissingFile(t *testing.T) {
	p := NewCSVProvider(t.TempDir())
	_, err := p.History(context.Background(), "NOPE", "daily", 10)
	if err == nil {
		t.Fatal("expected error for missing bar file")
	}
	if !apperrors.Is(err, apperrors.ErrSymbolNotFound) {
		t.Errorf("error = %v, want ErrSymbolNotFound in chain", err)
	}
	var perr *apperrors.ProviderError
	if !apperrors.As(err, &perr) || perr.Provider != "csv" {
		t.Errorf("error = %v, want ProviderError from csv", err)
	}
}

func TestCSVHistoryUnknownTimeframe(t *testing.T) {
	p := NewCSVProvider(t.TempDir())
	_, err := p.History(context.Background(), "600519", "hourly", 10)
	if !apperrors.Is(err, apperrors.ErrUnknownTimeframe) {
		t.Errorf("error = %v, want ErrUnknownTimeframe in chain", err)
	}
}

func TestCSVHistoryTimeframeFileNaming(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600519_weekly.csv", barHeader+
		"2024-01-05,10.0,11.0,9.8,10.9,5000,54500.0,9.0\n")

	p := NewCSVProvider(dir)
	series, err := p.History(context.Background(), "600519", " Weekly ", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(series) != 1 || series[0].Close != 10.9 {
		t.Fatalf("weekly file not resolved: %+v", series)
	}
}

func TestCSVFundFlowMissingIsNil(t *testing.T) {
	p := NewCSVProvider(t.TempDir())
	flow, err := p.FundFlow(context.Background(), "600519")
	if err != nil {
		t.Fatalf("FundFlow: %v", err)
	}
	if flow != nil {
		t.Errorf("flow = %+v, want nil without a sidecar file", flow)
	}
}

func TestCSVFundFlowReturnsLatestRecord(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600519_flow.csv",
		"date,main_inflow,main_inflow_pct\n"+
			"2024-01-03,250000.0,4.2\n"+
			"2024-01-02,-120000.0,-2.1\n")

	p := NewCSVProvider(dir)
	flow, err := p.FundFlow(context.Background(), "600519")
	if err != nil {
		t.Fatalf("FundFlow: %v", err)
	}
	if flow == nil {
		t.Fatal("flow = nil, want latest record")
	}
	if want := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC); !flow.Date.Equal(want) {
		t.Errorf("flow date = %v, want %v", flow.Date, want)
	}
	if flow.MainInflow != 250000.0 || flow.MainInflowPct != 4.2 {
		t.Errorf("flow = %+v, want 250000.0 / 4.2", flow)
	}
}

func TestCSVHistoryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewCSVProvider(t.TempDir())
	if _, err := p.History(ctx, "600519", "daily", 10); !apperrors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
