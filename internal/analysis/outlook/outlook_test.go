package outlook

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"stock-outlook/internal/analysis/indicators"
	"stock-outlook/internal/analysis/strategy"
	"stock-outlook/internal/models"
)

func seriesFromCloses(closes []float64) models.PriceSeries {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(models.PriceSeries, len(closes))
	for i, c := range closes {
		series[i] = models.PriceBar{
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return series
}

func newTestEngine() *Engine {
	return NewEngine(strategy.NewRegistry())
}

// recoveryCloses builds a crash-then-stabilize-then-recover path: the long
// decline keeps the slower RSI periods oversold while the gentle 14-bar
// climb at the end lifts the close above MA5 and MA10 and into the upper
// Bollinger half.
func recoveryCloses() []float64 {
	closes := make([]float64, 0, 34)
	price := 150.0
	closes = append(closes, price)
	for i := 0; i < 13; i++ {
		price -= 4
		closes = append(closes, price)
	}
	for i := 0; i < 6; i++ {
		price -= 2
		closes = append(closes, price)
	}
	for i := 0; i < 14; i++ {
		price += 0.2
		closes = append(closes, price)
	}
	return closes
}

// oscillatingCloses alternates 100/101 for n bars.
func oscillatingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i%2)
	}
	return closes
}

func rampCloses(start, step float64, n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + step*float64(i)
	}
	return closes
}

func TestAnalyzeEmptySeries(t *testing.T) {
	result := newTestEngine().Analyze(context.Background(), nil, nil, "daily")

	if result.Outlook != models.OutlookNoData {
		t.Fatalf("outlook = %s, want %s", result.Outlook, models.OutlookNoData)
	}
	if result.HasClose() {
		t.Errorf("expected no latest close, got %v", result.LatestClose)
	}
	if !strings.Contains(result.Explanation, "NO_DATA because no price data") {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
	if len(result.History.Dates) != 0 {
		t.Errorf("expected empty history dates, got %d", len(result.History.Dates))
	}
	for _, key := range []string{"MA5", "MA200", "RSI6", "MACD", "KDJ_J", "BOLL_MIDDLE"} {
		v, ok := result.IndicatorValues[key]
		if !ok {
			t.Fatalf("missing display key %s on empty input", key)
		}
		if v.Valid() || v.Sentiment != models.SentimentUnavailable {
			t.Errorf("key %s: expected unavailable, got %+v", key, v)
		}
	}
	for _, key := range []string{"macd", "signal", "histogram"} {
		if _, ok := result.History.MACD[key]; !ok {
			t.Errorf("history skeleton missing MACD component %s", key)
		}
	}
}

func TestAnalyzeTooFewValidCloses(t *testing.T) {
	closes := []float64{math.NaN(), 10, math.NaN()}
	result := newTestEngine().Analyze(context.Background(), seriesFromCloses(closes), nil, "daily")

	if result.Outlook != models.OutlookDataFormatError {
		t.Fatalf("outlook = %s, want %s", result.Outlook, models.OutlookDataFormatError)
	}
	if !strings.Contains(result.Explanation, "fewer than two valid close prices") {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
}

func TestAnalyzeNullLatestClose(t *testing.T) {
	closes := rampCloses(100, 1, 30)
	closes[len(closes)-1] = math.NaN()
	result := newTestEngine().Analyze(context.Background(), seriesFromCloses(closes), nil, "daily")

	if result.Outlook != models.OutlookDataFormatError {
		t.Fatalf("outlook = %s, want %s", result.Outlook, models.OutlookDataFormatError)
	}
	if !strings.Contains(result.Explanation, "latest closing price is null") {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
	if result.HasClose() {
		t.Errorf("expected no latest close, got %v", result.LatestClose)
	}
}

func TestAnalyzeInfiniteCloseRejected(t *testing.T) {
	closes := rampCloses(100, 1, 30)
	closes[3] = math.Inf(1)
	result := newTestEngine().Analyze(context.Background(), seriesFromCloses(closes), nil, "daily")

	if result.Outlook != models.OutlookDataFormatError {
		t.Fatalf("outlook = %s, want %s", result.Outlook, models.OutlookDataFormatError)
	}
	if !strings.Contains(result.Explanation, "finite numbers") {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
}

func TestAnalyzeUnknownTimeframe(t *testing.T) {
	series := seriesFromCloses(rampCloses(100, 0.5, 34))
	result := newTestEngine().Analyze(context.Background(), series, nil, "bogus")

	if result.Outlook != models.OutlookConfigError {
		t.Fatalf("outlook = %s, want %s", result.Outlook, models.OutlookConfigError)
	}
	if !strings.Contains(result.Explanation, `"bogus"`) {
		t.Errorf("explanation should name the timeframe: %q", result.Explanation)
	}
	// Validation had already extracted the latest close by this point.
	if !result.HasClose() {
		t.Error("expected latest close to be reported on a config error")
	}
	if result.Config != nil {
		t.Error("expected no config on an unknown timeframe")
	}
}

func TestAnalyzeDailyInsufficientData(t *testing.T) {
	series := seriesFromCloses(rampCloses(100, 1, 10))
	result := newTestEngine().Analyze(context.Background(), series, nil, "daily")

	if result.Outlook != models.OutlookInsufficientData {
		t.Fatalf("outlook = %s, want %s", result.Outlook, models.OutlookInsufficientData)
	}
	for _, missing := range []string{"RSI12", "RSI24", "BOLL_20_2.0"} {
		if !strings.Contains(result.Explanation, missing) {
			t.Errorf("explanation should name %s: %q", missing, result.Explanation)
		}
	}

	// Evidence is retained: the short-window values that could be computed
	// are still in the result.
	for _, key := range []string{"MA5", "MA10", "RSI6"} {
		v, ok := result.IndicatorValues[key]
		if !ok || !v.Valid() {
			t.Errorf("expected computed value for %s, got %+v (present=%v)", key, v, ok)
		}
	}
	if v := result.IndicatorValues["RSI24"]; v.Valid() {
		t.Errorf("RSI24 should be unavailable on 10 bars, got %v", v.Value)
	}
	if len(result.History.Dates) != 10 {
		t.Errorf("history should cover the whole short series, got %d dates", len(result.History.Dates))
	}
	if result.Config == nil || result.Config.Timeframe != models.TimeframeDaily {
		t.Errorf("expected daily config on the result, got %+v", result.Config)
	}
}

func TestAnalyzeDailyBullishRecovery(t *testing.T) {
	series := seriesFromCloses(recoveryCloses())
	result := newTestEngine().Analyze(context.Background(), series, nil, "daily")

	if result.Outlook != models.OutlookBullish {
		t.Fatalf("outlook = %s, want %s (explanation: %s)", result.Outlook, models.OutlookBullish, result.Explanation)
	}
	if !result.Outlook.IsSignal() {
		t.Error("BULLISH should be a signal outlook")
	}
	for _, fragment := range []string{"bullish stack", "periods oversold", "upper half"} {
		if !strings.Contains(result.Explanation, fragment) {
			t.Errorf("explanation missing %q: %q", fragment, result.Explanation)
		}
	}

	if v := result.IndicatorValues["MA5"]; v.Sentiment != models.SentimentBullish {
		t.Errorf("MA5 sentiment = %s, want %s", v.Sentiment, models.SentimentBullish)
	}
	if v := result.IndicatorValues["RSI12"]; v.Sentiment != models.SentimentOversold {
		t.Errorf("RSI12 sentiment = %s (value %.2f), want %s", v.Sentiment, v.Value, models.SentimentOversold)
	}
	if v := result.IndicatorValues["BOLL_MIDDLE"]; v.Sentiment != models.SentimentUpperHalf {
		t.Errorf("BOLL_MIDDLE sentiment = %s, want %s", v.Sentiment, models.SentimentUpperHalf)
	}
}

func TestAnalyzeDailySqueezeForcesNeutralWait(t *testing.T) {
	series := seriesFromCloses(rampCloses(100, 0, 34))
	result := newTestEngine().Analyze(context.Background(), series, nil, "daily")

	if result.Outlook != models.OutlookNeutralWait {
		t.Fatalf("outlook = %s, want %s (explanation: %s)", result.Outlook, models.OutlookNeutralWait, result.Explanation)
	}
	if !strings.Contains(result.Explanation, "squeeze") {
		t.Errorf("explanation should mention the squeeze: %q", result.Explanation)
	}

	// Flat input pins RSI to 0, which reads as oversold; the squeeze still
	// suspends the direction call.
	if v := result.IndicatorValues["RSI6"]; v.Value != 0 || v.Sentiment != models.SentimentOversold {
		t.Errorf("RSI6 on flat input = %+v, want 0/OVERSOLD", v)
	}
	if v := result.IndicatorValues["BOLL_MIDDLE"]; v.Sentiment != models.SentimentSqueeze {
		t.Errorf("BOLL_MIDDLE sentiment = %s, want %s", v.Sentiment, models.SentimentSqueeze)
	}
}

func TestAnalyzeDailyBreakoutForcesBullish(t *testing.T) {
	closes := oscillatingCloses(34)
	closes[33] = 115
	series := seriesFromCloses(closes)
	result := newTestEngine().Analyze(context.Background(), series, nil, "daily")

	if result.Outlook != models.OutlookBullish {
		t.Fatalf("outlook = %s, want %s (explanation: %s)", result.Outlook, models.OutlookBullish, result.Explanation)
	}
	if !strings.Contains(result.Explanation, "breakout") {
		t.Errorf("explanation should mention the breakout: %q", result.Explanation)
	}
	if v := result.IndicatorValues["BOLL_UPPER"]; v.Sentiment != models.SentimentBreakoutUp {
		t.Errorf("BOLL_UPPER sentiment = %s, want %s", v.Sentiment, models.SentimentBreakoutUp)
	}
}

func TestAnalyzeDailyBreakdownForcesBearish(t *testing.T) {
	closes := oscillatingCloses(34)
	closes[33] = 85
	series := seriesFromCloses(closes)
	result := newTestEngine().Analyze(context.Background(), series, nil, "daily")

	if result.Outlook != models.OutlookBearish {
		t.Fatalf("outlook = %s, want %s (explanation: %s)", result.Outlook, models.OutlookBearish, result.Explanation)
	}
	if !strings.Contains(result.Explanation, "breakdown") {
		t.Errorf("explanation should mention the breakdown: %q", result.Explanation)
	}
}

func TestAnalyzeWeeklySingleRSIDecides(t *testing.T) {
	tests := []struct {
		name    string
		closes  []float64
		want    models.Outlook
		mention string
	}{
		{
			name:    "steady decline reads oversold",
			closes:  rampCloses(200, -2, 30),
			want:    models.OutlookBullish,
			mention: "oversold",
		},
		{
			name:    "steady climb reads overbought",
			closes:  rampCloses(100, 2, 30),
			want:    models.OutlookBearish,
			mention: "overbought",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newTestEngine().Analyze(context.Background(), seriesFromCloses(tt.closes), nil, "weekly")
			if result.Outlook != tt.want {
				t.Fatalf("outlook = %s, want %s (explanation: %s)", result.Outlook, tt.want, result.Explanation)
			}
			if !strings.Contains(result.Explanation, tt.mention) {
				t.Errorf("explanation missing %q: %q", tt.mention, result.Explanation)
			}
		})
	}
}

func TestAnalyzeMonthlyNeutralBetweenBounds(t *testing.T) {
	series := seriesFromCloses(oscillatingCloses(70))
	result := newTestEngine().Analyze(context.Background(), series, nil, "monthly")

	if result.Outlook != models.OutlookNeutralWait {
		t.Fatalf("outlook = %s, want %s (explanation: %s)", result.Outlook, models.OutlookNeutralWait, result.Explanation)
	}
	if !strings.Contains(result.Explanation, "RSI14") {
		t.Errorf("explanation should carry the RSI14 reading: %q", result.Explanation)
	}
}

func TestAnalyzeTimeframeKeyNormalized(t *testing.T) {
	series := seriesFromCloses(rampCloses(100, -2, 30))
	result := newTestEngine().Analyze(context.Background(), series, nil, "  Weekly ")

	if result.Outlook == models.OutlookConfigError {
		t.Fatalf("timeframe key with case/spacing should resolve, got %s", result.Outlook)
	}
	if result.Timeframe != models.TimeframeWeekly {
		t.Errorf("timeframe = %s, want %s", result.Timeframe, models.TimeframeWeekly)
	}
}

func TestAnalyzeHistoryTrailingWindow(t *testing.T) {
	series := seriesFromCloses(rampCloses(100, 1, 25))
	result := newTestEngine().Analyze(context.Background(), series, nil, "daily")

	h := result.History
	if len(h.Dates) != historyWindow {
		t.Fatalf("history dates = %d, want %d", len(h.Dates), historyWindow)
	}
	wantDates := series.Dates()[5:]
	for i, d := range h.Dates {
		if !d.Equal(wantDates[i]) {
			t.Fatalf("history date %d = %v, want %v", i, d, wantDates[i])
		}
	}
	if len(h.Bars) != historyWindow || h.Bars[0].Close != series[5].Close {
		t.Errorf("history bars should mirror the last %d input bars", historyWindow)
	}

	// The report path must carry the same numbers the decision saw, so the
	// trailing MA5 slice has to match a direct calculation bar for bar.
	direct, err := indicators.NewMA(5).Calculate(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := h.MA["MA5"]
	if len(got) != historyWindow {
		t.Fatalf("MA5 history length = %d, want %d", len(got), historyWindow)
	}
	for i, want := range direct[5:] {
		if math.IsNaN(want) != math.IsNaN(got[i]) || (!math.IsNaN(want) && math.Abs(want-got[i]) > 1e-12) {
			t.Errorf("MA5 history[%d] = %v, want %v", i, got[i], want)
		}
	}

	for _, component := range []string{"upper", "middle", "lower", "bandwidth"} {
		if len(h.Bollinger[component]) != historyWindow {
			t.Errorf("bollinger %s history length = %d, want %d", component, len(h.Bollinger[component]), historyWindow)
		}
	}
}

func TestAnalyzeFundFlowIsAdvisoryOnly(t *testing.T) {
	series := seriesFromCloses(rampCloses(100, 1, 34))
	flow := &models.FundFlow{
		Date:          time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
		MainInflow:    1.25e7,
		MainInflowPct: 3.4,
	}

	with := newTestEngine().Analyze(context.Background(), series, flow, "daily")
	without := newTestEngine().Analyze(context.Background(), series, nil, "daily")

	if with.FundFlow != flow {
		t.Error("fund flow record should pass through to the result")
	}
	if with.Outlook != without.Outlook || with.Explanation != without.Explanation {
		t.Errorf("fund flow must not influence the outlook: %s vs %s", with.Outlook, without.Outlook)
	}
}

func TestAnalyzeRepeatedCallsAgree(t *testing.T) {
	series := seriesFromCloses(recoveryCloses())
	engine := newTestEngine()

	first := engine.Analyze(context.Background(), series, nil, "daily")
	second := engine.Analyze(context.Background(), series, nil, "daily")

	if first.Outlook != second.Outlook || first.Explanation != second.Explanation {
		t.Fatalf("analysis is not deterministic: %s vs %s", first.Explanation, second.Explanation)
	}
	if first.LatestClose != second.LatestClose {
		t.Errorf("latest close differs between runs: %v vs %v", first.LatestClose, second.LatestClose)
	}
}
