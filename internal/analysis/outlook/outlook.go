// Package outlook classifies a price series into a trading outlook by
// combining moving-average, RSI and Bollinger Band readings under the
// timeframe's strategy configuration. Error conditions are reported as
// outlook classifications rather than returned errors, so a batch over
// many symbols always yields one result per symbol.
package outlook

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"stock-outlook/internal/analysis/indicators"
	"stock-outlook/internal/analysis/strategy"
	"stock-outlook/internal/models"
)

// indicatorWorkers is the worker-pool size for one analysis run.
const indicatorWorkers = 4

// Engine produces an AnalysisResult for a price series and timeframe.
// It holds no per-call state; one Engine may serve concurrent callers.
type Engine struct {
	registry *strategy.Registry
}

// NewEngine creates an analysis engine backed by the given strategy registry.
func NewEngine(registry *strategy.Registry) *Engine {
	return &Engine{registry: registry}
}

// Analyze runs the full pipeline: validation, indicator computation,
// completeness check and the timeframe's decision rules. The fund flow
// record is advisory display data and never influences the outlook.
// Every indicator series is computed exactly once; the latest values and
// the historical bundle both derive from that single computation.
func (e *Engine) Analyze(ctx context.Context, series models.PriceSeries, flow *models.FundFlow, timeframe string) *models.AnalysisResult {
	result := &models.AnalysisResult{
		Timeframe:       models.Timeframe(strings.ToLower(strings.TrimSpace(timeframe))),
		LatestClose:     math.NaN(),
		IndicatorValues: valueSkeleton(),
		History:         historySkeleton(),
		FundFlow:        flow,
		GeneratedAt:     time.Now(),
	}

	if series.Len() == 0 {
		result.Outlook = models.OutlookNoData
		result.Explanation = "Outlook: NO_DATA because no price data was provided or it was empty."
		return result
	}

	closes := series.Closes()
	for _, c := range closes {
		if math.IsInf(c, 0) {
			result.Outlook = models.OutlookDataFormatError
			result.Explanation = "Outlook: DATA_FORMAT_ERROR because close prices must be finite numbers or null."
			return result
		}
	}
	if series.ValidCloses() < 2 {
		result.Outlook = models.OutlookDataFormatError
		result.Explanation = "Outlook: DATA_FORMAT_ERROR because fewer than two valid close prices were found."
		return result
	}

	latest := closes[len(closes)-1]
	if math.IsNaN(latest) {
		result.Outlook = models.OutlookDataFormatError
		result.Explanation = "Outlook: DATA_FORMAT_ERROR because the latest closing price is null."
		return result
	}
	result.LatestClose = latest

	cfg, err := e.registry.Lookup(timeframe)
	if err != nil {
		result.Outlook = models.OutlookConfigError
		result.Explanation = fmt.Sprintf("Outlook: CONFIG_ERROR because timeframe %q has no strategy configuration.", timeframe)
		return result
	}
	result.Timeframe = cfg.Timeframe
	result.Config = &cfg

	snap, err := e.compute(ctx, series, cfg, latest)
	if err != nil {
		result.Outlook = models.OutlookIndicatorError
		result.Explanation = fmt.Sprintf("Outlook: INDICATOR_ERROR during calculation: %v.", err)
		return result
	}
	result.IndicatorValues = snap.indicatorValues()
	result.History = snap.history(series)

	if missing := snap.missingEssentials(); len(missing) > 0 {
		result.Outlook = models.OutlookInsufficientData
		result.Explanation = fmt.Sprintf("Outlook: INSUFFICIENT_DATA because essential indicators have no value at the latest bar: %s.",
			strings.Join(missing, ", "))
		return result
	}

	maVerdict, maClause := evalMAStack(snap)
	rsiVerdict, rsiClause := evalRSI(snap)
	band, bandClause := evalBand(snap)

	if cfg.RSI.Mode == models.RSISingle {
		result.Outlook = classifySingleRSI(rsiVerdict)
	} else {
		result.Outlook = classifyDaily(maVerdict, rsiVerdict, band)
	}
	result.Explanation = fmt.Sprintf("Outlook: %s because %s.", result.Outlook,
		strings.Join([]string{maClause, rsiClause, bandClause}, "; "))
	return result
}

// snapshot carries one run's computed series plus the lookup keys needed to
// read them back out. All latest values and history slices come from here.
type snapshot struct {
	cfg      models.StrategyConfig
	close    float64
	single   map[string][]float64
	multi    map[string]map[string][]float64
	maNames  map[int]string
	rsiNames map[int]string
	macdName string
	kdjName  string
	bollName string
}

// compute registers the display set plus the strategy-essential set and runs
// them through the worker-pool engine. Registration is keyed by indicator
// name, so a window that is both display and essential is computed once.
func (e *Engine) compute(ctx context.Context, series models.PriceSeries, cfg models.StrategyConfig, latest float64) (*snapshot, error) {
	eng := indicators.NewEngine(indicatorWorkers)
	snap := &snapshot{
		cfg:      cfg,
		close:    latest,
		maNames:  make(map[int]string),
		rsiNames: make(map[int]string),
	}

	for _, w := range unionInts(strategy.DisplayMAWindows, cfg.MAWindows) {
		ind := indicators.NewMA(w)
		snap.maNames[w] = ind.Name()
		eng.Register(ind)
	}
	for _, p := range unionInts(strategy.DisplayRSIPeriods, cfg.RSI.Periods()) {
		ind := indicators.NewRSI(p)
		snap.rsiNames[p] = ind.Name()
		eng.Register(ind)
	}

	macd := indicators.NewMACD(strategy.MACDFastPeriod, strategy.MACDSlowPeriod, strategy.MACDSignalPeriod)
	snap.macdName = macd.Name()
	eng.RegisterMulti(macd)

	kdj := indicators.NewKDJ(strategy.KDJPeriod, strategy.KDJSlowK, strategy.KDJSlowD)
	snap.kdjName = kdj.Name()
	eng.RegisterMulti(kdj)

	if cfg.Bollinger != nil {
		boll := indicators.NewBollingerBands(cfg.Bollinger.Period, cfg.Bollinger.Multiplier)
		snap.bollName = boll.Name()
		eng.RegisterMulti(boll)
	}

	single, multi, err := eng.CalculateAll(ctx, series)
	if err != nil {
		return nil, err
	}
	snap.single = single
	snap.multi = multi
	return snap, nil
}

// latestOf returns the final entry of a series, NaN when absent.
func latestOf(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

func (s *snapshot) latestSingle(name string) float64 {
	return latestOf(s.single[name])
}

func (s *snapshot) latestComponent(name, component string) float64 {
	return latestOf(s.multi[name][component])
}

func (s *snapshot) latestMA(window int) float64 {
	return s.latestSingle(s.maNames[window])
}

func (s *snapshot) latestRSI(period int) float64 {
	return s.latestSingle(s.rsiNames[period])
}

// essentialWindows returns the configured MA windows, shortest first.
func (s *snapshot) essentialWindows() []int {
	windows := append([]int(nil), s.cfg.MAWindows...)
	sort.Ints(windows)
	return windows
}

// missingEssentials lists every strategy-essential indicator with no value
// at the latest bar, in a fixed order: MA windows, RSI periods, Bollinger.
func (s *snapshot) missingEssentials() []string {
	var missing []string
	for _, w := range s.essentialWindows() {
		if math.IsNaN(s.latestMA(w)) {
			missing = append(missing, s.maNames[w])
		}
	}
	for _, p := range s.cfg.RSI.Periods() {
		if math.IsNaN(s.latestRSI(p)) {
			missing = append(missing, s.rsiNames[p])
		}
	}
	if s.bollName != "" && math.IsNaN(s.latestComponent(s.bollName, "middle")) {
		missing = append(missing, s.bollName)
	}
	return missing
}

// thresholdFor returns the oversold/overbought bounds for an RSI period,
// falling back to the classic 30/70 for display-only periods.
func (s *snapshot) thresholdFor(period int) (float64, float64) {
	for _, th := range s.cfg.RSI.Thresholds {
		if th.Period == period {
			return th.Oversold, th.Overbought
		}
	}
	return 30, 70
}

// indicatorValues builds the per-indicator {value, sentiment} display map
// from the latest entries of every computed series.
func (s *snapshot) indicatorValues() map[string]models.IndicatorValue {
	values := make(map[string]models.IndicatorValue)

	for w, name := range s.maNames {
		values[name] = maValue(s.close, s.latestMA(w))
	}
	for p, name := range s.rsiNames {
		oversold, overbought := s.thresholdFor(p)
		values[name] = rsiValue(s.latestRSI(p), oversold, overbought)
	}

	macdLine := s.latestComponent(s.macdName, "macd")
	signalLine := s.latestComponent(s.macdName, "signal")
	histogram := s.latestComponent(s.macdName, "histogram")
	values["MACD"] = crossValue(macdLine, macdLine, signalLine)
	values["MACD_SIGNAL"] = neutralValue(signalLine)
	values["MACD_HIST"] = histValue(histogram)

	k := s.latestComponent(s.kdjName, "k")
	d := s.latestComponent(s.kdjName, "d")
	j := s.latestComponent(s.kdjName, "j")
	values["KDJ_K"] = crossValue(k, k, d)
	values["KDJ_D"] = neutralValue(d)
	values["KDJ_J"] = jValue(j)

	if s.bollName != "" {
		state, _ := evalBand(s)
		sentiment := state.sentiment()
		values["BOLL_UPPER"] = bandValue(s.latestComponent(s.bollName, "upper"), sentiment)
		values["BOLL_MIDDLE"] = bandValue(s.latestComponent(s.bollName, "middle"), sentiment)
		values["BOLL_LOWER"] = bandValue(s.latestComponent(s.bollName, "lower"), sentiment)
	} else {
		values["BOLL_UPPER"] = unavailableValue()
		values["BOLL_MIDDLE"] = unavailableValue()
		values["BOLL_LOWER"] = unavailableValue()
	}
	return values
}

func maValue(close, ma float64) models.IndicatorValue {
	switch {
	case math.IsNaN(ma) || math.IsNaN(close):
		return models.IndicatorValue{Value: ma, Sentiment: models.SentimentUnavailable}
	case close > ma:
		return models.IndicatorValue{Value: ma, Sentiment: models.SentimentBullish}
	case close < ma:
		return models.IndicatorValue{Value: ma, Sentiment: models.SentimentBearish}
	default:
		return models.IndicatorValue{Value: ma, Sentiment: models.SentimentNeutral}
	}
}

func rsiValue(rsi, oversold, overbought float64) models.IndicatorValue {
	switch {
	case math.IsNaN(rsi):
		return models.IndicatorValue{Value: rsi, Sentiment: models.SentimentUnavailable}
	case rsi < oversold:
		return models.IndicatorValue{Value: rsi, Sentiment: models.SentimentOversold}
	case rsi > overbought:
		return models.IndicatorValue{Value: rsi, Sentiment: models.SentimentOverbought}
	default:
		return models.IndicatorValue{Value: rsi, Sentiment: models.SentimentNeutral}
	}
}

// crossValue labels a fast line by its position against a slow line.
func crossValue(value, fast, slow float64) models.IndicatorValue {
	switch {
	case math.IsNaN(value) || math.IsNaN(fast) || math.IsNaN(slow):
		return models.IndicatorValue{Value: value, Sentiment: models.SentimentUnavailable}
	case fast > slow:
		return models.IndicatorValue{Value: value, Sentiment: models.SentimentBullish}
	case fast < slow:
		return models.IndicatorValue{Value: value, Sentiment: models.SentimentBearish}
	default:
		return models.IndicatorValue{Value: value, Sentiment: models.SentimentNeutral}
	}
}

func histValue(hist float64) models.IndicatorValue {
	switch {
	case math.IsNaN(hist):
		return models.IndicatorValue{Value: hist, Sentiment: models.SentimentUnavailable}
	case hist > 0:
		return models.IndicatorValue{Value: hist, Sentiment: models.SentimentBullish}
	case hist < 0:
		return models.IndicatorValue{Value: hist, Sentiment: models.SentimentBearish}
	default:
		return models.IndicatorValue{Value: hist, Sentiment: models.SentimentNeutral}
	}
}

// jValue labels the unbounded J line; outside [0,100] it marks exhaustion.
func jValue(j float64) models.IndicatorValue {
	switch {
	case math.IsNaN(j):
		return models.IndicatorValue{Value: j, Sentiment: models.SentimentUnavailable}
	case j > 100:
		return models.IndicatorValue{Value: j, Sentiment: models.SentimentOverbought}
	case j < 0:
		return models.IndicatorValue{Value: j, Sentiment: models.SentimentOversold}
	default:
		return models.IndicatorValue{Value: j, Sentiment: models.SentimentNeutral}
	}
}

func neutralValue(v float64) models.IndicatorValue {
	if math.IsNaN(v) {
		return models.IndicatorValue{Value: v, Sentiment: models.SentimentUnavailable}
	}
	return models.IndicatorValue{Value: v, Sentiment: models.SentimentNeutral}
}

func bandValue(v float64, sentiment models.Sentiment) models.IndicatorValue {
	if math.IsNaN(v) {
		return models.IndicatorValue{Value: v, Sentiment: models.SentimentUnavailable}
	}
	return models.IndicatorValue{Value: v, Sentiment: sentiment}
}

func unavailableValue() models.IndicatorValue {
	return models.IndicatorValue{Value: math.NaN(), Sentiment: models.SentimentUnavailable}
}

// valueSkeleton is the display map shape returned on paths where nothing
// could be computed: every fixed display key present, all unavailable.
func valueSkeleton() map[string]models.IndicatorValue {
	values := make(map[string]models.IndicatorValue)
	for _, w := range strategy.DisplayMAWindows {
		values[fmt.Sprintf("MA%d", w)] = unavailableValue()
	}
	for _, p := range strategy.DisplayRSIPeriods {
		values[fmt.Sprintf("RSI%d", p)] = unavailableValue()
	}
	for _, key := range []string{"MACD", "MACD_SIGNAL", "MACD_HIST", "KDJ_K", "KDJ_D", "KDJ_J", "BOLL_UPPER", "BOLL_MIDDLE", "BOLL_LOWER"} {
		values[key] = unavailableValue()
	}
	return values
}

// unionInts merges two window lists, preserving first-seen order.
func unionInts(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	out := make([]int, 0, len(a)+len(b))
	for _, v := range append(append([]int(nil), a...), b...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
