package models

import (
	"math"
	"time"
)

// Outlook is the classification an analysis run produces. Failures are
// encoded here rather than returned as errors so a batch over many symbols
// keeps one result row per symbol.
type Outlook string

const (
	OutlookBullish          Outlook = "BULLISH"
	OutlookBearish          Outlook = "BEARISH"
	OutlookNeutralWait      Outlook = "NEUTRAL_WAIT"
	OutlookNoData           Outlook = "NO_DATA"
	OutlookDataFormatError  Outlook = "DATA_FORMAT_ERROR"
	OutlookInsufficientData Outlook = "INSUFFICIENT_DATA"
	OutlookConfigError      Outlook = "CONFIG_ERROR"
	OutlookIndicatorError   Outlook = "INDICATOR_ERROR"
)

// IsSignal reports whether the outlook is a genuine market read rather
// than a diagnostic state.
func (o Outlook) IsSignal() bool {
	switch o {
	case OutlookBullish, OutlookBearish, OutlookNeutralWait:
		return true
	}
	return false
}

// Sentiment labels a single indicator reading for display.
type Sentiment string

const (
	SentimentBullish      Sentiment = "BULLISH"
	SentimentBearish      Sentiment = "BEARISH"
	SentimentNeutral      Sentiment = "NEUTRAL"
	SentimentOversold     Sentiment = "OVERSOLD"
	SentimentOverbought   Sentiment = "OVERBOUGHT"
	SentimentSqueeze      Sentiment = "SQUEEZE"
	SentimentBreakoutUp   Sentiment = "BREAKOUT_UP"
	SentimentBreakoutDown Sentiment = "BREAKOUT_DOWN"
	SentimentUpperHalf    Sentiment = "UPPER_HALF"
	SentimentLowerHalf    Sentiment = "LOWER_HALF"
	SentimentNearMiddle   Sentiment = "NEAR_MIDDLE"
	SentimentUnavailable  Sentiment = "UNAVAILABLE"
)

// IndicatorValue is one latest indicator reading with its display label.
// Value is NaN when the indicator could not be computed for the final bar.
type IndicatorValue struct {
	Value     float64
	Sentiment Sentiment
}

// Valid reports whether the reading holds a number.
func (v IndicatorValue) Valid() bool {
	return !math.IsNaN(v.Value)
}

// HistoricalIndicators carries the trailing window of bars and indicator
// values that accompanies an analysis, for charting and review. Every slice
// has the same length as Dates, NaN where an indicator was not yet defined.
type HistoricalIndicators struct {
	Dates     []time.Time
	Bars      []PriceBar
	MA        map[string][]float64
	RSI       map[string][]float64
	MACD      map[string][]float64
	KDJ       map[string][]float64
	Bollinger map[string][]float64
}

// AnalysisResult is the complete product of one analysis run.
type AnalysisResult struct {
	Symbol          string
	Timeframe       Timeframe
	Outlook         Outlook
	LatestClose     float64
	IndicatorValues map[string]IndicatorValue
	Explanation     string
	History         HistoricalIndicators
	FundFlow        *FundFlow
	Config          *StrategyConfig
	GeneratedAt     time.Time
}

// HasClose reports whether the run observed a usable latest close.
func (r *AnalysisResult) HasClose() bool {
	return !math.IsNaN(r.LatestClose)
}
