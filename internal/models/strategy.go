package models

// Timeframe identifies which per-timeframe strategy applies to a series.
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

// RSIMode selects between the two RSI evaluation schemes.
type RSIMode string

const (
	// RSISingle evaluates one RSI period against shared 30/70 thresholds.
	RSISingle RSIMode = "SINGLE"
	// RSIMulti evaluates several RSI periods, each against its own
	// thresholds, and votes across them.
	RSIMulti RSIMode = "MULTI"
)

// RSIThreshold pairs an RSI period with its oversold and overbought bounds.
type RSIThreshold struct {
	Period     int
	Oversold   float64
	Overbought float64
}

// RSISpec describes how a strategy computes and judges RSI. Exactly one of
// the two shapes is populated, selected by Mode: Period for RSISingle,
// Thresholds for RSIMulti. The shape is fixed when the strategy is built,
// so downstream code switches on Mode instead of re-validating.
type RSISpec struct {
	Mode       RSIMode
	Period     int
	Thresholds []RSIThreshold
}

// Periods lists the RSI periods to evaluate, in declared order.
func (r RSISpec) Periods() []int {
	if r.Mode == RSISingle {
		return []int{r.Period}
	}
	out := make([]int, len(r.Thresholds))
	for i, t := range r.Thresholds {
		out[i] = t.Period
	}
	return out
}

// BollingerSpec holds Bollinger Band parameters.
type BollingerSpec struct {
	Period     int
	Multiplier float64
}

// StrategyConfig is the per-timeframe recipe the decision engine follows:
// which moving averages to compare, how to judge RSI, and whether Bollinger
// Bands participate.
type StrategyConfig struct {
	Timeframe Timeframe
	MAWindows []int
	RSI       RSISpec
	Bollinger *BollingerSpec
}
