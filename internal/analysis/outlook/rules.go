package outlook

import (
	"fmt"
	"math"
	"strings"

	"stock-outlook/internal/models"
)

// verdict is one axis of the daily rule family: what a single indicator
// group says on its own.
type verdict int

const (
	verdictNeutral verdict = iota
	verdictBullish
	verdictBearish
)

// bandState is the Bollinger Band position, resolved through an ordered
// priority chain. Exactly one state holds per analysis.
type bandState int

const (
	bandNone bandState = iota // no Bollinger spec configured
	bandSqueeze
	bandBreakoutUp
	bandBreakoutDown
	bandUpperHalf
	bandLowerHalf
	bandNearMiddle
)

// squeezeBandwidth is the relative band width below which volatility is
// considered compressed and direction calls are suspended.
const squeezeBandwidth = 0.10

// Single-period RSI bounds for the weekly/monthly rule family.
const (
	singleRSIOversold   = 30.0
	singleRSIOverbought = 70.0
)

func (b bandState) sentiment() models.Sentiment {
	switch b {
	case bandSqueeze:
		return models.SentimentSqueeze
	case bandBreakoutUp:
		return models.SentimentBreakoutUp
	case bandBreakoutDown:
		return models.SentimentBreakoutDown
	case bandUpperHalf:
		return models.SentimentUpperHalf
	case bandLowerHalf:
		return models.SentimentLowerHalf
	case bandNearMiddle:
		return models.SentimentNearMiddle
	default:
		return models.SentimentUnavailable
	}
}

// evalMAStack compares the latest close against the two shortest configured
// moving averages. A strictly descending close > shortMA > longMA chain is a
// bullish stack; the mirror chain is bearish; anything else is neutral.
func evalMAStack(s *snapshot) (verdict, string) {
	windows := s.essentialWindows()
	short, long := windows[0], windows[1]
	shortMA := s.latestMA(short)
	longMA := s.latestMA(long)

	switch {
	case s.close > shortMA && shortMA > longMA:
		return verdictBullish, fmt.Sprintf("MA: close %.2f > MA%d %.2f > MA%d %.2f (bullish stack)",
			s.close, short, shortMA, long, longMA)
	case s.close < shortMA && shortMA < longMA:
		return verdictBearish, fmt.Sprintf("MA: close %.2f < MA%d %.2f < MA%d %.2f (bearish stack)",
			s.close, short, shortMA, long, longMA)
	default:
		return verdictNeutral, fmt.Sprintf("MA: close %.2f vs MA%d %.2f and MA%d %.2f (mixed)",
			s.close, short, shortMA, long, longMA)
	}
}

// evalRSI runs the RSI axis for the active config. Multi-period configs
// vote per period against their own thresholds and need a majority to flip
// the axis; single-period configs compare one reading against 30/70.
func evalRSI(s *snapshot) (verdict, string) {
	if s.cfg.RSI.Mode == models.RSISingle {
		return evalSingleRSI(s)
	}
	return evalRSIVote(s)
}

func evalSingleRSI(s *snapshot) (verdict, string) {
	period := s.cfg.RSI.Period
	rsi := s.latestRSI(period)
	switch {
	case rsi < singleRSIOversold:
		return verdictBullish, fmt.Sprintf("RSI: RSI%d %.2f < %.0f (oversold)", period, rsi, singleRSIOversold)
	case rsi > singleRSIOverbought:
		return verdictBearish, fmt.Sprintf("RSI: RSI%d %.2f > %.0f (overbought)", period, rsi, singleRSIOverbought)
	default:
		return verdictNeutral, fmt.Sprintf("RSI: RSI%d %.2f between %.0f and %.0f", period, rsi, singleRSIOversold, singleRSIOverbought)
	}
}

func evalRSIVote(s *snapshot) (verdict, string) {
	var oversoldVotes, overboughtVotes int
	readings := make([]string, 0, len(s.cfg.RSI.Thresholds))

	for _, th := range s.cfg.RSI.Thresholds {
		rsi := s.latestRSI(th.Period)
		switch {
		case rsi < th.Oversold:
			oversoldVotes++
			readings = append(readings, fmt.Sprintf("RSI%d %.2f < %.0f", th.Period, rsi, th.Oversold))
		case rsi > th.Overbought:
			overboughtVotes++
			readings = append(readings, fmt.Sprintf("RSI%d %.2f > %.0f", th.Period, rsi, th.Overbought))
		default:
			readings = append(readings, fmt.Sprintf("RSI%d %.2f", th.Period, rsi))
		}
	}

	total := len(s.cfg.RSI.Thresholds)
	needed := total/2 + 1
	detail := strings.Join(readings, ", ")
	switch {
	case oversoldVotes >= needed:
		return verdictBullish, fmt.Sprintf("RSI: %d of %d periods oversold (%s)", oversoldVotes, total, detail)
	case overboughtVotes >= needed:
		return verdictBearish, fmt.Sprintf("RSI: %d of %d periods overbought (%s)", overboughtVotes, total, detail)
	default:
		return verdictNeutral, fmt.Sprintf("RSI: mixed (%s)", detail)
	}
}

// evalBand resolves the Bollinger state in priority order: squeeze first,
// then breakouts, then the half-band positions, with near-middle as the
// residual exact-touch case.
func evalBand(s *snapshot) (bandState, string) {
	if s.bollName == "" {
		return bandNone, "BB: not configured"
	}

	upper := s.latestComponent(s.bollName, "upper")
	middle := s.latestComponent(s.bollName, "middle")
	lower := s.latestComponent(s.bollName, "lower")
	bandwidth := s.latestComponent(s.bollName, "bandwidth")
	if math.IsNaN(middle) {
		return bandNone, "BB: no value at latest bar"
	}

	switch {
	case !math.IsNaN(bandwidth) && !math.IsInf(bandwidth, 0) && bandwidth < squeezeBandwidth:
		return bandSqueeze, fmt.Sprintf("BB: bandwidth %.1f%% below %.0f%% (squeeze)", bandwidth*100, squeezeBandwidth*100)
	case s.close > upper:
		return bandBreakoutUp, fmt.Sprintf("BB: close %.2f above upper band %.2f (breakout)", s.close, upper)
	case s.close < lower:
		return bandBreakoutDown, fmt.Sprintf("BB: close %.2f below lower band %.2f (breakdown)", s.close, lower)
	case s.close > middle:
		return bandUpperHalf, fmt.Sprintf("BB: close %.2f in upper half (middle %.2f)", s.close, middle)
	case s.close < middle:
		return bandLowerHalf, fmt.Sprintf("BB: close %.2f in lower half (middle %.2f)", s.close, middle)
	default:
		return bandNearMiddle, fmt.Sprintf("BB: close %.2f at middle band %.2f", s.close, middle)
	}
}

// classifyDaily combines the three axes. A squeeze suspends direction
// calls outright; a breakout forces its direction even against mixed MA and
// RSI readings; otherwise a direction needs MA and RSI agreement plus a
// band position that does not contradict it.
func classifyDaily(ma, rsi verdict, band bandState) models.Outlook {
	switch band {
	case bandSqueeze:
		return models.OutlookNeutralWait
	case bandBreakoutUp:
		return models.OutlookBullish
	case bandBreakoutDown:
		return models.OutlookBearish
	}

	bullishBand := band == bandUpperHalf || band == bandNearMiddle || band == bandNone
	bearishBand := band == bandLowerHalf || band == bandNearMiddle || band == bandNone
	if ma == verdictBullish && rsi == verdictBullish && bullishBand {
		return models.OutlookBullish
	}
	if ma == verdictBearish && rsi == verdictBearish && bearishBand {
		return models.OutlookBearish
	}
	return models.OutlookNeutralWait
}

// classifySingleRSI is the weekly/monthly family: the RSI axis decides
// alone, with MA and band readings reported but not consulted.
func classifySingleRSI(rsi verdict) models.Outlook {
	switch rsi {
	case verdictBullish:
		return models.OutlookBullish
	case verdictBearish:
		return models.OutlookBearish
	default:
		return models.OutlookNeutralWait
	}
}
