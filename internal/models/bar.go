// Package models provides domain models for the outlook classifier.
package models

import (
	"math"
	"time"
)

// PriceBar represents one OHLCV record for a trading day (or week/month).
// Numeric fields that a data source may leave blank hold NaN; Close is the
// only field the analysis core requires, everything else is optional.
type PriceBar struct {
	Date          time.Time
	Open          float64
	High          float64
	Low           float64
	Close         float64
	Volume        int64
	Turnover      float64
	ChangePercent float64
}

// HasClose reports whether the bar carries a usable close price.
func (b PriceBar) HasClose() bool {
	return !math.IsNaN(b.Close)
}

// PriceSeries is a chronologically ordered run of bars, oldest first,
// with unique dates. It is produced by a data provider and handed to the
// decision engine as an in-memory value.
type PriceSeries []PriceBar

// Len returns the number of bars.
func (s PriceSeries) Len() int {
	return len(s)
}

// Last returns the most recent bar.
func (s PriceSeries) Last() (PriceBar, bool) {
	if len(s) == 0 {
		return PriceBar{}, false
	}
	return s[len(s)-1], true
}

// Closes extracts the close column, NaN where a bar has no close.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high column.
func (s PriceSeries) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low column.
func (s PriceSeries) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Dates extracts the date column.
func (s PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, b := range s {
		out[i] = b.Date
	}
	return out
}

// ValidCloses counts bars with a usable close.
func (s PriceSeries) ValidCloses() int {
	n := 0
	for _, b := range s {
		if b.HasClose() {
			n++
		}
	}
	return n
}

// Tail returns the trailing n bars (all bars when the series is shorter).
func (s PriceSeries) Tail(n int) PriceSeries {
	if n <= 0 || len(s) == 0 {
		return nil
	}
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// FundFlow is an advisory capital-flow record. Only the most recent record
// is displayed alongside an analysis; it never affects the outlook.
type FundFlow struct {
	Date          time.Time
	MainInflow    float64
	MainInflowPct float64
}
