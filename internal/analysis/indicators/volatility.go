package indicators

import (
	"fmt"
	"math"

	"stock-outlook/internal/models"
)

// BollingerBands calculates Bollinger Bands around a simple moving average.
type BollingerBands struct {
	period    int
	stdDevMul float64
}

// NewBollingerBands creates a new Bollinger Bands indicator.
func NewBollingerBands(period int, stdDevMul float64) *BollingerBands {
	return &BollingerBands{
		period:    period,
		stdDevMul: stdDevMul,
	}
}

func (b *BollingerBands) Name() string {
	return fmt.Sprintf("BOLL_%d_%.1f", b.period, b.stdDevMul)
}

func (b *BollingerBands) Period() int {
	return b.period
}

// Calculate returns the upper, middle, lower and bandwidth series aligned
// with the input. The middle band is the simple moving average, the outer
// bands sit stdDevMul sample standard deviations away, and bandwidth is
// (upper-lower)/middle. All bands collapse onto the middle when a window
// has zero variance. A series shorter than the period is all-NaN.
func (b *BollingerBands) Calculate(series models.PriceSeries) (map[string][]float64, error) {
	if b.period <= 0 || b.stdDevMul <= 0 {
		return nil, ErrInvalidPeriod
	}

	n := series.Len()
	middle := nanSlice(n)
	upper := nanSlice(n)
	lower := nanSlice(n)
	bandwidth := nanSlice(n)

	if n >= b.period {
		closes := series.Closes()
		for i := b.period - 1; i < n; i++ {
			window := closes[i-b.period+1 : i+1]
			if !windowClean(window) {
				continue
			}

			sma := mean(window)
			sd := sampleStdDev(window)

			middle[i] = sma
			if math.IsNaN(sd) {
				continue
			}
			upper[i] = sma + b.stdDevMul*sd
			lower[i] = sma - b.stdDevMul*sd
			if middle[i] != 0 {
				bandwidth[i] = (upper[i] - lower[i]) / middle[i]
			}
		}
	}

	return map[string][]float64{
		"upper":     upper,
		"middle":    middle,
		"lower":     lower,
		"bandwidth": bandwidth,
	}, nil
}
