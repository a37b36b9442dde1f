package indicators

import (
	"fmt"

	"stock-outlook/internal/models"
)

// MA calculates the simple moving average of close prices.
type MA struct {
	period int
}

// NewMA creates a new moving average indicator.
func NewMA(period int) *MA {
	return &MA{period: period}
}

func (m *MA) Name() string {
	return fmt.Sprintf("MA%d", m.period)
}

func (m *MA) Period() int {
	return m.period
}

// Calculate returns one value per input bar. A value is present only when
// the full trailing window exists and contains no null closes; everything
// else, including every bar of a series shorter than the window, is NaN.
func (m *MA) Calculate(series models.PriceSeries) ([]float64, error) {
	if m.period <= 0 {
		return nil, ErrInvalidPeriod
	}

	n := series.Len()
	result := nanSlice(n)
	if n < m.period {
		return result, nil
	}

	closes := series.Closes()
	for i := m.period - 1; i < n; i++ {
		window := closes[i-m.period+1 : i+1]
		if windowClean(window) {
			result[i] = mean(window)
		}
	}

	return result, nil
}

// MACD calculates Moving Average Convergence Divergence.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator, conventionally (12, 26, 9).
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD_%d_%d_%d", m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

func (m *MACD) Period() int {
	return m.slowPeriod + m.signalPeriod - 1
}

// Calculate returns the macd, signal and histogram series, each aligned
// with the input. The macd line starts once the slow EMA has a full warm-up,
// the signal line after signalPeriod further values, the histogram where
// both exist. A series shorter than the slow period yields all-NaN output.
func (m *MACD) Calculate(series models.PriceSeries) (map[string][]float64, error) {
	if m.fastPeriod <= 0 || m.slowPeriod <= 0 || m.signalPeriod <= 0 {
		return nil, ErrInvalidPeriod
	}

	n := series.Len()
	macdLine := nanSlice(n)
	signalLine := nanSlice(n)
	histogram := nanSlice(n)

	if n >= m.slowPeriod {
		closes := series.Closes()
		fastEMA := ewm(closes, 2.0/float64(m.fastPeriod+1), m.fastPeriod)
		slowEMA := ewm(closes, 2.0/float64(m.slowPeriod+1), m.slowPeriod)

		// MACD Line = Fast EMA - Slow EMA
		for i := 0; i < n; i++ {
			if isFinite(fastEMA[i]) && isFinite(slowEMA[i]) {
				macdLine[i] = fastEMA[i] - slowEMA[i]
			}
		}

		// Signal Line = EMA of MACD Line
		signalLine = ewm(macdLine, 2.0/float64(m.signalPeriod+1), m.signalPeriod)

		// Histogram = MACD Line - Signal Line
		for i := 0; i < n; i++ {
			if isFinite(macdLine[i]) && isFinite(signalLine[i]) {
				histogram[i] = macdLine[i] - signalLine[i]
			}
		}
	}

	return map[string][]float64{
		"macd":      macdLine,
		"signal":    signalLine,
		"histogram": histogram,
	}, nil
}
