package indicators

import (
	"fmt"

	"stock-outlook/internal/models"
)

// RSI calculates the Relative Strength Index with Wilder smoothing.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI%d", r.period)
}

func (r *RSI) Period() int {
	return r.period
}

// Calculate returns one value per input bar, NaN until period close-to-close
// changes have been observed, so the first value lands at index period and a
// series of period bars or fewer is all-NaN. An all-gain window reads
// 100 and a no-gain window reads 0; the no-gain rule applies last, so a
// flat window reads 0.
func (r *RSI) Calculate(series models.PriceSeries) ([]float64, error) {
	if r.period <= 0 {
		return nil, ErrInvalidPeriod
	}

	n := series.Len()
	result := nanSlice(n)
	if n <= r.period {
		return result, nil
	}

	closes := series.Closes()
	gains := nanSlice(n)
	losses := nanSlice(n)

	for i := 1; i < n; i++ {
		if !isFinite(closes[i]) || !isFinite(closes[i-1]) {
			continue
		}
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
			losses[i] = 0
		} else {
			gains[i] = 0
			losses[i] = -change
		}
	}

	alpha := 1.0 / float64(r.period)
	avgGains := ewm(gains, alpha, r.period)
	avgLosses := ewm(losses, alpha, r.period)

	for i := 0; i < n; i++ {
		avgGain := avgGains[i]
		avgLoss := avgLosses[i]
		if !isFinite(avgGain) || !isFinite(avgLoss) {
			continue
		}

		var v float64
		if avgLoss == 0 {
			v = 100
		} else {
			rs := avgGain / avgLoss
			v = 100 - 100/(1+rs)
		}
		if avgGain == 0 {
			v = 0
		}
		result[i] = v
	}

	return result, nil
}

// KDJ calculates the stochastic K, D and J lines.
type KDJ struct {
	period int
	m1     int
	m2     int
}

// NewKDJ creates a new KDJ indicator, conventionally (9, 3, 3).
func NewKDJ(period, m1, m2 int) *KDJ {
	return &KDJ{
		period: period,
		m1:     m1,
		m2:     m2,
	}
}

func (k *KDJ) Name() string {
	return fmt.Sprintf("KDJ_%d_%d_%d", k.period, k.m1, k.m2)
}

func (k *KDJ) Period() int {
	return k.period
}

// Calculate returns the k, d and j series aligned with the input, NaN
// before the first full high-low window. A zero-range window reads RSV 0
// the first time it appears in the series and repeats the previous RSV on
// every later occurrence. J = 3K - 2D and is left unclamped.
func (k *KDJ) Calculate(series models.PriceSeries) (map[string][]float64, error) {
	if k.period <= 0 || k.m1 <= 0 || k.m2 <= 0 {
		return nil, ErrInvalidPeriod
	}

	n := series.Len()
	rsv := nanSlice(n)

	if n >= k.period {
		highs := series.Highs()
		lows := series.Lows()
		closes := series.Closes()

		zeroRangeSeen := false
		prevRSV := 0.0
		for i := k.period - 1; i < n; i++ {
			hw := highs[i-k.period+1 : i+1]
			lw := lows[i-k.period+1 : i+1]
			if !windowClean(hw) || !windowClean(lw) || !isFinite(closes[i]) {
				continue
			}

			hh := highest(hw)
			ll := lowest(lw)
			if hh == ll {
				if zeroRangeSeen {
					rsv[i] = prevRSV
				} else {
					rsv[i] = 0
					zeroRangeSeen = true
				}
			} else {
				rsv[i] = 100 * (closes[i] - ll) / (hh - ll)
			}
			prevRSV = rsv[i]
		}
	}

	kLine := kdjSmooth(rsv, k.m1)
	dLine := kdjSmooth(kLine, k.m2)

	jLine := nanSlice(n)
	for i := 0; i < n; i++ {
		if isFinite(kLine[i]) && isFinite(dLine[i]) {
			jLine[i] = 3*kLine[i] - 2*dLine[i]
		}
	}

	return map[string][]float64{
		"k": kLine,
		"d": dLine,
		"j": jLine,
	}, nil
}

// kdjSmooth applies the KDJ recursion y[i] = ((m-1)*y[i-1] + x[i]) / m with
// the running state seeded at 50 before the first usable input. NaN inputs
// produce NaN outputs and leave the state untouched.
func kdjSmooth(values []float64, m int) []float64 {
	out := nanSlice(len(values))
	state := 50.0
	for i, v := range values {
		if !isFinite(v) {
			continue
		}
		state = (float64(m-1)*state + v) / float64(m)
		out[i] = state
	}
	return out
}
