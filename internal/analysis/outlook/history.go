package outlook

import (
	"fmt"
	"math"
	"time"

	"stock-outlook/internal/analysis/strategy"
	"stock-outlook/internal/models"
)

// historyWindow is the trailing bar count reported alongside a result.
const historyWindow = 20

// history slices the trailing window out of the already-computed series.
// The values here are the same numbers the decision saw; nothing is
// recomputed, so the report can never drift from the classification.
func (s *snapshot) history(series models.PriceSeries) models.HistoricalIndicators {
	n := series.Len()
	window := historyWindow
	if n < window {
		window = n
	}
	start := n - window

	h := models.HistoricalIndicators{
		Dates:     append([]time.Time(nil), series.Dates()[start:]...),
		Bars:      append([]models.PriceBar(nil), series[start:]...),
		MA:        make(map[string][]float64, len(s.maNames)),
		RSI:       make(map[string][]float64, len(s.rsiNames)),
		MACD:      make(map[string][]float64, 3),
		KDJ:       make(map[string][]float64, 3),
		Bollinger: make(map[string][]float64, 4),
	}

	for _, name := range s.maNames {
		h.MA[name] = tailCopy(s.single[name], start)
	}
	for _, name := range s.rsiNames {
		h.RSI[name] = tailCopy(s.single[name], start)
	}
	for component, values := range s.multi[s.macdName] {
		h.MACD[component] = tailCopy(values, start)
	}
	for component, values := range s.multi[s.kdjName] {
		h.KDJ[component] = tailCopy(values, start)
	}
	if s.bollName != "" {
		for component, values := range s.multi[s.bollName] {
			h.Bollinger[component] = tailCopy(values, start)
		}
	} else {
		for _, component := range bollingerComponents {
			h.Bollinger[component] = nanTail(window)
		}
	}
	return h
}

var (
	macdComponents      = []string{"macd", "signal", "histogram"}
	kdjComponents       = []string{"k", "d", "j"}
	bollingerComponents = []string{"upper", "middle", "lower", "bandwidth"}
)

// historySkeleton is the bundle shape for runs that never computed
// anything: every display key present, every series empty.
func historySkeleton() models.HistoricalIndicators {
	h := models.HistoricalIndicators{
		Dates:     []time.Time{},
		Bars:      []models.PriceBar{},
		MA:        make(map[string][]float64),
		RSI:       make(map[string][]float64),
		MACD:      make(map[string][]float64),
		KDJ:       make(map[string][]float64),
		Bollinger: make(map[string][]float64),
	}
	for _, w := range strategy.DisplayMAWindows {
		h.MA[fmt.Sprintf("MA%d", w)] = []float64{}
	}
	for _, p := range strategy.DisplayRSIPeriods {
		h.RSI[fmt.Sprintf("RSI%d", p)] = []float64{}
	}
	for _, component := range macdComponents {
		h.MACD[component] = []float64{}
	}
	for _, component := range kdjComponents {
		h.KDJ[component] = []float64{}
	}
	for _, component := range bollingerComponents {
		h.Bollinger[component] = []float64{}
	}
	return h
}

func tailCopy(values []float64, start int) []float64 {
	if start > len(values) {
		start = len(values)
	}
	return append([]float64(nil), values[start:]...)
}

func nanTail(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
