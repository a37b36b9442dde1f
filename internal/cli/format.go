package cli

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock-outlook/internal/models"
)

// FormatPrice formats a price with two decimals, N/A when null.
func FormatPrice(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatSigned formats a value with an explicit sign, N/A when null.
func FormatSigned(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%+.2f", v)
}

// FormatSignedPercent formats a percentage with an explicit sign.
func FormatSignedPercent(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%+.2f%%", v)
}

// FormatDate formats a date for tables.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTime formats a timestamp for headlines.
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// OutlookText colors an outlook for display.
func (o *Output) OutlookText(outlook models.Outlook) string {
	switch outlook {
	case models.OutlookBullish:
		return o.Green(string(outlook))
	case models.OutlookBearish:
		return o.Red(string(outlook))
	case models.OutlookNeutralWait:
		return o.Yellow(string(outlook))
	default:
		return o.DimText(string(outlook))
	}
}

// SentimentText colors a single indicator read for display.
func (o *Output) SentimentText(s models.Sentiment) string {
	switch s {
	case models.SentimentBullish, models.SentimentBreakoutUp, models.SentimentUpperHalf, models.SentimentOversold:
		return o.Green(string(s))
	case models.SentimentBearish, models.SentimentBreakoutDown, models.SentimentLowerHalf, models.SentimentOverbought:
		return o.Red(string(s))
	case models.SentimentUnavailable:
		return o.DimText(string(s))
	default:
		return o.Yellow(string(s))
	}
}

// indicatorDisplayOrder returns the table order for indicator readings:
// moving averages by window, RSI by period, then the MACD, KDJ and
// Bollinger components, then anything else alphabetically.
func indicatorDisplayOrder(values map[string]models.IndicatorValue) []string {
	fixed := []string{
		"MACD", "MACD_SIGNAL", "MACD_HIST",
		"KDJ_K", "KDJ_D", "KDJ_J",
		"BOLL_UPPER", "BOLL_MIDDLE", "BOLL_LOWER",
	}
	fixedSet := make(map[string]bool, len(fixed))
	for _, k := range fixed {
		fixedSet[k] = true
	}

	var mas, rsis, rest []string
	for name := range values {
		switch {
		case fixedSet[name]:
		case periodSuffix(name, "MA") >= 0:
			mas = append(mas, name)
		case periodSuffix(name, "RSI") >= 0:
			rsis = append(rsis, name)
		default:
			rest = append(rest, name)
		}
	}
	sortByPeriod(mas, "MA")
	sortByPeriod(rsis, "RSI")
	sort.Strings(rest)

	order := make([]string, 0, len(values))
	order = append(order, mas...)
	order = append(order, rsis...)
	for _, k := range fixed {
		if _, ok := values[k]; ok {
			order = append(order, k)
		}
	}
	return append(order, rest...)
}

// periodSuffix parses the numeric tail of names like MA20 or RSI6,
// returning -1 when the name does not match prefix+digits.
func periodSuffix(name, prefix string) int {
	if !strings.HasPrefix(name, prefix) {
		return -1
	}
	n, err := strconv.Atoi(name[len(prefix):])
	if err != nil || n <= 0 {
		return -1
	}
	return n
}

func sortByPeriod(names []string, prefix string) {
	sort.Slice(names, func(i, j int) bool {
		return periodSuffix(names[i], prefix) < periodSuffix(names[j], prefix)
	})
}

// JSON views. encoding/json cannot represent NaN, so nullable readings
// are pointers that render as null.

type indicatorView struct {
	Value     *float64 `json:"value"`
	Sentiment string   `json:"sentiment"`
}

type fundFlowView struct {
	Date          string   `json:"date"`
	MainInflow    *float64 `json:"main_inflow"`
	MainInflowPct *float64 `json:"main_inflow_pct"`
}

type historyView struct {
	Dates     []string              `json:"dates"`
	Closes    []*float64            `json:"closes"`
	MA        map[string][]*float64 `json:"ma"`
	RSI       map[string][]*float64 `json:"rsi"`
	MACD      map[string][]*float64 `json:"macd"`
	KDJ       map[string][]*float64 `json:"kdj"`
	Bollinger map[string][]*float64 `json:"bollinger"`
}

type resultView struct {
	Symbol      string                   `json:"symbol"`
	Timeframe   string                   `json:"timeframe"`
	Outlook     string                   `json:"outlook"`
	LatestClose *float64                 `json:"latest_close"`
	Explanation string                   `json:"explanation"`
	Indicators  map[string]indicatorView `json:"indicators"`
	FundFlow    *fundFlowView            `json:"fund_flow,omitempty"`
	History     *historyView             `json:"history,omitempty"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// newResultView converts a result into its JSON-safe form. History is
// included only when withHistory is set.
func newResultView(result *models.AnalysisResult, withHistory bool) resultView {
	view := resultView{
		Symbol:      result.Symbol,
		Timeframe:   string(result.Timeframe),
		Outlook:     string(result.Outlook),
		LatestClose: jsonFloat(result.LatestClose),
		Explanation: result.Explanation,
		Indicators:  make(map[string]indicatorView, len(result.IndicatorValues)),
		GeneratedAt: result.GeneratedAt,
	}
	for name, v := range result.IndicatorValues {
		view.Indicators[name] = indicatorView{
			Value:     jsonFloat(v.Value),
			Sentiment: string(v.Sentiment),
		}
	}
	if flow := result.FundFlow; flow != nil {
		view.FundFlow = &fundFlowView{
			Date:          FormatDate(flow.Date),
			MainInflow:    jsonFloat(flow.MainInflow),
			MainInflowPct: jsonFloat(flow.MainInflowPct),
		}
	}
	if withHistory {
		view.History = newHistoryView(result.History)
	}
	return view
}

func newHistoryView(h models.HistoricalIndicators) *historyView {
	view := &historyView{
		Dates:     make([]string, len(h.Dates)),
		Closes:    make([]*float64, len(h.Bars)),
		MA:        jsonSeriesMap(h.MA),
		RSI:       jsonSeriesMap(h.RSI),
		MACD:      jsonSeriesMap(h.MACD),
		KDJ:       jsonSeriesMap(h.KDJ),
		Bollinger: jsonSeriesMap(h.Bollinger),
	}
	for i, d := range h.Dates {
		view.Dates[i] = FormatDate(d)
	}
	for i, b := range h.Bars {
		view.Closes[i] = jsonFloat(b.Close)
	}
	return view
}

func jsonSeriesMap(series map[string][]float64) map[string][]*float64 {
	out := make(map[string][]*float64, len(series))
	for name, values := range series {
		converted := make([]*float64, len(values))
		for i, v := range values {
			converted[i] = jsonFloat(v)
		}
		out[name] = converted
	}
	return out
}

func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
