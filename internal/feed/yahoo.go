package feed

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	apperrors "stock-outlook/internal/errors"
	"stock-outlook/internal/models"
	"stock-outlook/pkg/utils"
)

// intervalWeekly is the chart API's weekly candle; the datetime package
// does not name it.
const intervalWeekly = datetime.Interval("1wk")

// Calendar days requested per bar. Padded so weekends, holidays and
// half sessions never leave the window under-filled.
const (
	daysPerDailyBar   = 2
	daysPerWeeklyBar  = 8
	daysPerMonthlyBar = 32
	spanPaddingDays   = 7
)

// YahooProvider fetches bars from the Yahoo Finance chart API.
type YahooProvider struct {
	retry   utils.RetryConfig
	breaker *breaker
}

// NewYahooProvider creates a provider making up to maxAttempts fetch
// attempts per request; zero or negative keeps the default.
func NewYahooProvider(maxAttempts int) *YahooProvider {
	rc := utils.DefaultRetryConfig()
	if maxAttempts > 0 {
		rc.MaxAttempts = maxAttempts
	}
	return &YahooProvider{
		retry:   rc,
		breaker: newBreaker(5, 2, 30*time.Second),
	}
}

// Name implements Provider.
func (p *YahooProvider) Name() string { return "yahoo" }

// History fetches the trailing lookback bars for symbol at the given
// timeframe, retrying transient failures with backoff. Repeated
// failures open the breaker so a long-running watch stops hitting a
// broken feed until the cooldown passes.
func (p *YahooProvider) History(ctx context.Context, symbol, timeframe string, lookback int) (models.PriceSeries, error) {
	symbol = strings.TrimSpace(symbol)
	tf, err := normalizeTimeframe(timeframe)
	if err != nil {
		return nil, apperrors.NewProviderError(p.Name(), symbol, err)
	}
	if err := validateSymbol(symbol); err != nil {
		return nil, apperrors.NewProviderError(p.Name(), symbol, err)
	}
	if err := p.breaker.allow(); err != nil {
		return nil, apperrors.NewProviderError(p.Name(), symbol, err)
	}
	if lookback <= 0 {
		lookback = 1
	}
	interval, spanDays := yahooInterval(tf, lookback)

	series, err := utils.RetryWithResult(ctx, p.retry, func() (models.PriceSeries, error) {
		return fetchChart(ctx, symbol, interval, spanDays)
	})
	if err != nil {
		p.breaker.recordFailure()
		return nil, apperrors.NewProviderError(p.Name(), symbol, err)
	}
	p.breaker.recordSuccess()
	if len(series) == 0 {
		return nil, apperrors.NewProviderError(p.Name(), symbol, apperrors.ErrNoQuote)
	}
	return series.Tail(lookback), nil
}

// FundFlow implements Provider. The chart API carries no capital-flow
// data, so the record is always absent.
func (p *YahooProvider) FundFlow(ctx context.Context, symbol string) (*models.FundFlow, error) {
	return nil, nil
}

// yahooInterval maps a normalized timeframe to the chart candle
// interval and the calendar span to request for lookback bars.
func yahooInterval(timeframe string, lookback int) (datetime.Interval, int) {
	switch models.Timeframe(timeframe) {
	case models.TimeframeWeekly:
		return intervalWeekly, lookback*daysPerWeeklyBar + spanPaddingDays
	case models.TimeframeMonthly:
		return datetime.OneMonth, lookback*daysPerMonthlyBar + spanPaddingDays
	default:
		return datetime.OneDay, lookback*daysPerDailyBar + spanPaddingDays
	}
}

func fetchChart(ctx context.Context, symbol string, interval datetime.Interval, spanDays int) (models.PriceSeries, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -spanDays)

	iter := chart.Get(&chart.Params{
		Params:   finance.Params{Context: &ctx},
		Symbol:   symbol,
		Interval: interval,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
	})

	var series models.PriceSeries
	for iter.Next() {
		b := iter.Bar()
		if b == nil || b.Close.IsZero() {
			// Yahoo pads untraded sessions with null bars.
			continue
		}
		series = append(series, models.PriceBar{
			Date:          time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:          yahooPrice(b.Open),
			High:          yahooPrice(b.High),
			Low:           yahooPrice(b.Low),
			Close:         yahooPrice(b.Close),
			Volume:        int64(b.Volume),
			Turnover:      math.NaN(),
			ChangePercent: math.NaN(),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series, nil
}

// yahooPrice converts a chart decimal to float64, mapping the zero
// value (a null in the response) to NaN.
func yahooPrice(d decimal.Decimal) float64 {
	if d.IsZero() {
		return math.NaN()
	}
	f, _ := d.Float64()
	return f
}
