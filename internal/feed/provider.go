// Package feed loads price history and advisory fund-flow records from
// external sources. Providers hand the analysis layer in-memory series;
// nothing in this package interprets the data.
package feed

import (
	"context"
	"regexp"
	"strings"

	apperrors "stock-outlook/internal/errors"
	"stock-outlook/internal/models"
)

// Provider supplies market data for a symbol.
type Provider interface {
	// History returns up to lookback bars ending at the most recent
	// session, oldest first. Bars with no close carry NaN.
	History(ctx context.Context, symbol, timeframe string, lookback int) (models.PriceSeries, error)

	// FundFlow returns the latest capital-flow record for the symbol,
	// or nil when the source has none. The record is advisory only.
	FundFlow(ctx context.Context, symbol string) (*models.FundFlow, error)

	// Name identifies the provider in logs and errors.
	Name() string
}

// normalizeTimeframe lower-cases and trims a timeframe key and rejects
// anything a provider cannot fetch an interval for.
func normalizeTimeframe(timeframe string) (string, error) {
	tf := models.Timeframe(strings.ToLower(strings.TrimSpace(timeframe)))
	switch tf {
	case models.TimeframeDaily, models.TimeframeWeekly, models.TimeframeMonthly:
		return string(tf), nil
	default:
		return "", apperrors.Wrapf(apperrors.ErrUnknownTimeframe, "timeframe %q", timeframe)
	}
}

// Symbols: exchange codes, tickers and Yahoo suffixes like 600519.SS or
// BRK-B. Anything else is rejected before it reaches a file path or
// request URL.
var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]{0,19}$`)

func validateSymbol(symbol string) error {
	if symbol == "" {
		return apperrors.NewValidationError("symbol", symbol, "must not be empty")
	}
	if !symbolPattern.MatchString(symbol) {
		return apperrors.NewValidationError("symbol", symbol, "contains unsupported characters")
	}
	return nil
}
