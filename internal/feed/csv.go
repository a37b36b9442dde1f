package feed

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	apperrors "stock-outlook/internal/errors"
	"stock-outlook/internal/models"
)

// csvDateLayout is the bar-file date format.
const csvDateLayout = "2006-01-02"

// nullFloat is a float64 CSV cell where a blank means null.
type nullFloat float64

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (f *nullFloat) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*f = nullFloat(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = nullFloat(v)
	return nil
}

// csvDate is a yyyy-mm-dd CSV cell.
type csvDate struct {
	time.Time
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (d *csvDate) UnmarshalCSV(s string) error {
	t, err := time.Parse(csvDateLayout, strings.TrimSpace(s))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// csvBar mirrors one row of a bar file.
type csvBar struct {
	Date     csvDate   `csv:"date"`
	Open     nullFloat `csv:"open"`
	High     nullFloat `csv:"high"`
	Low      nullFloat `csv:"low"`
	Close    nullFloat `csv:"close"`
	Volume   int64     `csv:"volume"`
	Turnover nullFloat `csv:"turnover"`
	PctChg   nullFloat `csv:"pct_chg"`
}

// csvFlow mirrors one row of a fund-flow sidecar file.
type csvFlow struct {
	Date          csvDate   `csv:"date"`
	MainInflow    nullFloat `csv:"main_inflow"`
	MainInflowPct nullFloat `csv:"main_inflow_pct"`
}

// CSVProvider reads market data from per-symbol CSV files in a
// directory. Daily bars live in <dir>/<symbol>.csv, other timeframes in
// <dir>/<symbol>_<timeframe>.csv, and optional fund-flow records in
// <dir>/<symbol>_flow.csv.
type CSVProvider struct {
	dir string
}

// NewCSVProvider creates a provider rooted at dir.
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

// Name implements Provider.
func (p *CSVProvider) Name() string { return "csv" }

// History loads the trailing lookback bars for symbol. Rows are sorted
// by date regardless of file order; a blank close cell becomes a null
// bar rather than dropping the row.
func (p *CSVProvider) History(ctx context.Context, symbol, timeframe string, lookback int) (models.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = strings.TrimSpace(symbol)
	tf, err := normalizeTimeframe(timeframe)
	if err != nil {
		return nil, apperrors.NewProviderError(p.Name(), symbol, err)
	}
	if err := validateSymbol(symbol); err != nil {
		return nil, apperrors.NewProviderError(p.Name(), symbol, err)
	}

	path := p.barPath(symbol, tf)
	f, err := os.Open(path)
	if apperrors.Is(err, os.ErrNotExist) {
		return nil, apperrors.NewProviderError(p.Name(), symbol,
			apperrors.Wrapf(apperrors.ErrSymbolNotFound, "no bar file at %s", path))
	}
	if err != nil {
		return nil, apperrors.NewProviderError(p.Name(), symbol, err)
	}
	defer f.Close()

	var rows []*csvBar
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, apperrors.NewProviderError(p.Name(), symbol, apperrors.Wrap(err, "parse bar file"))
	}

	series := make(models.PriceSeries, 0, len(rows))
	for _, r := range rows {
		series = append(series, models.PriceBar{
			Date:          r.Date.Time,
			Open:          float64(r.Open),
			High:          float64(r.High),
			Low:           float64(r.Low),
			Close:         float64(r.Close),
			Volume:        r.Volume,
			Turnover:      float64(r.Turnover),
			ChangePercent: float64(r.PctChg),
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	if lookback > 0 {
		series = series.Tail(lookback)
	}
	return series, nil
}

// FundFlow returns the most recent record from the fund-flow sidecar,
// or nil when the symbol has none.
func (p *CSVProvider) FundFlow(ctx context.Context, symbol string) (*models.FundFlow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = strings.TrimSpace(symbol)
	if err := validateSymbol(symbol); err != nil {
		return nil, apperrors.NewProviderError(p.Name(), symbol, err)
	}
	path := filepath.Join(p.dir, symbol+"_flow.csv")
	f, err := os.Open(path)
	if apperrors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewProviderError(p.Name(), symbol, err)
	}
	defer f.Close()

	var rows []*csvFlow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, apperrors.NewProviderError(p.Name(), symbol, apperrors.Wrap(err, "parse flow file"))
	}
	if len(rows) == 0 {
		return nil, nil
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Time.Before(rows[j].Date.Time) })

	last := rows[len(rows)-1]
	return &models.FundFlow{
		Date:          last.Date.Time,
		MainInflow:    float64(last.MainInflow),
		MainInflowPct: float64(last.MainInflowPct),
	}, nil
}

func (p *CSVProvider) barPath(symbol, timeframe string) string {
	if timeframe == string(models.TimeframeDaily) {
		return filepath.Join(p.dir, symbol+".csv")
	}
	return filepath.Join(p.dir, symbol+"_"+timeframe+".csv")
}
