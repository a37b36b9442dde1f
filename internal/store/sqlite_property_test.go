package store

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"stock-outlook/internal/models"
)

// Property: any saved run comes back with the same outlook, close and
// indicator readings, including NaN values round-tripped through NULL
// and the JSON null encoding.
func TestProperty_RunRoundTripConsistency(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs_property.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	outlookGen := gen.OneConstOf(
		models.OutlookBullish, models.OutlookBearish, models.OutlookNeutralWait,
		models.OutlookNoData, models.OutlookInsufficientData,
	)
	closeGen := gen.OneGenOf(
		gen.Float64Range(0.01, 10000.0),
		gen.Const(math.NaN()),
	)
	readingGen := gen.OneGenOf(
		gen.Float64Range(-100.0, 10000.0),
		gen.Const(math.NaN()),
	)

	// Unique symbol per iteration keeps each round-trip isolated.
	iteration := 0

	properties.Property("run round-trip: save then query produces equivalent data", prop.ForAll(
		func(outlook models.Outlook, latestClose, maValue, rsiValue float64) bool {
			ctx := context.Background()
			iteration++
			symbol := fmt.Sprintf("SYM_%d", iteration)
			result := &models.AnalysisResult{
				Symbol:      symbol,
				Timeframe:   models.TimeframeDaily,
				Outlook:     outlook,
				LatestClose: latestClose,
				IndicatorValues: map[string]models.IndicatorValue{
					"MA5":  {Value: maValue, Sentiment: models.SentimentNeutral},
					"RSI6": {Value: rsiValue, Sentiment: models.SentimentOversold},
				},
				Explanation: "Outlook: " + string(outlook) + " because of generated data.",
				GeneratedAt: time.Now().UTC(),
			}

			id, err := s.SaveRun(ctx, result)
			if err != nil {
				t.Logf("SaveRun: %v", err)
				return false
			}

			runs, err := s.BySymbol(ctx, symbol, 1)
			if err != nil || len(runs) != 1 {
				t.Logf("BySymbol: %v (%d runs)", err, len(runs))
				return false
			}

			r := runs[0]
			if r.ID != id || r.Outlook != outlook {
				return false
			}
			if !floatsMatch(r.LatestClose, latestClose) {
				return false
			}
			return floatsMatch(r.Indicators["MA5"].Value, maValue) &&
				floatsMatch(r.Indicators["RSI6"].Value, rsiValue) &&
				r.Indicators["RSI6"].Sentiment == models.SentimentOversold
		},
		outlookGen,
		closeGen,
		readingGen,
		readingGen,
	))

	properties.TestingRun(t)
}

// floatsMatch treats two NaNs as equal.
func floatsMatch(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
