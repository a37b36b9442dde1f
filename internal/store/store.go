// Package store persists completed analysis runs so past outlooks can
// be reviewed and compared. The analysis core never touches it; the CLI
// writes a run after classification and reads runs back for history.
package store

import (
	"context"
	"math"
	"time"

	"stock-outlook/internal/models"
)

// Run is one persisted analysis run.
type Run struct {
	ID          string
	Symbol      string
	Timeframe   string
	Outlook     models.Outlook
	LatestClose float64
	Explanation string
	Indicators  map[string]models.IndicatorValue
	CreatedAt   time.Time
}

// HasClose reports whether the run recorded a usable latest close.
func (r Run) HasClose() bool {
	return !math.IsNaN(r.LatestClose)
}

// RunStore records analysis runs and serves history queries.
type RunStore interface {
	// SaveRun persists a result and returns the new run's id.
	SaveRun(ctx context.Context, result *models.AnalysisResult) (string, error)

	// Recent returns the latest runs across all symbols, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)

	// BySymbol returns the latest runs for one symbol, newest first.
	BySymbol(ctx context.Context, symbol string, limit int) ([]Run, error)

	// Close releases the underlying database.
	Close() error
}
