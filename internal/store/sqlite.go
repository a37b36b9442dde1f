package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"stock-outlook/internal/models"
)

// SQLiteStore implements RunStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the run database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates the runs table and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Analysis runs: one row per classification
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		outlook TEXT NOT NULL,
		latest_close REAL,
		explanation TEXT NOT NULL,
		indicators TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_symbol ON runs(symbol);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun persists one analysis result and returns the new run's id.
// A NaN latest close is stored as NULL.
func (s *SQLiteStore) SaveRun(ctx context.Context, result *models.AnalysisResult) (string, error) {
	indicators, err := encodeIndicators(result.IndicatorValues)
	if err != nil {
		return "", fmt.Errorf("failed to encode indicators: %w", err)
	}

	var latestClose sql.NullFloat64
	if result.HasClose() {
		latestClose = sql.NullFloat64{Float64: result.LatestClose, Valid: true}
	}

	createdAt := result.GeneratedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, symbol, timeframe, outlook, latest_close, explanation, indicators, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, result.Symbol, string(result.Timeframe), string(result.Outlook), latestClose, result.Explanation, indicators, createdAt)
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}
	return id, nil
}

// Recent returns the latest runs across all symbols, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT id, symbol, timeframe, outlook, latest_close, explanation, indicators, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?
	`, normalizeLimit(limit))
}

// BySymbol returns the latest runs for one symbol, newest first.
func (s *SQLiteStore) BySymbol(ctx context.Context, symbol string, limit int) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT id, symbol, timeframe, outlook, latest_close, explanation, indicators, created_at
		FROM runs WHERE symbol = ? ORDER BY created_at DESC LIMIT ?
	`, symbol, normalizeLimit(limit))
}

func (s *SQLiteStore) queryRuns(ctx context.Context, query string, args ...interface{}) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r           Run
			latestClose sql.NullFloat64
			indicators  string
		)
		if err := rows.Scan(&r.ID, &r.Symbol, &r.Timeframe, &r.Outlook, &latestClose, &r.Explanation, &indicators, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		r.LatestClose = math.NaN()
		if latestClose.Valid {
			r.LatestClose = latestClose.Float64
		}
		r.Indicators, err = decodeIndicators(indicators)
		if err != nil {
			return nil, fmt.Errorf("failed to decode indicators for run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

const defaultQueryLimit = 20

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultQueryLimit
	}
	return limit
}

// runIndicator is the JSON shape of one stored reading. Value is a
// pointer because encoding/json cannot represent NaN.
type runIndicator struct {
	Value     *float64 `json:"value"`
	Sentiment string   `json:"sentiment"`
}

func encodeIndicators(values map[string]models.IndicatorValue) (string, error) {
	enc := make(map[string]runIndicator, len(values))
	for name, v := range values {
		ri := runIndicator{Sentiment: string(v.Sentiment)}
		if v.Valid() {
			val := v.Value
			ri.Value = &val
		}
		enc[name] = ri
	}
	b, err := json.Marshal(enc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeIndicators(raw string) (map[string]models.IndicatorValue, error) {
	var enc map[string]runIndicator
	if err := json.Unmarshal([]byte(raw), &enc); err != nil {
		return nil, err
	}
	out := make(map[string]models.IndicatorValue, len(enc))
	for name, ri := range enc {
		v := math.NaN()
		if ri.Value != nil {
			v = *ri.Value
		}
		out[name] = models.IndicatorValue{Value: v, Sentiment: models.Sentiment(ri.Sentiment)}
	}
	return out, nil
}
