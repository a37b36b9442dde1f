// Package strategy holds the per-timeframe analysis recipes and the
// display-set parameters shared by every timeframe.
package strategy

import (
	"sort"
	"strings"
	"sync"

	apperrors "stock-outlook/internal/errors"
	"stock-outlook/internal/models"
)

// Display-set parameters. Every analysis computes these regardless of
// which timeframe strategy is driving the decision.
var (
	DisplayMAWindows  = []int{5, 10, 20, 50, 100, 200}
	DisplayRSIPeriods = []int{6, 12, 24}
)

const (
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9

	KDJPeriod = 9
	KDJSlowK  = 3
	KDJSlowD  = 3

	BollingerPeriod     = 20
	BollingerMultiplier = 2.0
)

// Registry maps timeframe keys to strategy configs. Built-in strategies are
// installed at construction; lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	configs map[models.Timeframe]models.StrategyConfig
}

// NewRegistry creates a registry holding the built-in timeframe strategies.
func NewRegistry() *Registry {
	r := &Registry{
		configs: make(map[models.Timeframe]models.StrategyConfig),
	}
	for _, cfg := range builtinConfigs() {
		r.configs[cfg.Timeframe] = cfg
	}
	return r
}

// Lookup resolves a timeframe key, ignoring case and surrounding space.
func (r *Registry) Lookup(key string) (models.StrategyConfig, error) {
	tf := models.Timeframe(strings.ToLower(strings.TrimSpace(key)))

	r.mu.RLock()
	cfg, ok := r.configs[tf]
	r.mu.RUnlock()

	if !ok {
		return models.StrategyConfig{}, apperrors.Wrapf(apperrors.ErrUnknownTimeframe, "timeframe %q", key)
	}
	return cfg, nil
}

// Register installs or replaces a strategy after validating it.
func (r *Registry) Register(cfg models.StrategyConfig) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	r.mu.Lock()
	r.configs[cfg.Timeframe] = cfg
	r.mu.Unlock()
	return nil
}

// Timeframes returns the registered timeframe keys in sorted order.
func (r *Registry) Timeframes() []models.Timeframe {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Timeframe, 0, len(r.configs))
	for tf := range r.configs {
		out = append(out, tf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks that a strategy config is internally consistent.
func Validate(cfg models.StrategyConfig) error {
	if cfg.Timeframe == "" {
		return apperrors.NewValidationError("timeframe", string(cfg.Timeframe), "must not be empty")
	}
	if len(cfg.MAWindows) < 2 {
		return apperrors.NewValidationError("ma_windows", cfg.MAWindows, "need at least two windows")
	}
	for _, w := range cfg.MAWindows {
		if w <= 0 {
			return apperrors.NewValidationError("ma_windows", w, "windows must be positive")
		}
	}

	switch cfg.RSI.Mode {
	case models.RSISingle:
		if cfg.RSI.Period <= 0 {
			return apperrors.NewValidationError("rsi.period", cfg.RSI.Period, "period must be positive")
		}
	case models.RSIMulti:
		if len(cfg.RSI.Thresholds) == 0 {
			return apperrors.NewValidationError("rsi.thresholds", nil, "need at least one threshold")
		}
		for _, th := range cfg.RSI.Thresholds {
			if th.Period <= 0 {
				return apperrors.NewValidationError("rsi.thresholds", th.Period, "period must be positive")
			}
			if th.Oversold >= th.Overbought {
				return apperrors.NewValidationError("rsi.thresholds", th, "oversold must be below overbought")
			}
		}
	default:
		return apperrors.NewValidationError("rsi.mode", string(cfg.RSI.Mode), "unknown mode")
	}

	if cfg.Bollinger != nil {
		if cfg.Bollinger.Period <= 0 {
			return apperrors.NewValidationError("bollinger.period", cfg.Bollinger.Period, "period must be positive")
		}
		if cfg.Bollinger.Multiplier <= 0 {
			return apperrors.NewValidationError("bollinger.multiplier", cfg.Bollinger.Multiplier, "multiplier must be positive")
		}
	}
	return nil
}

func builtinConfigs() []models.StrategyConfig {
	return []models.StrategyConfig{
		{
			Timeframe: models.TimeframeDaily,
			MAWindows: []int{5, 10},
			RSI: models.RSISpec{
				Mode: models.RSIMulti,
				Thresholds: []models.RSIThreshold{
					{Period: 6, Oversold: 25, Overbought: 75},
					{Period: 12, Oversold: 30, Overbought: 70},
					{Period: 24, Oversold: 35, Overbought: 65},
				},
			},
			Bollinger: &models.BollingerSpec{Period: BollingerPeriod, Multiplier: BollingerMultiplier},
		},
		{
			Timeframe: models.TimeframeWeekly,
			MAWindows: []int{10, 20},
			RSI: models.RSISpec{
				Mode:   models.RSISingle,
				Period: 14,
			},
			Bollinger: &models.BollingerSpec{Period: BollingerPeriod, Multiplier: BollingerMultiplier},
		},
		{
			Timeframe: models.TimeframeMonthly,
			MAWindows: []int{20, 60},
			RSI: models.RSISpec{
				Mode:   models.RSISingle,
				Period: 14,
			},
			Bollinger: &models.BollingerSpec{Period: BollingerPeriod, Multiplier: BollingerMultiplier},
		},
	}
}
