// Package indicators provides technical indicator calculations with parallel processing.
package indicators

import (
	"context"
	"sync"

	apperrors "stock-outlook/internal/errors"
	"stock-outlook/internal/models"
)

// Indicator defines the interface for single-series indicators.
type Indicator interface {
	Name() string
	Calculate(series models.PriceSeries) ([]float64, error)
	Period() int
}

// MultiValueIndicator defines the interface for indicators that return
// several component series.
type MultiValueIndicator interface {
	Name() string
	Calculate(series models.PriceSeries) (map[string][]float64, error)
	Period() int
}

// Engine runs registered indicators over a series using a worker pool.
// Every output it returns is aligned 1:1 with the input series.
type Engine struct {
	workers     int
	indicators  map[string]Indicator
	multiIndics map[string]MultiValueIndicator
	mu          sync.RWMutex
}

// NewEngine creates a new indicator engine with the specified number of workers.
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = 4
	}
	return &Engine{
		workers:     workers,
		indicators:  make(map[string]Indicator),
		multiIndics: make(map[string]MultiValueIndicator),
	}
}

// Register registers a single-series indicator, replacing any previous
// registration under the same name.
func (e *Engine) Register(ind Indicator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.indicators[ind.Name()] = ind
}

// RegisterMulti registers a multi-value indicator.
func (e *Engine) RegisterMulti(ind MultiValueIndicator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.multiIndics[ind.Name()] = ind
}

// CalculateAll calculates every registered indicator in parallel. If any
// indicator rejects its parameters the first such error is returned and the
// partial results are discarded; a short series is not an error, it simply
// produces NaN-heavy output.
func (e *Engine) CalculateAll(ctx context.Context, series models.PriceSeries) (map[string][]float64, map[string]map[string][]float64, error) {
	e.mu.RLock()
	indicators := make([]Indicator, 0, len(e.indicators))
	for _, ind := range e.indicators {
		indicators = append(indicators, ind)
	}
	multiIndics := make([]MultiValueIndicator, 0, len(e.multiIndics))
	for _, ind := range e.multiIndics {
		multiIndics = append(multiIndics, ind)
	}
	e.mu.RUnlock()

	singleResults := make(map[string][]float64)
	multiResults := make(map[string]map[string][]float64)
	var firstErr error
	var mu sync.Mutex
	var wg sync.WaitGroup

	singleWork := make(chan Indicator, len(indicators))
	multiWork := make(chan MultiValueIndicator, len(multiIndics))

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ind := range singleWork {
				select {
				case <-ctx.Done():
					return
				default:
					values, err := ind.Calculate(series)
					mu.Lock()
					if err != nil {
						if firstErr == nil {
							firstErr = apperrors.NewIndicatorError(ind.Name(), ind.Period(), err)
						}
					} else {
						singleResults[ind.Name()] = values
					}
					mu.Unlock()
				}
			}
		}()
	}

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ind := range multiWork {
				select {
				case <-ctx.Done():
					return
				default:
					values, err := ind.Calculate(series)
					mu.Lock()
					if err != nil {
						if firstErr == nil {
							firstErr = apperrors.NewIndicatorError(ind.Name(), ind.Period(), err)
						}
					} else {
						multiResults[ind.Name()] = values
					}
					mu.Unlock()
				}
			}
		}()
	}

	for _, ind := range indicators {
		singleWork <- ind
	}
	close(singleWork)

	for _, ind := range multiIndics {
		multiWork <- ind
	}
	close(multiWork)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}
	return singleResults, multiResults, nil
}

// Calculate calculates a specific single-series indicator by name.
func (e *Engine) Calculate(ctx context.Context, name string, series models.PriceSeries) ([]float64, error) {
	e.mu.RLock()
	ind, ok := e.indicators[name]
	e.mu.RUnlock()

	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrDataNotFound, "indicator %s not registered", name)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return ind.Calculate(series)
	}
}

// CalculateMulti calculates a specific multi-value indicator by name.
func (e *Engine) CalculateMulti(ctx context.Context, name string, series models.PriceSeries) (map[string][]float64, error) {
	e.mu.RLock()
	ind, ok := e.multiIndics[name]
	e.mu.RUnlock()

	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrDataNotFound, "multi-value indicator %s not registered", name)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return ind.Calculate(series)
	}
}

// ListIndicators returns the names of all registered single-series indicators.
func (e *Engine) ListIndicators() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.indicators))
	for name := range e.indicators {
		names = append(names, name)
	}
	return names
}

// ListMultiIndicators returns the names of all registered multi-value indicators.
func (e *Engine) ListMultiIndicators() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.multiIndics))
	for name := range e.multiIndics {
		names = append(names, name)
	}
	return names
}
