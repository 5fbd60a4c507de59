package indicator

import (
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// Engine turns a candle table into one IndicatorSnapshot per candle.
type Engine struct {
	registry IndicatorRegistry
}

// NewEngine creates an engine computing every indicator in registry.
func NewEngine(registry IndicatorRegistry) *Engine {
	return &Engine{registry: registry}
}

// NewDefaultRegistry registers BB(20,2), EMA20, EMA50, SMA200 and RSI14.
func NewDefaultRegistry() (IndicatorRegistry, error) {
	registry := NewIndicatorRegistry()

	ema50 := NewEMA()
	if err := ema50.Config(50); err != nil {
		return nil, err
	}

	for _, ind := range []Indicator{NewBollingerBands(), NewEMA(), ema50, NewMA(), NewRSI()} {
		if err := registry.RegisterIndicator(ind); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// NewDefaultEngine creates an engine over NewDefaultRegistry.
func NewDefaultEngine() (*Engine, error) {
	registry, err := NewDefaultRegistry()
	if err != nil {
		return nil, err
	}

	return NewEngine(registry), nil
}

// Compute validates the table and evaluates every registered indicator.
// Two indicators writing the same output column is a configuration error.
func (e *Engine) Compute(table types.CandleTable) ([]types.IndicatorSnapshot, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}

	closes := table.Closes()
	columns := make(map[types.IndicatorName]Series)

	for _, name := range e.registry.ListIndicators() {
		ind, err := e.registry.GetIndicator(name)
		if err != nil {
			return nil, err
		}

		out, err := ind.Compute(closes)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to compute %s", name)
		}

		for col, series := range out {
			if _, exists := columns[col]; exists {
				return nil, errors.Newf(errors.ErrCodeInvalidIndicatorConfig, "indicator %s writes column %s which is already computed", name, col)
			}

			columns[col] = series
		}
	}

	snapshots := make([]types.IndicatorSnapshot, table.Len())
	for i, candle := range table.Candles {
		snap := types.NewIndicatorSnapshot(i, candle.Time)
		for col, series := range columns {
			snap.Values[col] = series.At(i)
		}

		snapshots[i] = snap
	}

	return snapshots, nil
}
