// Package indicator computes technical indicators over a candle table.
// Every function is a pure function of the close prefix up to each index.
package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name is the unique registry key, e.g. "EMA20" or "BB20"
	Name() string
	// Type returns the kind of indicator
	Type() types.IndicatorType
	// Config applies positional parameters, see each implementation
	Config(params ...any) error
	// Compute returns one series per output column, each as long as closes
	Compute(closes []float64) (map[types.IndicatorName]Series, error)
}

// Series is an indicator column. Indices without enough history hold None.
type Series []optional.Option[float64]

func newSeries(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = optional.None[float64]()
	}

	return s
}

// At returns the value at i, None when out of range.
func (s Series) At(i int) optional.Option[float64] {
	if i < 0 || i >= len(s) {
		return optional.None[float64]()
	}

	return s[i]
}

// Last returns the final value, None for an empty series.
func (s Series) Last() optional.Option[float64] {
	return s.At(len(s) - 1)
}

// FirstDefined returns the first index with a value, or -1.
func (s Series) FirstDefined() int {
	for i, v := range s {
		if v.IsSome() {
			return i
		}
	}

	return -1
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
