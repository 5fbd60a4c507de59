package types

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// Candle is a single OHLCV bar. Time is the bar's open time.
type Candle struct {
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// Range is high minus low.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// UpperWick is the distance from the top of the body to the high.
func (c Candle) UpperWick() float64 {
	return c.High - math.Max(c.Open, c.Close)
}

// CandleTable is an ordered run of candles for one symbol and timeframe.
// Candles must have strictly increasing timestamps. Gaps are allowed.
type CandleTable struct {
	Symbol    string    `json:"symbol" yaml:"symbol"`
	Timeframe Timeframe `json:"timeframe" yaml:"timeframe"`
	Candles   []Candle  `json:"candles" yaml:"candles"`
}

// Len returns the number of candles.
func (t CandleTable) Len() int {
	return len(t.Candles)
}

// Closes returns the close prices in table order.
func (t CandleTable) Closes() []float64 {
	closes := make([]float64, len(t.Candles))
	for i, c := range t.Candles {
		closes[i] = c.Close
	}

	return closes
}

// Last returns the most recent candle, or None for an empty table.
func (t CandleTable) Last() optional.Option[Candle] {
	if len(t.Candles) == 0 {
		return optional.None[Candle]()
	}

	return optional.Some(t.Candles[len(t.Candles)-1])
}

// LastChangePct is the percent change of the last close against the one before it.
// Zero when fewer than two candles are available.
func (t CandleTable) LastChangePct() float64 {
	n := len(t.Candles)
	if n < 2 || t.Candles[n-2].Close == 0 {
		return 0
	}

	prev := t.Candles[n-2].Close

	return (t.Candles[n-1].Close - prev) / prev * 100
}

// Validate checks ordering and prices.
func (t CandleTable) Validate() error {
	for i, c := range t.Candles {
		if c.Close <= 0 || math.IsNaN(c.Close) || math.IsInf(c.Close, 0) {
			return errors.Newf(errors.ErrCodeInvalidCandleTable, "candle %d of %s has invalid close %v", i, t.Symbol, c.Close)
		}

		if i > 0 && !c.Time.After(t.Candles[i-1].Time) {
			return errors.Newf(errors.ErrCodeInvalidCandleTable, "candle %d of %s is not after candle %d (%s <= %s)",
				i, t.Symbol, i-1, c.Time.Format(time.RFC3339), t.Candles[i-1].Time.Format(time.RFC3339))
		}
	}

	return nil
}
