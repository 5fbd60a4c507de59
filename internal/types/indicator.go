package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// IndicatorType identifies an indicator implementation.
type IndicatorType string

const (
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeMA             IndicatorType = "ma"
)

// IndicatorName is the key of one output column in a snapshot.
type IndicatorName string

const (
	IndicatorBBUpper  IndicatorName = "BB_UPPER"
	IndicatorBBMiddle IndicatorName = "BB_MIDDLE"
	IndicatorBBLower  IndicatorName = "BB_LOWER"
	IndicatorEMA20    IndicatorName = "EMA20"
	IndicatorEMA50    IndicatorName = "EMA50"
	IndicatorSMA200   IndicatorName = "SMA200"
	IndicatorRSI14    IndicatorName = "RSI14"
)

// IndicatorSnapshot holds every indicator value at one candle index.
// A missing or None value means there was not enough history.
type IndicatorSnapshot struct {
	Index  int
	Time   time.Time
	Values map[IndicatorName]optional.Option[float64]
}

// NewIndicatorSnapshot creates an empty snapshot for the given index.
func NewIndicatorSnapshot(index int, t time.Time) IndicatorSnapshot {
	return IndicatorSnapshot{
		Index:  index,
		Time:   t,
		Values: make(map[IndicatorName]optional.Option[float64]),
	}
}

// Get returns the value for name, None when undefined.
func (s IndicatorSnapshot) Get(name IndicatorName) optional.Option[float64] {
	v, ok := s.Values[name]
	if !ok {
		return optional.None[float64]()
	}

	return v
}

// Defined reports whether every name has a value.
func (s IndicatorSnapshot) Defined(names ...IndicatorName) bool {
	for _, name := range names {
		if s.Get(name).IsNone() {
			return false
		}
	}

	return true
}

// Float returns the value or zero. Callers must check Defined first.
func (s IndicatorSnapshot) Float(name IndicatorName) float64 {
	return s.Get(name).TakeOr(0)
}

// Pointers converts the snapshot to nil-able floats, the shape the JSON API uses.
func (s IndicatorSnapshot) Pointers() map[IndicatorName]*float64 {
	out := make(map[IndicatorName]*float64, len(s.Values))
	for name, v := range s.Values {
		if v.IsSome() {
			f := v.Unwrap()
			out[name] = &f
		} else {
			out[name] = nil
		}
	}

	return out
}
