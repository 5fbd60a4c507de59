package types

import (
	"time"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// SignalType is the discrete trading signal attached to a candle.
type SignalType string

const (
	// SignalStrongBuy is a high conviction long entry
	SignalStrongBuy SignalType = "STRONG BUY"
	// SignalBuy is a long entry
	SignalBuy SignalType = "BUY"
	// SignalHold means no action
	SignalHold SignalType = "HOLD"
	// SignalSell is a long exit
	SignalSell SignalType = "SELL"
	// SignalStrongSell is a high conviction long exit
	SignalStrongSell SignalType = "STRONG SELL"
)

// AllSignalTypes returns the valid signals from most bullish to most bearish.
func AllSignalTypes() []SignalType {
	return []SignalType{SignalStrongBuy, SignalBuy, SignalHold, SignalSell, SignalStrongSell}
}

// ParseSignalType converts a raw value into a SignalType, rejecting anything
// outside the enumeration.
func ParseSignalType(raw string) (SignalType, error) {
	s := SignalType(raw)
	if err := s.Validate(); err != nil {
		return "", err
	}

	return s, nil
}

// Validate returns ErrCodeInvalidSignalValue for values outside the enumeration.
func (s SignalType) Validate() error {
	for _, v := range AllSignalTypes() {
		if v == s {
			return nil
		}
	}

	return errors.Newf(errors.ErrCodeInvalidSignalValue, "invalid signal value: %q", string(s))
}

// IsBuy reports whether the signal opens a long position.
func (s SignalType) IsBuy() bool {
	return s == SignalBuy || s == SignalStrongBuy
}

// IsSell reports whether the signal closes a long position.
func (s SignalType) IsSell() bool {
	return s == SignalSell || s == SignalStrongSell
}

// IsActionable is true for everything except HOLD.
func (s SignalType) IsActionable() bool {
	return s.IsBuy() || s.IsSell()
}

// Direction is +1 for buys, -1 for sells and 0 otherwise.
func (s SignalType) Direction() int {
	switch {
	case s.IsBuy():
		return 1
	case s.IsSell():
		return -1
	default:
		return 0
	}
}

// Color is the badge color the dashboard and watchlist use for the signal.
func (s SignalType) Color() string {
	switch s {
	case SignalStrongBuy:
		return "#00e676"
	case SignalBuy:
		return "#81c784"
	case SignalSell:
		return "#e57373"
	case SignalStrongSell:
		return "#d32f2f"
	default:
		return "#9E9E9E"
	}
}

// NoDataColor is the badge color shown when candles could not be fetched.
const NoDataColor = "#BDBDBD"

// Signal is the evaluated signal for one candle.
type Signal struct {
	// Index is the position of the candle in its table
	Index int `json:"index" yaml:"index"`
	// Time is the open time of the candle
	Time time.Time `json:"time" yaml:"time"`
	// Type is the signal value
	Type SignalType `json:"type" yaml:"type"`
	// Rule is the name of the rule that produced the signal
	Rule string `json:"rule" yaml:"rule"`
	// Reason is a human readable justification
	Reason string `json:"reason" yaml:"reason"`
}
