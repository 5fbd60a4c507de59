package types

import "time"

// PositionSide is the side of a simulated position.
type PositionSide string

const (
	PositionSideFlat PositionSide = "FLAT"
	PositionSideLong PositionSide = "LONG"
)

// ExitReason explains why a simulated position was closed.
type ExitReason string

const (
	ExitReasonSignal      ExitReason = "signal"
	ExitReasonHoldTimeout ExitReason = "hold_timeout"
	// ExitReasonOpen marks a position still open when the data ran out.
	ExitReasonOpen ExitReason = "open"
)

// Trade is one simulated round trip. For an open position the exit fields
// hold the mark-to-market values of the last candle.
type Trade struct {
	EntryIndex  int          `json:"entry_index" yaml:"entry_index" csv:"entry_index"`
	EntryTime   time.Time    `json:"entry_time" yaml:"entry_time" csv:"entry_time"`
	EntryPrice  float64      `json:"entry_price" yaml:"entry_price" csv:"entry_price"`
	EntrySignal SignalType   `json:"entry_signal" yaml:"entry_signal" csv:"entry_signal"`
	ExitIndex   int          `json:"exit_index" yaml:"exit_index" csv:"exit_index"`
	ExitTime    time.Time    `json:"exit_time" yaml:"exit_time" csv:"exit_time"`
	ExitPrice   float64      `json:"exit_price" yaml:"exit_price" csv:"exit_price"`
	ExitSignal  SignalType   `json:"exit_signal" yaml:"exit_signal" csv:"exit_signal"`
	ExitReason  ExitReason   `json:"exit_reason" yaml:"exit_reason" csv:"exit_reason"`
	Side        PositionSide `json:"side" yaml:"side" csv:"side"`
	// Return is (exit - entry) / entry
	Return float64 `json:"return" yaml:"return" csv:"return"`
	Open   bool    `json:"open" yaml:"open" csv:"open"`
}

// HoldingCandles is the number of candles between entry and exit.
func (t Trade) HoldingCandles() int {
	return t.ExitIndex - t.EntryIndex
}

// IsWin reports whether the trade made money.
func (t Trade) IsWin() bool {
	return t.Return > 0
}
