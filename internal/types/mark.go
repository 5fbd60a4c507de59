package types

import "time"

type MarkShape string

const (
	MarkShapeCircle   MarkShape = "circle"
	MarkShapeTriangle MarkShape = "triangle"
)

type MarkColor string

const (
	MarkColorRed    MarkColor = "red"
	MarkColorGreen  MarkColor = "green"
	MarkColorYellow MarkColor = "yellow"
)

// Mark annotates one candle of a chart with a signal.
type Mark struct {
	Symbol    string
	Timeframe Timeframe
	Time      time.Time
	Price     float64
	Color     MarkColor
	Shape     MarkShape
	Signal    SignalType
	Title     string
	Message   string
}

// NewSignalMark builds the chart mark for an actionable signal.
func NewSignalMark(table CandleTable, signal Signal) Mark {
	color := MarkColorYellow
	shape := MarkShapeCircle

	switch {
	case signal.Type.IsBuy():
		color = MarkColorGreen
		shape = MarkShapeTriangle
	case signal.Type.IsSell():
		color = MarkColorRed
		shape = MarkShapeTriangle
	}

	var price float64
	if signal.Index >= 0 && signal.Index < table.Len() {
		price = table.Candles[signal.Index].Close
	}

	return Mark{
		Symbol:    table.Symbol,
		Timeframe: table.Timeframe,
		Time:      signal.Time,
		Price:     price,
		Color:     color,
		Shape:     shape,
		Signal:    signal.Type,
		Title:     string(signal.Type),
		Message:   signal.Reason,
	}
}
