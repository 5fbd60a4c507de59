package marker

import "github.com/rxtech-lab/argo-signal/internal/types"

// Marker records chart marks and simulated trades of a backtest run.
type Marker interface {
	// Mark records one chart annotation
	Mark(mark types.Mark) error
	// RecordTrade records one simulated trade of the given symbol and timeframe
	RecordTrade(symbol string, timeframe types.Timeframe, trade types.Trade) error
	// GetMarks returns all the marks in time order
	GetMarks() ([]types.Mark, error)
}

// RecordRun marks every actionable signal and records every trade of a report,
// including the open position if any.
func RecordRun(m Marker, table types.CandleTable, signals []types.Signal, report types.BacktestReport) error {
	for _, signal := range signals {
		if !signal.Type.IsActionable() {
			continue
		}

		if err := m.Mark(types.NewSignalMark(table, signal)); err != nil {
			return err
		}
	}

	trades := report.Trades
	if report.OpenPosition != nil {
		trades = append(append([]types.Trade(nil), trades...), *report.OpenPosition)
	}

	for _, trade := range trades {
		if err := m.RecordTrade(table.Symbol, table.Timeframe, trade); err != nil {
			return err
		}
	}

	return nil
}
