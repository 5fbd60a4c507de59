package writer

import (
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// CandleWriter defines the interface for exporting candles to a destination.
type CandleWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single candle of the given table identity.
	Write(symbol string, timeframe types.Timeframe, candle types.Candle) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

// WriteTable runs a full Initialize, Write, Finalize, Close cycle for one table.
func WriteTable(w CandleWriter, table types.CandleTable) (outputPath string, err error) {
	if err := w.Initialize(); err != nil {
		return "", err
	}

	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for _, candle := range table.Candles {
		if err := w.Write(table.Symbol, table.Timeframe, candle); err != nil {
			return "", err
		}
	}

	return w.Finalize()
}
