package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradeResult struct {
	// Count of closed trades.
	NumberOfTrades int `yaml:"number_of_trades" json:"number_of_trades"`
	// Count of closed trades with a positive return.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades" json:"number_of_winning_trades"`
	// Count of closed trades with a zero or negative return.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades" json:"number_of_losing_trades"`
	// Winning trades divided by trades, 0 without trades.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// Total return, compounded or summed depending on Compounding.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// Mean trade return.
	AverageReturn float64 `yaml:"average_return" json:"average_return"`
	// Best and worst single trade return.
	BestTrade  float64 `yaml:"best_trade" json:"best_trade"`
	WorstTrade float64 `yaml:"worst_trade" json:"worst_trade"`
	// Largest peak to trough decline of the equity curve, as a fraction of the peak.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// Whether TotalReturn compounds.
	Compounding bool `yaml:"compounding" json:"compounding"`
}

type TradeHoldingTime struct {
	// Minimum holding time of a trade in candles
	Min int `yaml:"min" json:"min"`
	// Maximum holding time of a trade in candles
	Max int `yaml:"max" json:"max"`
	// Average holding time of a trade in candles
	Avg int `yaml:"avg" json:"avg"`
}

// BacktestReport is the output of a simulator run.
type BacktestReport struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	Symbol    string    `yaml:"symbol" json:"symbol"`
	Timeframe Timeframe `yaml:"timeframe" json:"timeframe"`
	// Closed trades in entry order.
	Trades []Trade `yaml:"trades" json:"trades"`
	// Position still open at the end of the data, if any.
	OpenPosition *Trade           `yaml:"open_position,omitempty" json:"open_position,omitempty"`
	TradeResult  TradeResult      `yaml:"trade_result" json:"trade_result"`
	HoldingTime  TradeHoldingTime `yaml:"holding_time" json:"holding_time"`
	// Return of buying the first close and holding to the last.
	BuyAndHoldReturn float64 `yaml:"buy_and_hold_return" json:"buy_and_hold_return"`
	// Horizon is the fixed-horizon evaluation of every actionable signal.
	Horizon *HorizonReport `yaml:"horizon,omitempty" json:"horizon,omitempty"`
	// MarksFilePath and TradesFilePath are set when the run was exported.
	MarksFilePath  string `yaml:"marks_file_path,omitempty" json:"marks_file_path,omitempty"`
	TradesFilePath string `yaml:"trades_file_path,omitempty" json:"trades_file_path,omitempty"`
}

// HorizonOutcome is the result of one actionable signal looked at H candles later.
type HorizonOutcome struct {
	Index     int        `yaml:"index" json:"index"`
	Time      time.Time  `yaml:"time" json:"time"`
	Signal    SignalType `yaml:"signal" json:"signal"`
	Price     float64    `yaml:"price" json:"price"`
	ExitPrice float64    `yaml:"exit_price" json:"exit_price"`
	// ReturnPct is the price change in percent.
	ReturnPct float64 `yaml:"return_pct" json:"return_pct"`
	// Correct is true when the move agrees with the signal's direction.
	Correct bool `yaml:"correct" json:"correct"`
}

// HorizonSummary aggregates outcomes for one group of signals.
type HorizonSummary struct {
	Trades       int     `yaml:"trades" json:"trades"`
	AvgReturnPct float64 `yaml:"avg_return_pct" json:"avg_return_pct"`
	HitRate      float64 `yaml:"hit_rate" json:"hit_rate"`
}

// HorizonReport is the fixed-horizon evaluation of a signal sequence.
type HorizonReport struct {
	Horizon  int                           `yaml:"horizon" json:"horizon"`
	Outcomes []HorizonOutcome              `yaml:"outcomes" json:"outcomes"`
	Overall  HorizonSummary                `yaml:"overall" json:"overall"`
	BySignal map[SignalType]HorizonSummary `yaml:"by_signal" json:"by_signal"`
}

// WriteBacktestReports writes the reports to path as YAML.
func WriteBacktestReports(path string, reports []BacktestReport) error {
	data, err := yaml.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest reports to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest reports to file: %w", err)
	}

	return nil
}
