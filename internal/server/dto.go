package server

import (
	"time"

	"github.com/rxtech-lab/argo-signal/internal/pipeline"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// SymbolsResponse lists what the API accepts.
type SymbolsResponse struct {
	Symbols    []string           `json:"symbols"`
	Timeframes []types.Timeframe  `json:"timeframes"`
	Signals    []types.SignalType `json:"signals"`
}

// RowResponse is one candle with its indicators and signal.
type RowResponse struct {
	Time   string  `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
	// Indicators holds null for values without enough history.
	Indicators map[types.IndicatorName]*float64 `json:"indicators"`
	Signal     types.SignalType                 `json:"signal"`
	Rule       string                           `json:"rule"`
	Reason     string                           `json:"reason"`
}

// AnalysisResponse is the latest signal of a symbol plus the tail of its table.
type AnalysisResponse struct {
	Symbol         string           `json:"symbol"`
	ProviderSymbol string           `json:"provider_symbol"`
	Timeframe      types.Timeframe  `json:"timeframe"`
	Available      bool             `json:"available"`
	Message        string           `json:"message,omitempty"`
	Signal         types.SignalType `json:"signal"`
	Label          string           `json:"label"`
	Color          string           `json:"color"`
	Rule           string           `json:"rule"`
	Reason         string           `json:"reason"`
	Price          float64          `json:"price"`
	ChangePct      float64          `json:"change_pct"`
	Candles        int              `json:"candles"`
	Rows           []RowResponse    `json:"rows"`
}

// WatchlistRowResponse is one watchlist entry.
type WatchlistRowResponse struct {
	Symbol    string           `json:"symbol"`
	Price     float64          `json:"price"`
	ChangePct float64          `json:"change_pct"`
	Signal    types.SignalType `json:"signal"`
	Label     string           `json:"label"`
	Color     string           `json:"color"`
	Reason    string           `json:"reason"`
	Available bool             `json:"available"`
}

// HistoryEntryResponse is one recorded signal change.
type HistoryEntryResponse struct {
	Signal     types.SignalType `json:"signal"`
	Rule       string           `json:"rule"`
	Reason     string           `json:"reason"`
	Price      float64          `json:"price"`
	CandleTime time.Time        `json:"candle_time"`
	RecordedAt time.Time        `json:"recorded_at"`
}

func newAnalysisResponse(result pipeline.Result, tail int) AnalysisResponse {
	label := string(result.Latest.Type)
	color := result.Latest.Type.Color()

	if !result.Available {
		label = pipeline.NoDataLabel
		color = types.NoDataColor
	}

	resp := AnalysisResponse{
		Symbol:         result.Symbol,
		ProviderSymbol: result.ProviderSymbol,
		Timeframe:      result.Timeframe,
		Available:      result.Available,
		Message:        result.Message,
		Signal:         result.Latest.Type,
		Label:          label,
		Color:          color,
		Rule:           result.Latest.Rule,
		Reason:         result.Latest.Reason,
		Price:          result.Price,
		ChangePct:      result.ChangePct,
		Candles:        result.Table.Len(),
		Rows:           []RowResponse{},
	}

	start := max(result.Table.Len()-tail, 0)
	for i := start; i < result.Table.Len(); i++ {
		resp.Rows = append(resp.Rows, newRowResponse(result, i))
	}

	return resp
}

func newRowResponse(result pipeline.Result, i int) RowResponse {
	candle := result.Table.Candles[i]
	row := RowResponse{
		Time:       candle.Time.UTC().Format(time.RFC3339),
		Open:       candle.Open,
		High:       candle.High,
		Low:        candle.Low,
		Close:      candle.Close,
		Volume:     candle.Volume,
		Indicators: make(map[types.IndicatorName]*float64),
	}

	if i < len(result.Snapshots) {
		for name, value := range result.Snapshots[i].Values {
			if value.IsSome() {
				v := value.Unwrap()
				row.Indicators[name] = &v
			} else {
				row.Indicators[name] = nil
			}
		}
	}

	if i < len(result.Signals) {
		row.Signal = result.Signals[i].Type
		row.Rule = result.Signals[i].Rule
		row.Reason = result.Signals[i].Reason
	}

	return row
}

func newWatchlistResponse(rows []pipeline.WatchlistRow) []WatchlistRowResponse {
	out := make([]WatchlistRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, WatchlistRowResponse{
			Symbol:    row.Symbol,
			Price:     row.Price,
			ChangePct: row.ChangePct,
			Signal:    row.Signal,
			Label:     row.Label(),
			Color:     row.Color(),
			Reason:    row.Reason,
			Available: row.Available,
		})
	}

	return out
}
