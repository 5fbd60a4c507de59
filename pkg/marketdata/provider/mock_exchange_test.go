package provider

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/rxtech-lab/argo-signal/internal/types"
)

// mockExchange serves Bitfinex and Binance candle endpoints from a fixed
// ascending candle series.
type mockExchange struct {
	mu         sync.Mutex
	candles    []types.Candle
	keys       []string
	userAgents []string
	status     int
	rawBody    string
	// truncated holds open times (ms) whose Bitfinex row is served short
	truncated map[int64]bool
}

func newMockExchange(candles []types.Candle) (*mockExchange, *httptest.Server) {
	exchange := &mockExchange{candles: candles, status: http.StatusOK}

	router := mux.NewRouter()
	router.HandleFunc("/candles/{key}/hist", exchange.handleBitfinexCandles).Methods("GET")
	router.HandleFunc("/api/v3/klines", exchange.handleBinanceKlines).Methods("GET")

	return exchange, httptest.NewServer(router)
}

func hourlyCandles(n int) []types.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]types.Candle, n)

	for i := range candles {
		price := 100 + float64(i)
		candles[i] = types.Candle{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   price - 0.5,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 10 + float64(i),
		}
	}

	return candles
}

// window returns the newest limit candles whose open time is <= end (ms).
func (m *mockExchange) window(limit int, end int64) []types.Candle {
	selected := make([]types.Candle, 0, len(m.candles))

	for _, c := range m.candles {
		if end > 0 && c.Time.UnixMilli() > end {
			continue
		}

		selected = append(selected, c)
	}

	if limit > 0 && len(selected) > limit {
		selected = selected[len(selected)-limit:]
	}

	return selected
}

func (m *mockExchange) record(r *http.Request, key string) (int, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys = append(m.keys, key)
	m.userAgents = append(m.userAgents, r.Header.Get("User-Agent"))

	return m.status, m.rawBody
}

func (m *mockExchange) handleBitfinexCandles(w http.ResponseWriter, r *http.Request) {
	status, rawBody := m.record(r, mux.Vars(r)["key"])

	m.mu.Lock()
	truncated := m.truncated
	m.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, `["error",10020,"limit: invalid"]`, status)
		return
	}

	if rawBody != "" {
		_, _ = w.Write([]byte(rawBody))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	end, _ := strconv.ParseInt(r.URL.Query().Get("end"), 10, 64)

	selected := m.window(limit, end)
	rows := make([][]float64, 0, len(selected))

	// sort=-1: newest first
	for i := len(selected) - 1; i >= 0; i-- {
		c := selected[i]
		row := []float64{float64(c.Time.UnixMilli()), c.Open, c.Close, c.High, c.Low, c.Volume}
		if truncated[c.Time.UnixMilli()] {
			row = row[:3]
		}

		rows = append(rows, row)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

func (m *mockExchange) handleBinanceKlines(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status, _ := m.record(r, query.Get("symbol")+"@"+query.Get("interval"))

	if status != http.StatusOK {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, status)
		return
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	end, _ := strconv.ParseInt(query.Get("endTime"), 10, 64)

	selected := m.window(limit, end)
	rows := make([][]any, 0, len(selected))

	for _, c := range selected {
		format := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
		rows = append(rows, []any{
			c.Time.UnixMilli(),
			format(c.Open),
			format(c.High),
			format(c.Low),
			format(c.Close),
			format(c.Volume),
			c.Time.Add(time.Hour).UnixMilli() - 1,
			"0",
			1,
			"0",
			"0",
			"0",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

func (m *mockExchange) requestKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.keys...)
}
