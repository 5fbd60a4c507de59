package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rxtech-lab/argo-signal/internal/types"
)

// Metrics holds the Prometheus metrics of the refresh pipeline.
type Metrics struct {
	PassesTotal   *prometheus.CounterVec // labels: symbol, timeframe, status
	PassDuration  prometheus.Histogram
	FetchFailures *prometheus.CounterVec // labels: symbol, timeframe
	SignalChanges *prometheus.CounterVec // labels: symbol, timeframe
	LatestSignal  *prometheus.GaugeVec   // labels: symbol, timeframe
	Candles       *prometheus.GaugeVec   // labels: symbol, timeframe
}

// NewMetrics creates the pipeline metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PassesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argo_signal_passes_total",
			Help: "Refresh passes by outcome",
		}, []string{"symbol", "timeframe", "status"}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "argo_signal_pass_duration_seconds",
			Help:    "Duration of one refresh pass including the fetch",
			Buckets: prometheus.DefBuckets,
		}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argo_signal_fetch_failures_total",
			Help: "Candle fetches that ended in no data available",
		}, []string{"symbol", "timeframe"}),
		SignalChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argo_signal_changes_total",
			Help: "Signal changes reported by the change detector",
		}, []string{"symbol", "timeframe"}),
		LatestSignal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "argo_signal_latest",
			Help: "Latest signal (2=STRONG BUY, 1=BUY, 0=HOLD, -1=SELL, -2=STRONG SELL)",
		}, []string{"symbol", "timeframe"}),
		Candles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "argo_signal_candles",
			Help: "Candles in the last fetched table",
		}, []string{"symbol", "timeframe"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.PassesTotal,
			m.PassDuration,
			m.FetchFailures,
			m.SignalChanges,
			m.LatestSignal,
			m.Candles,
		)
	}

	return m
}

// SignalScore maps a signal onto the gauge scale.
func SignalScore(s types.SignalType) float64 {
	switch s {
	case types.SignalStrongBuy:
		return 2
	case types.SignalBuy:
		return 1
	case types.SignalSell:
		return -1
	case types.SignalStrongSell:
		return -2
	default:
		return 0
	}
}

func (m *Metrics) observe(result Result, seconds float64) {
	if m == nil {
		return
	}

	tf := string(result.Timeframe)
	status := "ok"

	if !result.Available {
		status = "no_data"
		m.FetchFailures.WithLabelValues(result.Symbol, tf).Inc()
	} else {
		m.LatestSignal.WithLabelValues(result.Symbol, tf).Set(SignalScore(result.Latest.Type))
		m.Candles.WithLabelValues(result.Symbol, tf).Set(float64(result.Table.Len()))
	}

	if result.Changed {
		m.SignalChanges.WithLabelValues(result.Symbol, tf).Inc()
	}

	m.PassesTotal.WithLabelValues(result.Symbol, tf, status).Inc()
	m.PassDuration.Observe(seconds)
}
