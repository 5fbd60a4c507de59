package server

import (
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rxtech-lab/argo-signal/internal/pipeline"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

const (
	dashboardRows  = 30
	sparklinePoint = 120
	sparklineW     = 600.0
	sparklineH     = 120.0
)

type dashboardData struct {
	Symbols    []string
	Timeframes []types.Timeframe
	Symbol     string
	Timeframe  types.Timeframe
	Watchlist  []WatchlistRowResponse
	Analysis   AnalysisResponse
	Sparkline  string
	Report     *types.BacktestReport
	Indicators []types.IndicatorName
}

var templateFuncs = template.FuncMap{
	"price": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"pct":   func(v float64) string { return fmt.Sprintf("%+.2f%%", v) },
	"ratio": func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
	"ind": func(v *float64) string {
		if v == nil {
			return "-"
		}

		return fmt.Sprintf("%.2f", *v)
	},
	"color": func(s types.SignalType) string { return s.Color() },
}

// Dashboard renders the watchlist and the selected symbol as HTML.
//
// GET /?symbol=BTC&timeframe=4h&backtest=1
func (s *Server) Dashboard(c *gin.Context) {
	timeframe, err := s.timeframeParam(c)
	if err != nil {
		s.fail(c, err)

		return
	}

	symbol := c.Query("symbol")
	if symbol == "" && len(s.symbols) > 0 {
		symbol = s.symbols[0]
	}

	watchlist := s.analyzer.Watchlist(c.Request.Context(), pipeline.WatchlistRequest{
		Symbols:   s.symbols,
		Timeframe: timeframe,
		Notify:    true,
	})

	data := dashboardData{
		Symbols:    s.symbols,
		Timeframes: types.AllTimeframes(),
		Symbol:     symbol,
		Timeframe:  timeframe,
		Watchlist:  newWatchlistResponse(watchlist),
		Indicators: []types.IndicatorName{
			types.IndicatorBBLower, types.IndicatorBBMiddle, types.IndicatorBBUpper,
			types.IndicatorEMA20, types.IndicatorEMA50, types.IndicatorSMA200, types.IndicatorRSI14,
		},
	}

	if symbol != "" {
		result, err := s.analyzer.Run(c.Request.Context(), pipeline.Request{
			Symbol:    symbol,
			Timeframe: timeframe,
			Backtest:  c.Query("backtest") == "1",
			Notify:    true,
		})
		if err != nil {
			s.fail(c, err)

			return
		}

		data.Analysis = newAnalysisResponse(result, dashboardRows)
		slices.Reverse(data.Analysis.Rows)
		data.Sparkline = sparkline(result.Table)
		data.Report = result.Report
	}

	c.HTML(http.StatusOK, "dashboard", data)
}

// sparkline returns SVG polyline points for the trailing closes of table.
func sparkline(table types.CandleTable) string {
	closes := table.Closes()
	if len(closes) > sparklinePoint {
		closes = closes[len(closes)-sparklinePoint:]
	}

	if len(closes) < 2 {
		return ""
	}

	lo, hi := slices.Min(closes), slices.Max(closes)
	span := hi - lo

	var b strings.Builder

	for i, v := range closes {
		x := float64(i) / float64(len(closes)-1) * sparklineW
		y := sparklineH / 2

		if span > 0 {
			y = sparklineH - (v-lo)/span*sparklineH
		}

		if i > 0 {
			b.WriteByte(' ')
		}

		fmt.Fprintf(&b, "%.1f,%.1f", x, y)
	}

	return b.String()
}

const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="60">
<title>argo-signal {{.Symbol}} {{.Timeframe}}</title>
<style>
body { background: #020617; color: #E5E7EB; font-family: system-ui, sans-serif; margin: 1.5rem; }
a { color: #93c5fd; text-decoration: none; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5rem; }
th, td { padding: .35rem .6rem; border-bottom: 1px solid #111827; text-align: right; }
th:first-child, td:first-child { text-align: left; }
.badge { padding: .15rem .5rem; border-radius: .3rem; color: #020617; font-weight: 600; }
.card { background: #0f172a; border-radius: .5rem; padding: 1rem; margin-bottom: 1.5rem; }
.selected { background: #111827; }
nav a { margin-right: .6rem; }
nav a.active { font-weight: 700; text-decoration: underline; }
</style>
</head>
<body>
<nav>
{{range .Timeframes}}<a href="/?symbol={{$.Symbol}}&timeframe={{.}}" {{if eq . $.Timeframe}}class="active"{{end}}>{{.}}</a>{{end}}
</nav>

<h2>Watchlist</h2>
<table>
<tr><th>Symbol</th><th>Price</th><th>Change</th><th>Signal</th></tr>
{{range .Watchlist}}
<tr {{if eq .Symbol $.Symbol}}class="selected"{{end}}>
<td><a href="/?symbol={{.Symbol}}&timeframe={{$.Timeframe}}">{{.Symbol}}</a></td>
<td>{{if .Available}}{{price .Price}}{{end}}</td>
<td>{{if .Available}}{{pct .ChangePct}}{{end}}</td>
<td><span class="badge" style="background: {{.Color}}">{{.Label}}</span></td>
</tr>
{{end}}
</table>

{{with .Analysis}}{{if .Symbol}}
<div class="card">
<h2>{{.Symbol}} <small>{{.ProviderSymbol}} {{.Timeframe}}</small></h2>
<p><span class="badge" style="background: {{.Color}}">{{.Label}}</span> {{.Reason}}</p>
{{if .Available}}
<p>Price {{price .Price}} USD, last candle {{pct .ChangePct}}</p>
{{if $.Sparkline}}<svg width="600" height="120" viewBox="0 0 600 120"><polyline fill="none" stroke="#93c5fd" stroke-width="1.5" points="{{$.Sparkline}}"/></svg>{{end}}
{{else}}
<p>{{.Message}}</p>
{{end}}
<p><a href="/?symbol={{.Symbol}}&timeframe={{.Timeframe}}&backtest=1">Run backtest</a></p>
</div>

{{if .Rows}}
<table>
<tr><th>Time</th><th>Close</th>{{range $.Indicators}}<th>{{.}}</th>{{end}}<th>Signal</th><th>Reason</th></tr>
{{range .Rows}}
{{$row := .}}
<tr>
<td>{{.Time}}</td><td>{{price .Close}}</td>
{{range $.Indicators}}<td>{{ind (index $row.Indicators .)}}</td>{{end}}
<td><span class="badge" style="background: {{color .Signal}}">{{.Signal}}</span></td>
<td>{{.Reason}}</td>
</tr>
{{end}}
</table>
{{end}}
{{end}}{{end}}

{{with .Report}}
<div class="card">
<h2>Backtest</h2>
<table>
<tr><th>Trades</th><th>Win rate</th><th>Total return</th><th>Buy and hold</th><th>Max drawdown</th></tr>
<tr>
<td>{{.TradeResult.NumberOfTrades}}</td>
<td>{{ratio .TradeResult.WinRate}}</td>
<td>{{ratio .TradeResult.TotalReturn}}</td>
<td>{{ratio .BuyAndHoldReturn}}</td>
<td>{{ratio .TradeResult.MaxDrawdown}}</td>
</tr>
</table>
{{if .OpenPosition}}<p>Open position since {{.OpenPosition.EntryTime.Format "2006-01-02 15:04"}} at {{price .OpenPosition.EntryPrice}}</p>{{end}}
</div>
{{end}}
</body>
</html>
`
