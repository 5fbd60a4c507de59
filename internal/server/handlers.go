package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-signal/internal/pipeline"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
)

// defaultRows is how many trailing candles an analysis response carries.
const defaultRows = 200

// Health handles /healthz and prevents caching.
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Providers lists the supported market data providers.
func Providers(c *gin.Context) {
	c.JSON(http.StatusOK, marketdata.ListProviderInfo())
}

// Symbols lists the watchlist symbols, timeframes and signal values.
func (s *Server) Symbols(c *gin.Context) {
	c.JSON(http.StatusOK, SymbolsResponse{
		Symbols:    s.symbols,
		Timeframes: types.AllTimeframes(),
		Signals:    types.AllSignalTypes(),
	})
}

// Watchlist refreshes every watchlist symbol.
//
// GET /api/v1/watchlist?timeframe=1d
func (s *Server) Watchlist(c *gin.Context) {
	timeframe, err := s.timeframeParam(c)
	if err != nil {
		s.fail(c, err)

		return
	}

	rows := s.analyzer.Watchlist(c.Request.Context(), pipeline.WatchlistRequest{
		Symbols:   s.symbols,
		Timeframe: timeframe,
		Notify:    true,
	})

	c.JSON(http.StatusOK, newWatchlistResponse(rows))
}

// Analysis runs one pass for a symbol. A failed fetch still answers 200 with
// available=false.
//
// GET /api/v1/analysis/:symbol?timeframe=1h&limit=500&rows=100
func (s *Server) Analysis(c *gin.Context) {
	req, err := s.request(c)
	if err != nil {
		s.fail(c, err)

		return
	}

	rows, err := intQuery(c, "rows", defaultRows)
	if err != nil {
		s.fail(c, err)

		return
	}

	req.Notify = true

	result, err := s.analyzer.Run(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)

		return
	}

	c.JSON(http.StatusOK, newAnalysisResponse(result, rows))
}

// Backtest replays the signal sequence of a symbol. Without data it answers
// 502 since there is nothing to replay.
//
// GET /api/v1/backtest/:symbol?timeframe=1d&limit=1000
func (s *Server) Backtest(c *gin.Context) {
	req, err := s.request(c)
	if err != nil {
		s.fail(c, err)

		return
	}

	req.Backtest = true

	result, err := s.analyzer.Run(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)

		return
	}

	if !result.Available || result.Report == nil {
		s.fail(c, errors.Newf(errors.ErrCodeNoDataFound, "%s: %s", pipeline.NoDataReason, result.Message))

		return
	}

	c.JSON(http.StatusOK, result.Report)
}

// History lists recorded signal changes, newest first.
//
// GET /api/v1/signals/:symbol/history?timeframe=1d&limit=20
func (s *Server) History(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "signal history is disabled", Code: int(errors.ErrCodeHistoryQueryFailed)})

		return
	}

	timeframe, err := s.timeframeParam(c)
	if err != nil {
		s.fail(c, err)

		return
	}

	limit, err := intQuery(c, "limit", 20)
	if err != nil {
		s.fail(c, err)

		return
	}

	entries, err := s.history.List(c.Request.Context(), c.Param("symbol"), timeframe, limit)
	if err != nil {
		s.fail(c, err)

		return
	}

	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntryResponse{
			Signal:     e.Signal,
			Rule:       e.Rule,
			Reason:     e.Reason,
			Price:      e.Price,
			CandleTime: e.CandleTime,
			RecordedAt: e.RecordedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) request(c *gin.Context) (pipeline.Request, error) {
	timeframe, err := s.timeframeParam(c)
	if err != nil {
		return pipeline.Request{}, err
	}

	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		return pipeline.Request{}, err
	}

	return pipeline.Request{
		Symbol:    c.Param("symbol"),
		Timeframe: timeframe,
		Limit:     limit,
	}, nil
}

func (s *Server) timeframeParam(c *gin.Context) (types.Timeframe, error) {
	raw := c.Query("timeframe")
	if raw == "" {
		return s.timeframe, nil
	}

	return types.ParseTimeframe(raw)
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be a non-negative integer, got %q", name, raw)
	}

	return v, nil
}

// statusFor maps error categories onto HTTP status codes.
func statusFor(err error) int {
	code := errors.GetCode(err)

	switch {
	case code == errors.ErrCodeNoDataFound:
		return http.StatusBadGateway
	case code.Category() == "validation":
		return http.StatusBadRequest
	case code.Category() == "marketdata":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}

	c.JSON(status, ErrorResponse{Error: err.Error(), Code: int(errors.GetCode(err))})
}
