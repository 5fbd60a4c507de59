// Package server exposes the refresh pipeline over HTTP: a JSON API, an HTML
// dashboard, Prometheus metrics and a health check.
package server

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-signal/internal/history"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/pipeline"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// Analyzer runs refresh passes. *pipeline.Pipeline implements it.
type Analyzer interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
	Watchlist(ctx context.Context, req pipeline.WatchlistRequest) []pipeline.WatchlistRow
}

// Options configures the router.
type Options struct {
	Analyzer Analyzer
	// History serves the signal history endpoint. Nil disables it.
	History history.Store
	// Symbols is the watchlist; Timeframe its default timeframe.
	Symbols   []string
	Timeframe types.Timeframe
	// Gatherer serves /metrics. Nil disables it.
	Gatherer prometheus.Gatherer
	Logger   *logger.Logger
}

// Server holds the handlers of the HTTP API.
type Server struct {
	analyzer  Analyzer
	history   history.Store
	symbols   []string
	timeframe types.Timeframe
	logger    *logger.Logger
}

// NewRouter creates the gin engine with every route registered.
func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}

	if opts.Timeframe == "" {
		opts.Timeframe = types.Timeframe1d
	}

	s := &Server{
		analyzer:  opts.Analyzer,
		history:   opts.History,
		symbols:   opts.Symbols,
		timeframe: opts.Timeframe,
		logger:    opts.Logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Logger), cors.Default())
	r.SetHTMLTemplate(template.Must(template.New("dashboard").Funcs(templateFuncs).Parse(dashboardTemplate)))

	r.GET("/healthz", Health)
	r.HEAD("/healthz", Health)
	r.GET("/", s.Dashboard)

	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")
	{
		api.GET("/symbols", s.Symbols)
		api.GET("/providers", Providers)
		api.GET("/watchlist", s.Watchlist)
		api.GET("/analysis/:symbol", s.Analysis)
		api.GET("/backtest/:symbol", s.Backtest)
		api.GET("/signals/:symbol/history", s.History)
	}

	return r
}

// NewHTTPServer wraps the router in an http.Server with the given timeouts.
func NewHTTPServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}
}

// requestLogger logs every request with zap once it has been served.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
