package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-signal/internal/backtest"
	"github.com/rxtech-lab/argo-signal/internal/indicator"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/notification"
	"github.com/rxtech-lab/argo-signal/internal/signal"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/provider"
)

// NoDataReason is the HOLD reason reported when no candles could be fetched.
const NoDataReason = "no data available"

// Request describes one refresh pass.
type Request struct {
	// Symbol is a watchlist label such as BTC, or a raw exchange symbol.
	Symbol    string
	Timeframe types.Timeframe
	// Limit is the number of candles to fetch. Zero derives it from the history window.
	Limit int
	// Backtest replays the signal sequence through the simulator.
	Backtest bool
	// Notify passes the latest signal to the change detector.
	Notify bool
}

// Result is the outcome of one refresh pass.
type Result struct {
	Symbol         string          `json:"symbol"`
	ProviderSymbol string          `json:"provider_symbol"`
	Timeframe      types.Timeframe `json:"timeframe"`
	// Available is false when the candle fetch failed or returned nothing.
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`

	Table     types.CandleTable         `json:"-"`
	Snapshots []types.IndicatorSnapshot `json:"-"`
	Signals   []types.Signal            `json:"-"`

	Latest    types.Signal          `json:"latest"`
	Price     float64               `json:"price"`
	ChangePct float64               `json:"change_pct"`
	Report    *types.BacktestReport `json:"report,omitempty"`
	// Changed is true when the detector reported a signal change this pass.
	Changed bool `json:"changed"`
}

// Options wires the collaborators of a Pipeline. Only Provider is required.
type Options struct {
	Provider  provider.Provider
	Config    Config
	Engine    *indicator.Engine
	Generator *signal.Generator
	Simulator *backtest.Simulator
	Detector  *notification.Detector
	Metrics   *Metrics
	Logger    *logger.Logger
}

// Pipeline runs fetch, indicators, signals and the optional backtest as one
// synchronous pass. It holds no state between passes; the last signal lives
// in the detector's history store.
type Pipeline struct {
	provider  provider.Provider
	config    Config
	engine    *indicator.Engine
	generator *signal.Generator
	simulator *backtest.Simulator
	detector  *notification.Detector
	metrics   *Metrics
	logger    *logger.Logger
}

// New creates a Pipeline, filling unset collaborators with their defaults.
func New(opts Options) (*Pipeline, error) {
	if opts.Provider == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "pipeline needs a market data provider")
	}

	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}

	if opts.Config == (Config{}) {
		opts.Config = DefaultConfig()
	}

	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	if opts.Engine == nil {
		engine, err := indicator.NewDefaultEngine()
		if err != nil {
			return nil, err
		}

		opts.Engine = engine
	}

	if opts.Generator == nil {
		opts.Generator = signal.NewGenerator(signal.NewEvaluator(signal.DefaultConfig()))
	}

	if opts.Simulator == nil {
		simulator, err := backtest.NewSimulator(backtest.DefaultConfig(), opts.Logger)
		if err != nil {
			return nil, err
		}

		opts.Simulator = simulator
	}

	return &Pipeline{
		provider:  opts.Provider,
		config:    opts.Config,
		engine:    opts.Engine,
		generator: opts.Generator,
		simulator: opts.Simulator,
		detector:  opts.Detector,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// Run executes one refresh pass. A failed or empty fetch is not an error: the
// result is unavailable with a HOLD "no data available" signal. Invalid
// requests and core failures are returned as errors.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	if !req.Timeframe.IsValid() {
		return Result{}, errors.Newf(errors.ErrCodeInvalidTimeframe, "invalid timeframe: %q", string(req.Timeframe))
	}

	if req.Limit < 0 {
		return Result{}, errors.Newf(errors.ErrCodeInvalidParameter, "limit must not be negative, got %d", req.Limit)
	}

	providerSymbol, err := provider.ResolveSymbol(provider.ProviderType(p.provider.Name()), req.Symbol)
	if err != nil {
		return Result{}, err
	}

	log := p.logger.ForSymbol(req.Symbol, req.Timeframe.String())

	result := Result{
		Symbol:         req.Symbol,
		ProviderSymbol: providerSymbol,
		Timeframe:      req.Timeframe,
	}

	limit := req.Limit
	if limit == 0 {
		limit = p.config.CandleLimit(req.Timeframe)
	}

	table, err := p.provider.FetchCandles(ctx, req.Symbol, req.Timeframe, limit)
	if err != nil {
		if errors.GetCode(err).Category() == "validation" {
			return Result{}, err
		}

		log.Warn("Candle fetch failed", zap.Error(err))
		p.markUnavailable(&result, err.Error())
		p.metrics.observe(result, time.Since(start).Seconds())

		return result, nil
	}

	if table.Len() == 0 {
		log.Warn("Candle fetch returned no candles")
		p.markUnavailable(&result, "empty candle table")
		p.metrics.observe(result, time.Since(start).Seconds())

		return result, nil
	}

	snapshots, err := p.engine.Compute(table)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeInvalidCandleTable) {
			log.Warn("Fetched candle table is invalid", zap.Error(err))
			p.markUnavailable(&result, err.Error())
			p.metrics.observe(result, time.Since(start).Seconds())

			return result, nil
		}

		return Result{}, err
	}

	signals, err := p.generator.Generate(table, snapshots)
	if err != nil {
		return Result{}, err
	}

	last := table.Candles[table.Len()-1]

	result.Available = true
	result.Table = table
	result.Snapshots = snapshots
	result.Signals = signals
	result.Latest = signal.Latest(signals).Unwrap()
	result.Price = last.Close
	result.ChangePct = table.LastChangePct()

	if req.Backtest {
		report, err := p.simulator.Run(table, signals)
		if err != nil {
			return Result{}, err
		}

		result.Report = &report
	}

	if req.Notify && p.detector != nil {
		p.observe(ctx, log, &result)
	}

	log.Debug("Refresh pass finished",
		zap.Int("candles", table.Len()),
		zap.String("signal", string(result.Latest.Type)),
		zap.String("rule", result.Latest.Rule),
		zap.Bool("changed", result.Changed),
	)

	p.metrics.observe(result, time.Since(start).Seconds())

	return result, nil
}

func (p *Pipeline) markUnavailable(result *Result, message string) {
	result.Available = false
	result.Message = message
	result.Latest = types.Signal{Index: -1, Type: types.SignalHold, Reason: NoDataReason}
}

// observe hands the latest signal to the detector. History store failures are
// logged and never fail the pass.
func (p *Pipeline) observe(ctx context.Context, log *logger.Logger, result *Result) {
	event, err := p.detector.Observe(ctx, notification.Observation{
		Symbol:     result.Symbol,
		Timeframe:  result.Timeframe,
		Signal:     result.Latest.Type,
		Rule:       result.Latest.Rule,
		Reason:     result.Latest.Reason,
		Price:      result.Price,
		ChangePct:  result.ChangePct,
		CandleTime: result.Latest.Time,
	})
	if err != nil {
		log.Warn("Signal change detection failed", zap.Error(err))

		return
	}

	result.Changed = event.IsSome()
}
