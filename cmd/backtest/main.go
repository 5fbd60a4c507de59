package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-signal/internal/backtest"
	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/indicator"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/marker"
	"github.com/rxtech-lab/argo-signal/internal/pipeline"
	"github.com/rxtech-lab/argo-signal/internal/signal"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/internal/version"
	"github.com/rxtech-lab/argo-signal/mocks"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/writer"
)

const reportFileName = "backtest_report.yaml"

// syntheticProvider serves generated candles so a backtest can run offline.
type syntheticProvider struct {
	count int
}

func (p syntheticProvider) Name() string {
	return "synthetic"
}

func (p syntheticProvider) FetchCandles(_ context.Context, symbol string, timeframe types.Timeframe, limit int) (types.CandleTable, error) {
	count := p.count
	if limit > 0 && limit < count {
		count = limit
	}

	return mocks.GenerateSeries(symbol, timeframe, count), nil
}

// runOptions controls one multi-symbol backtest.
type runOptions struct {
	Symbols   []string
	Timeframe types.Timeframe
	Limit     int
	OutputDir string
	// ExportCandles also writes the fetched candles next to the marks.
	ExportCandles bool
	Progress      io.Writer
}

// runDir is the per-symbol output directory.
func runDir(root, symbol string, timeframe types.Timeframe) string {
	safe := strings.NewReplacer("/", "_", ":", "_", "\\", "_").Replace(symbol)

	return filepath.Join(root, fmt.Sprintf("%s_%s", safe, timeframe))
}

// runBacktests runs a backtest pass per symbol, exports marks and trades, and
// writes all reports to OutputDir. Symbols without data are skipped.
func runBacktests(ctx context.Context, p *pipeline.Pipeline, opts runOptions, log *logger.Logger) ([]types.BacktestReport, error) {
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	bar := progressbar.NewOptions(len(opts.Symbols),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("Backtesting"),
		progressbar.OptionShowCount(),
	)

	reports := make([]types.BacktestReport, 0, len(opts.Symbols))

	for _, symbol := range opts.Symbols {
		bar.Describe(symbol)

		result, err := p.Run(ctx, pipeline.Request{
			Symbol:    symbol,
			Timeframe: opts.Timeframe,
			Limit:     opts.Limit,
			Backtest:  true,
		})
		if err != nil {
			return reports, fmt.Errorf("backtest of %s failed: %w", symbol, err)
		}

		if !result.Available || result.Report == nil {
			log.Warn("Skipping symbol without data", zap.String("symbol", symbol), zap.String("reason", result.Message))
			_ = bar.Add(1)

			continue
		}

		report := *result.Report
		if err := exportRun(result, &report, runDir(opts.OutputDir, symbol, opts.Timeframe), opts.ExportCandles, log); err != nil {
			return reports, err
		}

		reports = append(reports, report)
		_ = bar.Add(1)
	}

	_ = bar.Finish()

	if err := types.WriteBacktestReports(filepath.Join(opts.OutputDir, reportFileName), reports); err != nil {
		return reports, err
	}

	return reports, nil
}

// exportRun writes marks, trades and optionally candles of one run into dir
// and records the file paths on the report.
func exportRun(result pipeline.Result, report *types.BacktestReport, dir string, exportCandles bool, log *logger.Logger) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	m, err := marker.NewDuckDBMarker(log)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := marker.RecordRun(m, result.Table, result.Signals, *report); err != nil {
		return err
	}

	marksPath, tradesPath, err := m.Write(dir)
	if err != nil {
		return err
	}

	report.MarksFilePath = marksPath
	report.TradesFilePath = tradesPath

	if exportCandles {
		if _, err := writer.WriteTable(writer.NewDuckDBWriter(filepath.Join(dir, "candles.parquet")), result.Table); err != nil {
			return err
		}
	}

	return nil
}

// printSummary writes one line per report.
func printSummary(w io.Writer, reports []types.BacktestReport) {
	fmt.Fprintf(w, "%-8s %-4s %7s %9s %12s %12s %10s\n", "SYMBOL", "TF", "TRADES", "WIN RATE", "RETURN", "BUY & HOLD", "DRAWDOWN")

	for _, r := range reports {
		fmt.Fprintf(w, "%-8s %-4s %7d %8.1f%% %11.2f%% %11.2f%% %9.2f%%\n",
			r.Symbol,
			r.Timeframe,
			r.TradeResult.NumberOfTrades,
			r.TradeResult.WinRate*100,
			r.TradeResult.TotalReturn*100,
			r.BuyAndHoldReturn*100,
			r.TradeResult.MaxDrawdown*100,
		)
	}
}

// newPipeline wires a pipeline without notifications around source.
func newPipeline(cfg config.Config, source provider.Provider, log *logger.Logger) (*pipeline.Pipeline, error) {
	engine, err := indicator.NewDefaultEngine()
	if err != nil {
		return nil, err
	}

	simulator, err := backtest.NewSimulator(cfg.Backtest, log)
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Options{
		Provider:  source,
		Config:    cfg.Pipeline,
		Engine:    engine,
		Generator: signal.NewGenerator(signal.NewEvaluator(cfg.Signal)),
		Simulator: simulator,
		Logger:    log,
	})
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"), cmd.StringSlice("env-file")...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	timeframe, err := types.ParseTimeframe(cmd.String("timeframe"))
	if err != nil {
		return err
	}

	appLogger, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	var source provider.Provider
	if n := int(cmd.Int("synthetic")); n > 0 {
		source = syntheticProvider{count: n}
	} else {
		source, err = marketdata.NewProvider(cfg.MarketData, appLogger)
		if err != nil {
			return fmt.Errorf("failed to create market data provider: %w", err)
		}
	}

	p, err := newPipeline(cfg, source, appLogger)
	if err != nil {
		return err
	}

	symbols := cmd.StringSlice("symbol")
	if len(symbols) == 0 {
		symbols = cfg.Watchlist.Symbols
	}

	reports, err := runBacktests(ctx, p, runOptions{
		Symbols:       symbols,
		Timeframe:     timeframe,
		Limit:         int(cmd.Int("limit")),
		OutputDir:     cmd.String("output"),
		ExportCandles: cmd.Bool("export-candles"),
		Progress:      os.Stderr,
	}, appLogger)
	if err != nil {
		return err
	}

	printSummary(cmd.Root().Writer, reports)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Backtest the signal rules over historical candles",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Dotenv files loaded before environment overrides",
			},
			&cli.StringSliceFlag{
				Name:    "symbol",
				Aliases: []string{"s"},
				Usage:   "Symbol label such as BTC; defaults to the configured watchlist",
			},
			&cli.StringFlag{
				Name:    "timeframe",
				Aliases: []string{"t"},
				Usage:   "Candle timeframe (1m, 5m, 15m, 1h, 4h, 1d)",
				Value:   string(types.Timeframe1d),
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Number of candles, 0 uses the configured history window",
			},
			&cli.IntFlag{
				Name:  "synthetic",
				Usage: "Backtest N generated candles per symbol instead of fetching",
			},
			&cli.BoolFlag{
				Name:  "export-candles",
				Usage: "Also write the candles of each run as parquet",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory for reports, marks and trades",
				Value:   "results",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
