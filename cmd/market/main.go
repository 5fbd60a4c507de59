package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/internal/version"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/writer"
)

// outputPath returns {dir}/{symbol}_{timeframe}.parquet with path separators
// and colons in the symbol replaced.
func outputPath(dir, symbol string, timeframe types.Timeframe) string {
	safe := strings.NewReplacer("/", "_", ":", "_", "\\", "_").Replace(symbol)

	return filepath.Join(dir, fmt.Sprintf("%s_%s.parquet", safe, timeframe))
}

// exportCandles fetches every symbol and writes it to a parquet file in dir.
// It returns the written paths in symbol order.
func exportCandles(ctx context.Context, source provider.Provider, symbols []string, timeframe types.Timeframe, limit int, dir string, log *logger.Logger) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(symbols))

	for _, symbol := range symbols {
		table, err := source.FetchCandles(ctx, symbol, timeframe, limit)
		if err != nil {
			return paths, fmt.Errorf("failed to fetch %s: %w", symbol, err)
		}

		if table.Len() == 0 {
			log.Warn("No candles returned, skipping", zap.String("symbol", symbol))

			continue
		}

		path, err := writer.WriteTable(writer.NewDuckDBWriter(outputPath(dir, symbol, timeframe)), table)
		if err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", symbol, err)
		}

		log.Info("Candles exported",
			zap.String("symbol", symbol),
			zap.String("timeframe", string(timeframe)),
			zap.Int("candles", table.Len()),
			zap.String("path", path),
		)

		paths = append(paths, path)
	}

	return paths, nil
}

// exportAction loads the config, builds the provider and exports the candles.
func exportAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"), cmd.StringSlice("env-file")...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if p := cmd.String("provider"); p != "" {
		cfg.MarketData.Provider = provider.ProviderType(p)
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

	source, err := marketdata.NewProvider(cfg.MarketData, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create market data provider: %w", err)
	}

	symbols := cmd.StringSlice("symbol")
	if len(symbols) == 0 {
		symbols = cfg.Watchlist.Symbols
	}

	paths, err := exportCandles(ctx, source, symbols, timeframe, int(cmd.Int("limit")), cmd.String("data"), appLogger)
	if err != nil {
		return err
	}

	appLogger.Info("Export completed", zap.Int("files", len(paths)))

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "market",
		Usage:   "Export candles to parquet files",
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
				Usage:   "Number of candles to fetch",
				Value:   1000,
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider (%s), overrides the config", strings.Join(marketdata.GetSupportedProviders(), ", ")),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
		},
		Action: exportAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
