package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/pipeline"
	"github.com/rxtech-lab/argo-signal/internal/server"
	"github.com/rxtech-lab/argo-signal/internal/version"
)

const shutdownTimeout = 10 * time.Second

// watchlistRunner is the part of the pipeline the background refresh needs.
type watchlistRunner interface {
	Watchlist(ctx context.Context, req pipeline.WatchlistRequest) []pipeline.WatchlistRow
}

// refreshLoop runs a notifying watchlist pass every interval until ctx is done.
func refreshLoop(ctx context.Context, runner watchlistRunner, cfg config.WatchlistConfig, log *logger.Logger) {
	if cfg.RefreshInterval <= 0 {
		return
	}

	ticker := time.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rows := runner.Watchlist(ctx, pipeline.WatchlistRequest{
				Symbols:   cfg.Symbols,
				Timeframe: cfg.Timeframe,
				Notify:    true,
			})

			unavailable := 0
			for _, row := range rows {
				if !row.Available {
					unavailable++
				}
			}

			log.Debug("Watchlist refreshed",
				zap.Int("symbols", len(rows)),
				zap.Int("unavailable", unavailable),
			)
		}
	}
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"), cmd.StringSlice("env-file")...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if addr := cmd.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	appLogger, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	reg := newRegistry()

	components, err := config.Build(cfg, appLogger, reg)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer components.Close()

	router := server.NewRouter(server.Options{
		Analyzer:  components.Pipeline,
		History:   components.History,
		Symbols:   cfg.Watchlist.Symbols,
		Timeframe: cfg.Watchlist.Timeframe,
		Gatherer:  reg,
		Logger:    appLogger,
	})
	httpServer := server.NewHTTPServer(cfg.Server.Addr, router, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.Bool("refresh") {
		go refreshLoop(ctx, components.Pipeline, cfg.Watchlist, appLogger)
	}

	errCh := make(chan error, 1)

	go func() {
		appLogger.Info("Server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("provider", string(cfg.MarketData.Provider)),
		)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	cfg := config.Default()

	schema, err := cfg.GenerateSchema()
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, string(out))

	return err
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "argo-signal",
		Usage:   "Serve crypto signals over HTTP",
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
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides server.addr",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Refresh the watchlist in the background and notify on signal changes",
				Value: true,
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the config file",
				Action: schemaAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
