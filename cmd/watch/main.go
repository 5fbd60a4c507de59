package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/version"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/provider"
)

// newFactory returns a RefresherFactory that builds a pipeline from cfg with
// the chosen provider. Components built by the factory are appended to
// closers so they can be released on exit.
func newFactory(cfg config.Config, closers *[]func() error) RefresherFactory {
	return func(providerType provider.ProviderType) (Refresher, error) {
		providerCfg := cfg
		providerCfg.MarketData.Provider = providerType

		// The TUI owns the terminal, so pipeline logs are discarded
		components, err := config.Build(providerCfg, logger.NewNopLogger(), nil)
		if err != nil {
			return nil, err
		}

		*closers = append(*closers, components.Close)

		return components.Pipeline, nil
	}
}

func watchAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"), cmd.StringSlice("env-file")...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var closers []func() error

	defer func() {
		for _, closeFn := range closers {
			_ = closeFn()
		}
	}()

	m := NewModel(
		newFactory(cfg, &closers),
		cfg.Watchlist.Symbols,
		cfg.Watchlist.Timeframe,
		cfg.Watchlist.RefreshInterval,
		!cmd.Bool("no-notify"),
	)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watchlist exited with error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "watch",
		Usage:   "Interactive terminal watchlist of crypto signals",
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
			&cli.BoolFlag{
				Name:  "no-notify",
				Usage: "Do not send notifications on signal changes",
			},
		},
		Action: watchAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
