package config

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rxtech-lab/argo-signal/internal/backtest"
	"github.com/rxtech-lab/argo-signal/internal/history"
	"github.com/rxtech-lab/argo-signal/internal/indicator"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/notification"
	"github.com/rxtech-lab/argo-signal/internal/pipeline"
	"github.com/rxtech-lab/argo-signal/internal/signal"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
)

// Components are the collaborators built from a Config.
type Components struct {
	Pipeline *pipeline.Pipeline
	History  history.Store
	Metrics  *pipeline.Metrics
	closers  []func() error
}

// Close releases the history database, if any.
func (c *Components) Close() error {
	var first error

	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// Build wires provider, history, notifiers and the pipeline. Metrics are
// registered with reg when it is not nil.
func Build(cfg Config, log *logger.Logger, reg prometheus.Registerer) (*Components, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	source, err := marketdata.NewProvider(cfg.MarketData, log)
	if err != nil {
		return nil, err
	}

	components := &Components{}

	store, err := cfg.History.Open()
	if err != nil {
		return nil, err
	}

	components.History = store
	if closer, ok := store.(interface{ Close() error }); ok {
		components.closers = append(components.closers, closer.Close)
	}

	notifier, err := cfg.Notification.Build(log)
	if err != nil {
		_ = components.Close()

		return nil, err
	}

	engine, err := indicator.NewDefaultEngine()
	if err != nil {
		_ = components.Close()

		return nil, err
	}

	simulator, err := backtest.NewSimulator(cfg.Backtest, log)
	if err != nil {
		_ = components.Close()

		return nil, err
	}

	components.Metrics = pipeline.NewMetrics(reg)

	p, err := pipeline.New(pipeline.Options{
		Provider:  source,
		Config:    cfg.Pipeline,
		Engine:    engine,
		Generator: signal.NewGenerator(signal.NewEvaluator(cfg.Signal)),
		Simulator: simulator,
		Detector:  notification.NewDetector(store, notifier, log),
		Metrics:   components.Metrics,
		Logger:    log,
	})
	if err != nil {
		_ = components.Close()

		return nil, err
	}

	components.Pipeline = p

	return components, nil
}

// Open creates the configured last-signal store.
func (c HistoryConfig) Open() (history.Store, error) {
	if c.Driver == HistoryDriverSQLite {
		return history.OpenSQLite(c.Path)
	}

	return history.NewMemoryStore(), nil
}

// Build creates a MultiNotifier with every enabled notifier.
func (c NotificationConfig) Build(log *logger.Logger) (*notification.MultiNotifier, error) {
	var notifiers []notification.Notifier

	if c.Log {
		notifiers = append(notifiers, notification.NewLogNotifier(log))
	}

	if c.Webhook.URL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(c.Webhook.URL, c.Webhook.Headers))
	}

	if c.Telegram.BotToken != "" {
		notifiers = append(notifiers, notification.NewTelegramNotifier(c.Telegram.APIURL, c.Telegram.BotToken, c.Telegram.ChatID))
	}

	if c.Email != nil {
		email, err := notification.NewEmailNotifier(*c.Email)
		if err != nil {
			return nil, err
		}

		notifiers = append(notifiers, email)
	}

	return notification.NewMultiNotifier(notifiers...), nil
}
