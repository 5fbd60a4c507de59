// Package notification delivers signal-change events to external channels
// (log, webhook, Telegram, email) and detects when a change happened.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// Event describes a change of the latest signal for one symbol and timeframe.
type Event struct {
	Symbol     string           `json:"symbol"`
	Timeframe  types.Timeframe  `json:"timeframe"`
	Previous   types.SignalType `json:"previous"`
	Current    types.SignalType `json:"current"`
	Rule       string           `json:"rule"`
	Reason     string           `json:"reason"`
	Price      float64          `json:"price"`
	ChangePct  float64          `json:"change_pct"`
	CandleTime time.Time        `json:"candle_time"`
	DetectedAt time.Time        `json:"detected_at"`
}

// Subject is the one-line title used by email and chat notifiers.
func (e Event) Subject() string {
	return fmt.Sprintf("[Signal change] %s %s: %s → %s", e.Symbol, e.Timeframe, e.Previous, e.Current)
}

// Body is the plain-text message body.
func (e Event) Body() string {
	return fmt.Sprintf(
		"New signal for %s (%s): %s\n\nPrevious: %s\nPrice: %.2f USD\nChange (last candle): %.2f%%\n\nReason: %s\nCandle: %s\n",
		e.Symbol, e.Timeframe, e.Current,
		e.Previous,
		e.Price,
		e.ChangePct,
		e.Reason,
		e.CandleTime.UTC().Format(time.RFC3339),
	)
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Notify delivers an event. Returns error if delivery fails.
	Notify(ctx context.Context, event Event) error
}

// LogNotifier writes events to the structured log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	n.log.Info("signal changed",
		zap.String("symbol", event.Symbol),
		zap.String("timeframe", string(event.Timeframe)),
		zap.String("previous", string(event.Previous)),
		zap.String("current", string(event.Current)),
		zap.String("rule", event.Rule),
		zap.Float64("price", event.Price),
		zap.String("reason", event.Reason),
	)

	return nil
}

// MultiNotifier fans an event out to every notifier. All notifiers are tried;
// their errors are joined.
type MultiNotifier struct {
	notifiers []Notifier
}

func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

func (m *MultiNotifier) Notify(ctx context.Context, event Event) error {
	var errs []error

	for _, n := range m.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Len returns the number of wrapped notifiers.
func (m *MultiNotifier) Len() int {
	return len(m.notifiers)
}
