package notification

import (
	"context"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-signal/internal/history"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// Observation is the latest signal of one refresh pass.
type Observation struct {
	Symbol     string
	Timeframe  types.Timeframe
	Signal     types.SignalType
	Rule       string
	Reason     string
	Price      float64
	ChangePct  float64
	CandleTime time.Time
}

// PreviousNone is the previous signal reported for the first observation of a
// symbol and timeframe.
const PreviousNone types.SignalType = "NONE"

// Detector compares each observation with the last recorded signal and
// notifies on a change. The first observation of a key notifies with
// Previous set to PreviousNone.
type Detector struct {
	store    history.Store
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time

	// locks holds one *sync.Mutex per symbol+timeframe
	locks sync.Map
}

func NewDetector(store history.Store, notifier Notifier, log *logger.Logger) *Detector {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Detector{
		store:    store,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Observe records obs when it differs from the stored signal and returns the
// event that was sent. Delivery failures are logged, never returned; only
// history store errors are.
func (d *Detector) Observe(ctx context.Context, obs Observation) (optional.Option[Event], error) {
	unlock := d.lock(obs.Symbol, obs.Timeframe)
	last, err := d.store.Last(ctx, obs.Symbol, obs.Timeframe)
	if err != nil {
		unlock()
		return optional.None[Event](), err
	}

	if last.IsSome() && last.Unwrap().Signal == obs.Signal {
		unlock()
		return optional.None[Event](), nil
	}

	now := d.now()

	entry := history.Entry{
		Symbol:     obs.Symbol,
		Timeframe:  obs.Timeframe,
		Signal:     obs.Signal,
		Rule:       obs.Rule,
		Reason:     obs.Reason,
		Price:      obs.Price,
		CandleTime: obs.CandleTime,
		RecordedAt: now,
	}
	err = d.store.Record(ctx, entry)
	unlock()
	if err != nil {
		return optional.None[Event](), err
	}

	previous := PreviousNone
	if last.IsSome() {
		previous = last.Unwrap().Signal
	} else {
		d.log.Debug("first signal recorded",
			zap.String("symbol", obs.Symbol),
			zap.String("timeframe", string(obs.Timeframe)),
			zap.String("signal", string(obs.Signal)),
		)
	}

	event := Event{
		Symbol:     obs.Symbol,
		Timeframe:  obs.Timeframe,
		Previous:   previous,
		Current:    obs.Signal,
		Rule:       obs.Rule,
		Reason:     obs.Reason,
		Price:      obs.Price,
		ChangePct:  obs.ChangePct,
		CandleTime: obs.CandleTime,
		DetectedAt: now,
	}

	if d.notifier != nil {
		if err := d.notifier.Notify(ctx, event); err != nil {
			d.log.Warn("signal change notification failed",
				zap.String("symbol", obs.Symbol),
				zap.String("timeframe", string(obs.Timeframe)),
				zap.Error(err),
			)
		}
	}

	return optional.Some(event), nil
}

// lock serialises the read-compare-record step for one symbol and timeframe
// and returns the matching unlock.
func (d *Detector) lock(symbol string, timeframe types.Timeframe) func() {
	v, _ := d.locks.LoadOrStore(symbol+"|"+string(timeframe), &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}
