package indicator

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// EMA is the exponential moving average seeded with the SMA of the first
// period closes at index period-1, then smoothed with alpha = 2/(period+1).
func EMA(closes []float64, period int) (Series, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidIndicatorConfig, "EMA period must be a positive integer, got %d", period)
	}

	out := newSeries(len(closes))
	if len(closes) < period {
		return out, nil
	}

	alpha := 2.0 / float64(period+1)
	value := mean(closes[:period])
	out[period-1] = optional.Some(value)

	for i := period; i < len(closes); i++ {
		value += alpha * (closes[i] - value)
		out[i] = optional.Some(value)
	}

	return out, nil
}

// EMAIndicator is the registry wrapper around EMA.
type EMAIndicator struct {
	period int
}

// NewEMA creates an EMA indicator, 20 periods by default.
func NewEMA() Indicator {
	return &EMAIndicator{period: 20}
}

func (e *EMAIndicator) Name() string {
	return fmt.Sprintf("EMA%d", e.period)
}

func (e *EMAIndicator) Type() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config expects: period (int).
func (e *EMAIndicator) Config(params ...any) error {
	period, err := periodParam("EMA", params)
	if err != nil {
		return err
	}

	e.period = period

	return nil
}

func (e *EMAIndicator) Compute(closes []float64) (map[types.IndicatorName]Series, error) {
	s, err := EMA(closes, e.period)
	if err != nil {
		return nil, err
	}

	return map[types.IndicatorName]Series{types.IndicatorName(e.Name()): s}, nil
}
