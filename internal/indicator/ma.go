package indicator

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// SMA is the simple moving average of the trailing period closes.
// Defined from index period-1.
func SMA(closes []float64, period int) (Series, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidIndicatorConfig, "SMA period must be a positive integer, got %d", period)
	}

	out := newSeries(len(closes))
	for i := period - 1; i < len(closes); i++ {
		out[i] = optional.Some(mean(closes[i-period+1 : i+1]))
	}

	return out, nil
}

// MA is the registry wrapper around SMA.
type MA struct {
	period int
}

// NewMA creates a simple moving average, 200 periods by default.
func NewMA() Indicator {
	return &MA{period: 200}
}

func (m *MA) Name() string {
	return fmt.Sprintf("SMA%d", m.period)
}

func (m *MA) Type() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Config expects: period (int).
func (m *MA) Config(params ...any) error {
	period, err := periodParam("MA", params)
	if err != nil {
		return err
	}

	m.period = period

	return nil
}

func (m *MA) Compute(closes []float64) (map[types.IndicatorName]Series, error) {
	s, err := SMA(closes, m.period)
	if err != nil {
		return nil, err
	}

	return map[types.IndicatorName]Series{types.IndicatorName(m.Name()): s}, nil
}

// periodParam reads a positive int from the first positional parameter.
func periodParam(indicator string, params []any) (int, error) {
	if len(params) < 1 {
		return 0, errors.Newf(errors.ErrCodeInvalidIndicatorConfig, "%s config expects at least 1 parameter: period (int)", indicator)
	}

	period, ok := params[0].(int)
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidIndicatorConfig, "%s: invalid type for period parameter, expected int", indicator)
	}

	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidIndicatorConfig, "%s: period must be a positive integer, got %d", indicator, period)
	}

	return period, nil
}
