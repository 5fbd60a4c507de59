package indicator

import (
	"fmt"
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// RSI is Wilder's Relative Strength Index. The first average gain and loss
// are simple means over the first period changes, later values use Wilder
// smoothing. Defined from index period.
func RSI(closes []float64, period int) (Series, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidIndicatorConfig, "RSI period must be a positive integer, got %d", period)
	}

	out := newSeries(len(closes))
	if len(closes) <= period {
		return out, nil
	}

	p := float64(period)
	avgGain, avgLoss := 0.0, 0.0

	for i := 1; i <= period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}

	avgGain /= p
	avgLoss /= p
	out[period] = optional.Some(rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = optional.Some(rsiValue(avgGain, avgLoss))
	}

	return out, nil
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}

	return 0, -change
}

// rsiValue is 50 with no movement at all and 100 without losses.
func rsiValue(avgGain, avgLoss float64) float64 {
	if avgGain == 0 && avgLoss == 0 {
		return 50
	}

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return math.Max(0, math.Min(100, 100-100/(1+rs)))
}

// RSIIndicator is the registry wrapper around RSI.
type RSIIndicator struct {
	period int
}

// NewRSI creates an RSI indicator, 14 periods by default.
func NewRSI() Indicator {
	return &RSIIndicator{period: 14}
}

func (r *RSIIndicator) Name() string {
	return fmt.Sprintf("RSI%d", r.period)
}

func (r *RSIIndicator) Type() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config expects: period (int).
func (r *RSIIndicator) Config(params ...any) error {
	period, err := periodParam("RSI", params)
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

func (r *RSIIndicator) Compute(closes []float64) (map[types.IndicatorName]Series, error) {
	s, err := RSI(closes, r.period)
	if err != nil {
		return nil, err
	}

	return map[types.IndicatorName]Series{types.IndicatorName(r.Name()): s}, nil
}
