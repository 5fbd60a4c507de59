package provider

import (
	"context"
	"slices"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// polygonMaxAggs is the page size requested from the aggregates endpoint.
const polygonMaxAggs = 50000

// PolygonAPIClient is the subset of the polygon REST client used here.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

// PolygonAggsIterator walks aggregate bars.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	now       func() time.Time
}

func NewPolygonClient(apiKey string) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonRESTClient{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a client from an API implementation.
func NewPolygonClientWithAPI(api PolygonAPIClient) *PolygonClient {
	return &PolygonClient{apiClient: api, now: time.Now}
}

func (c *PolygonClient) Name() string {
	return string(ProviderPolygon)
}

// FetchCandles asks for the window that covers limit candles up to now and
// keeps the newest limit bars.
func (c *PolygonClient) FetchCandles(ctx context.Context, symbol string, timeframe types.Timeframe, limit int) (types.CandleTable, error) {
	if err := checkRequest(symbol, timeframe, limit); err != nil {
		return types.CandleTable{}, err
	}

	multiplier, timespan, err := polygonTimespan(timeframe)
	if err != nil {
		return types.CandleTable{}, err
	}

	ticker, err := ResolveSymbol(ProviderPolygon, symbol)
	if err != nil {
		return types.CandleTable{}, err
	}

	end := c.now().UTC()
	start := end.Add(-time.Duration(limit+1) * timeframe.Duration())

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithOrder(models.Asc).WithLimit(polygonMaxAggs)

	iter := c.apiClient.ListAggs(ctx, params)

	candles := make([]types.Candle, 0, limit)

	for iter.Next() {
		agg := iter.Item()
		candles = append(candles, types.Candle{
			Time:   time.Time(agg.Timestamp).UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if iter.Err() != nil {
		return types.CandleTable{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, iter.Err(), "error iterating polygon aggregates for %s", ticker)
	}

	slices.SortFunc(candles, func(a, b types.Candle) int { return a.Time.Compare(b.Time) })
	candles = slices.CompactFunc(candles, func(a, b types.Candle) bool { return a.Time.Equal(b.Time) })

	return types.CandleTable{
		Symbol:    symbol,
		Timeframe: timeframe,
		Candles:   trimToLimit(candles, limit),
	}, nil
}

// polygonRESTClient adapts *polygon.Client to PolygonAPIClient.
type polygonRESTClient struct {
	client *polygon.Client
}

func (p *polygonRESTClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return p.client.ListAggs(ctx, params, options...)
}
