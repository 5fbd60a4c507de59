package provider

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// binancePageLimit is the largest page the klines endpoint serves.
const binancePageLimit = 1000

// BinanceAPIClient is the subset of the go-binance client used here.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

// BinanceKlinesService is the subset of binance.KlinesService used here.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

type BinanceClient struct {
	apiClient BinanceAPIClient
}

// NewBinanceClient creates a client against the public Binance API.
// baseURL overrides the REST endpoint when set.
func NewBinanceClient(baseURL string) *BinanceClient {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}

	return NewBinanceClientWithAPI(&binanceRESTClient{client: client})
}

// NewBinanceClientWithAPI creates a client from an API implementation.
func NewBinanceClientWithAPI(api BinanceAPIClient) *BinanceClient {
	return &BinanceClient{apiClient: api}
}

func (c *BinanceClient) Name() string {
	return string(ProviderBinance)
}

// FetchCandles downloads the newest klines, paging backwards with endTime.
func (c *BinanceClient) FetchCandles(ctx context.Context, symbol string, timeframe types.Timeframe, limit int) (types.CandleTable, error) {
	if err := checkRequest(symbol, timeframe, limit); err != nil {
		return types.CandleTable{}, err
	}

	interval, err := binanceInterval(timeframe)
	if err != nil {
		return types.CandleTable{}, err
	}

	exchangeSymbol, err := ResolveSymbol(ProviderBinance, symbol)
	if err != nil {
		return types.CandleTable{}, err
	}

	collected := make([]types.Candle, 0, min(limit, binancePageLimit))

	var endTime int64

	for len(collected) < limit {
		pageSize := min(limit-len(collected), binancePageLimit)

		service := c.apiClient.NewKlinesService().
			Symbol(exchangeSymbol).
			Interval(interval).
			Limit(pageSize)
		if endTime > 0 {
			service = service.EndTime(endTime)
		}

		klines, err := service.Do(ctx)
		if err != nil {
			return types.CandleTable{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s from binance", exchangeSymbol)
		}

		if len(klines) == 0 {
			break
		}

		page, err := convertKlines(klines)
		if err != nil {
			return types.CandleTable{}, err
		}

		collected = append(collected, page...)

		if len(klines) < pageSize {
			break
		}

		endTime = slices.MinFunc(klines, func(a, b *binance.Kline) int { return cmp.Compare(a.OpenTime, b.OpenTime) }).OpenTime - 1
	}

	slices.SortFunc(collected, func(a, b types.Candle) int { return a.Time.Compare(b.Time) })
	collected = slices.CompactFunc(collected, func(a, b types.Candle) bool { return a.Time.Equal(b.Time) })

	return types.CandleTable{
		Symbol:    symbol,
		Timeframe: timeframe,
		Candles:   trimToLimit(collected, limit),
	}, nil
}

// convertKlines converts binance klines, which carry prices as strings.
func convertKlines(klines []*binance.Kline) ([]types.Candle, error) {
	candles := make([]types.Candle, 0, len(klines))

	for _, k := range klines {
		if k == nil {
			continue
		}

		values := make([]float64, 0, 5)

		for _, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q at %d", raw, k.OpenTime)
			}

			values = append(values, v)
		}

		candles = append(candles, types.Candle{
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return candles, nil
}

// binanceRESTClient adapts *binance.Client to BinanceAPIClient.
type binanceRESTClient struct {
	client *binance.Client
}

func (b *binanceRESTClient) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesService{service: b.client.NewKlinesService()}
}

type binanceKlinesService struct {
	service *binance.KlinesService
}

func (s *binanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	s.service.Symbol(symbol)

	return s
}

func (s *binanceKlinesService) Interval(interval string) BinanceKlinesService {
	s.service.Interval(interval)

	return s
}

func (s *binanceKlinesService) Limit(limit int) BinanceKlinesService {
	s.service.Limit(limit)

	return s
}

func (s *binanceKlinesService) EndTime(endTime int64) BinanceKlinesService {
	s.service.EndTime(endTime)

	return s
}

func (s *binanceKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}
