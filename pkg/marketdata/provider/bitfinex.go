package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

const (
	// DefaultBitfinexBaseURL is the public REST endpoint. No key is required.
	DefaultBitfinexBaseURL = "https://api-pub.bitfinex.com/v2"
	// bitfinexPageLimit is the largest page the candles endpoint serves.
	bitfinexPageLimit = 10000
	// maxResponseBytes caps a single candles response body.
	maxResponseBytes  = 16 << 20
	requestTimeout    = 10 * time.Second
	userAgent         = "argo-signal/1.0 (+https://github.com/rxtech-lab/argo-signal)"
)

// BitfinexClient reads candles from the Bitfinex public API.
type BitfinexClient struct {
	baseURL      string
	httpClient   *http.Client
	maxBodyBytes int64
}

// NewBitfinexClient creates a client for the given base URL. Empty uses the public endpoint.
func NewBitfinexClient(baseURL string) *BitfinexClient {
	if baseURL == "" {
		baseURL = DefaultBitfinexBaseURL
	}

	return &BitfinexClient{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: requestTimeout},
		maxBodyBytes: maxResponseBytes,
	}
}

func (c *BitfinexClient) Name() string {
	return string(ProviderBitfinex)
}

// FetchCandles downloads the newest candles, walking back page by page when
// limit exceeds a single page.
func (c *BitfinexClient) FetchCandles(ctx context.Context, symbol string, timeframe types.Timeframe, limit int) (types.CandleTable, error) {
	if err := checkRequest(symbol, timeframe, limit); err != nil {
		return types.CandleTable{}, err
	}

	key, err := bitfinexTimeframe(timeframe)
	if err != nil {
		return types.CandleTable{}, err
	}

	exchangeSymbol, err := ResolveSymbol(ProviderBitfinex, symbol)
	if err != nil {
		return types.CandleTable{}, err
	}

	collected := make([]types.Candle, 0, min(limit, bitfinexPageLimit))

	var end int64

	for len(collected) < limit {
		pageSize := min(limit-len(collected), bitfinexPageLimit)

		page, err := c.fetchPage(ctx, key, exchangeSymbol, pageSize, end)
		if err != nil {
			return types.CandleTable{}, err
		}

		collected = append(collected, page.candles...)

		// Skipped rows still count toward a full page
		if page.rows < pageSize || page.oldest == 0 {
			break
		}

		end = page.oldest - 1
	}

	slices.SortFunc(collected, func(a, b types.Candle) int { return a.Time.Compare(b.Time) })
	collected = slices.CompactFunc(collected, func(a, b types.Candle) bool { return a.Time.Equal(b.Time) })

	return types.CandleTable{
		Symbol:    symbol,
		Timeframe: timeframe,
		Candles:   trimToLimit(collected, limit),
	}, nil
}

// bitfinexPage is one decoded response. rows counts every row the exchange
// returned, including skipped ones; oldest is the smallest MTS seen.
type bitfinexPage struct {
	candles []types.Candle
	rows    int
	oldest  int64
}

func (c *BitfinexClient) fetchPage(ctx context.Context, timeframe, symbol string, limit int, end int64) (bitfinexPage, error) {
	endpoint := fmt.Sprintf("%s/candles/trade:%s:%s/hist", c.baseURL, timeframe, symbol)

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("sort", "-1")

	if end > 0 {
		query.Set("end", strconv.FormatInt(end, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return bitfinexPage{}, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to build bitfinex request", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return bitfinexPage{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s candles from bitfinex", symbol)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return bitfinexPage{}, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to read bitfinex response", err)
	}

	if int64(len(body)) > c.maxBodyBytes {
		return bitfinexPage{}, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "bitfinex response exceeds %d bytes", c.maxBodyBytes)
	}

	if resp.StatusCode != http.StatusOK {
		return bitfinexPage{}, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "bitfinex candles HTTP %d: %s", resp.StatusCode, snippet(body))
	}

	return parseBitfinexCandles(body)
}

// parseBitfinexCandles decodes rows of [MTS, OPEN, CLOSE, HIGH, LOW, VOLUME].
// Short rows and rows with null fields are skipped.
func parseBitfinexCandles(body []byte) (bitfinexPage, error) {
	var rows [][]*float64
	if err := json.Unmarshal(body, &rows); err != nil {
		return bitfinexPage{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid bitfinex candles response: %s", snippet(body))
	}

	page := bitfinexPage{
		candles: make([]types.Candle, 0, len(rows)),
		rows:    len(rows),
	}

	for _, row := range rows {
		if len(row) > 0 && row[0] != nil {
			mts := int64(*row[0])
			if page.oldest == 0 || mts < page.oldest {
				page.oldest = mts
			}
		}

		if len(row) < 6 || slices.Contains(row[:6], (*float64)(nil)) {
			continue
		}

		page.candles = append(page.candles, types.Candle{
			Time:   time.UnixMilli(int64(*row[0])).UTC(),
			Open:   *row[1],
			Close:  *row[2],
			High:   *row[3],
			Low:    *row[4],
			Volume: *row[5],
		})
	}

	return page, nil
}

func snippet(body []byte) string {
	const maxLen = 200
	if len(body) > maxLen {
		return string(body[:maxLen])
	}

	return string(body)
}
