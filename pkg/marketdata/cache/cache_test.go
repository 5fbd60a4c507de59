package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-signal/internal/types"
	argoErrors "github.com/rxtech-lab/argo-signal/pkg/errors"
)

func sampleTable() types.CandleTable {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return types.CandleTable{
		Symbol:    "BTC",
		Timeframe: types.Timeframe1h,
		Candles: []types.Candle{
			{Time: start, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
			{Time: start.Add(time.Hour), Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 12},
		},
	}
}

type KeyTestSuite struct {
	suite.Suite
}

func TestKeySuite(t *testing.T) {
	suite.Run(t, new(KeyTestSuite))
}

func (suite *KeyTestSuite) TestKey() {
	suite.Equal("bitfinex:BTC:1h:200", Key("bitfinex", "BTC", types.Timeframe1h, 200))
	suite.Equal("bitfinex:tDOGE_USD:1d:5", Key("bitfinex", "tDOGE:USD", types.Timeframe1d, 5))
	suite.NotEqual(Key("bitfinex", "BTC", types.Timeframe1h, 200), Key("bitfinex", "BTC", types.Timeframe1h, 201))
	suite.NotEqual(Key("bitfinex", "BTC", types.Timeframe1h, 200), Key("binance", "BTC", types.Timeframe1h, 200))
}

type MemoryStoreTestSuite struct {
	suite.Suite
	now   time.Time
	store *MemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreTestSuite))
}

func (suite *MemoryStoreTestSuite) SetupTest() {
	suite.now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.store = NewMemoryStoreWithClock(func() time.Time { return suite.now })
}

func (suite *MemoryStoreTestSuite) TestMiss() {
	got, err := suite.store.Get(context.Background(), "missing")
	suite.NoError(err)
	suite.True(got.IsNone())
}

func (suite *MemoryStoreTestSuite) TestHitWithinTTL() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.Set(ctx, "k", sampleTable(), time.Minute))

	suite.now = suite.now.Add(59 * time.Second)
	got, err := suite.store.Get(ctx, "k")
	suite.NoError(err)
	suite.Require().True(got.IsSome())
	suite.Equal(sampleTable().Closes(), got.Unwrap().Closes())
}

func (suite *MemoryStoreTestSuite) TestExpiresAfterTTL() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.Set(ctx, "k", sampleTable(), time.Minute))

	suite.now = suite.now.Add(time.Minute)
	got, err := suite.store.Get(ctx, "k")
	suite.NoError(err)
	suite.True(got.IsNone())
	suite.Equal(0, suite.store.Len())
}

func (suite *MemoryStoreTestSuite) TestZeroTTLUsesDefault() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.Set(ctx, "k", sampleTable(), 0))

	suite.now = suite.now.Add(DefaultTTL - time.Second)
	got, _ := suite.store.Get(ctx, "k")
	suite.True(got.IsSome())

	suite.now = suite.now.Add(time.Second)
	got, _ = suite.store.Get(ctx, "k")
	suite.True(got.IsNone())
}

type RedisStoreTestSuite struct {
	suite.Suite
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreTestSuite))
}

func (suite *RedisStoreTestSuite) TestDefaultNamespace() {
	store := NewRedisStore(nil, "")
	suite.Equal(DefaultNamespace, store.namespace)
	suite.Equal(DefaultNamespace+":k", store.key("k"))
}

func (suite *RedisStoreTestSuite) TestGetHit() {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, _ := json.Marshal(sampleTable())
	mock.ExpectGet("ns:bitfinex:BTC:1h:200").SetVal(string(cached))

	got, err := NewRedisStore(rdb, "ns").Get(context.Background(), "bitfinex:BTC:1h:200")
	suite.NoError(err)
	suite.Require().True(got.IsSome())
	suite.Equal("BTC", got.Unwrap().Symbol)
	suite.Equal([]float64{1.5, 2}, got.Unwrap().Closes())
	suite.NoError(mock.ExpectationsWereMet())
}

func (suite *RedisStoreTestSuite) TestGetMiss() {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("ns:k").RedisNil()

	got, err := NewRedisStore(rdb, "ns").Get(context.Background(), "k")
	suite.NoError(err)
	suite.True(got.IsNone())
	suite.NoError(mock.ExpectationsWereMet())
}

func (suite *RedisStoreTestSuite) TestGetCorruptedEntryIsDeleted() {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("ns:k").SetVal("invalid json")
	mock.ExpectDel("ns:k").SetVal(1)

	got, err := NewRedisStore(rdb, "ns").Get(context.Background(), "k")
	suite.NoError(err)
	suite.True(got.IsNone())
	suite.NoError(mock.ExpectationsWereMet())
}

func (suite *RedisStoreTestSuite) TestGetError() {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("ns:k").SetErr(errors.New("connection refused"))

	_, err := NewRedisStore(rdb, "ns").Get(context.Background(), "k")
	suite.Require().Error(err)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeCacheFailed))
}

func (suite *RedisStoreTestSuite) TestSet() {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected, _ := json.Marshal(sampleTable())
	mock.ExpectSet("ns:k", expected, time.Minute).SetVal("OK")

	err := NewRedisStore(rdb, "ns").Set(context.Background(), "k", sampleTable(), time.Minute)
	suite.NoError(err)
	suite.NoError(mock.ExpectationsWereMet())
}

func (suite *RedisStoreTestSuite) TestSetError() {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected, _ := json.Marshal(sampleTable())
	mock.ExpectSet("ns:k", expected, DefaultTTL).SetErr(errors.New("OOM"))

	err := NewRedisStore(rdb, "ns").Set(context.Background(), "k", sampleTable(), 0)
	suite.Require().Error(err)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeCacheFailed))
}
