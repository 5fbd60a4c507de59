package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidSignalValue, "unknown signal")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidSignalValue, err.Code)
	suite.Equal("unknown signal", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeInvalidTimeframe, "unsupported timeframe: %s", "2w")
	suite.Equal("unsupported timeframe: 2w", err.Message)
	suite.Equal("[104] unsupported timeframe: 2w", err.Error())
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeMarketDataFetchFailed, "failed to fetch candles", cause)
	suite.Equal(cause, err.Cause)
	suite.Equal("[500] failed to fetch candles: connection refused", err.Error())
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("bad json")
	err := Wrapf(ErrCodeMarketDataParseFailed, cause, "failed to decode %s candles", "tBTCUSD")
	suite.Equal("failed to decode tBTCUSD candles", err.Message)
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeInvalidCandleTable, GetCode(New(ErrCodeInvalidCandleTable, "bad table")))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", New(ErrCodeNoDataFound, "empty"))
	suite.Equal(ErrCodeNoDataFound, GetCode(wrapped))
}

func (suite *ErrorTestSuite) TestGetCodeReturnsOutermost() {
	inner := New(ErrCodeMarketDataParseFailed, "bad row")
	err := Wrap(ErrCodeMarketDataFetchFailed, "fetch failed", inner)
	suite.Equal(ErrCodeMarketDataFetchFailed, GetCode(err))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeSignalSequenceMismatch, "length mismatch")
	suite.True(HasCode(err, ErrCodeSignalSequenceMismatch))
	suite.False(HasCode(err, ErrCodeInvalidSignalValue))
}

func (suite *ErrorTestSuite) TestAsError() {
	err := New(ErrCodeIndicatorNotFound, "missing")
	var coded *Error
	suite.True(As(err, &coded))
	suite.Equal(ErrCodeIndicatorNotFound, coded.Code)
}

func (suite *ErrorTestSuite) TestIsUpstreamFailure() {
	suite.True(IsUpstreamFailure(New(ErrCodeMarketDataFetchFailed, "x")))
	suite.True(IsUpstreamFailure(New(ErrCodeNoDataFound, "x")))
	suite.False(IsUpstreamFailure(New(ErrCodeInvalidSignalValue, "x")))
	suite.False(IsUpstreamFailure(errors.New("x")))
	suite.False(IsUpstreamFailure(nil))
}

func (suite *ErrorTestSuite) TestCategory() {
	suite.Equal("general", ErrCodeUnknown.Category())
	suite.Equal("validation", ErrCodeInvalidConfiguration.Category())
	suite.Equal("indicator", ErrCodeInvalidIndicatorConfig.Category())
	suite.Equal("signal", ErrCodeInvalidSignalValue.Category())
	suite.Equal("backtest", ErrCodeSignalSequenceMismatch.Category())
	suite.Equal("marketdata", ErrCodeMarketDataFetchFailed.Category())
	suite.Equal("notification", ErrCodeNotificationFailed.Category())
}
