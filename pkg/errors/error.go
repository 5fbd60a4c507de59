// Package errors provides coded errors shared by every layer of the signal pipeline.
//
// Codes are grouped by range:
//   - General (1-99)
//   - Validation and configuration (100-199)
//   - Indicators (200-299)
//   - Signal evaluation (300-399)
//   - Backtesting and marks (400-499)
//   - Market data fetching (500-599)
//   - Notification and signal history (600-699)
//
// Usage:
//
//	err := errors.Newf(errors.ErrCodeInvalidSignalValue, "unknown signal %q at index %d", raw, i)
//	if errors.HasCode(err, errors.ErrCodeInvalidSignalValue) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsUpstreamFailure reports whether err carries a market data code, meaning the
// candle source failed rather than the pipeline itself.
func IsUpstreamFailure(err error) bool {
	code := GetCode(err)

	return code >= ErrCodeMarketDataFetchFailed && code < ErrCodeNotificationFailed
}

// Category returns a short label for the range a code belongs to.
func (c ErrorCode) Category() string {
	switch {
	case c >= 600:
		return "notification"
	case c >= 500:
		return "marketdata"
	case c >= 400:
		return "backtest"
	case c >= 300:
		return "signal"
	case c >= 200:
		return "indicator"
	case c >= 100:
		return "validation"
	default:
		return "general"
	}
}
