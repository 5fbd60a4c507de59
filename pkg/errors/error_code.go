package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation and configuration errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidCandleTable   ErrorCode = 103
	ErrCodeInvalidTimeframe     ErrorCode = 104
	ErrCodeInvalidSymbol        ErrorCode = 105
	ErrCodeConfigLoadFailed     ErrorCode = 106

	// Indicator errors (200-299)
	ErrCodeIndicatorNotFound      ErrorCode = 200
	ErrCodeIndicatorAlreadyExists ErrorCode = 201
	ErrCodeInvalidIndicatorConfig ErrorCode = 202
	ErrCodeIndicatorCalculation   ErrorCode = 203

	// Signal errors (300-399)
	ErrCodeInvalidSignalValue     ErrorCode = 300
	ErrCodeSnapshotLengthMismatch ErrorCode = 301

	// Backtest errors (400-499)
	ErrCodeSignalSequenceMismatch ErrorCode = 400
	ErrCodeBacktestConfigError    ErrorCode = 401
	ErrCodeMarkerNotAvailable     ErrorCode = 402
	ErrCodeMarkerWriteFailed      ErrorCode = 403

	// Market data errors (500-599)
	ErrCodeMarketDataFetchFailed ErrorCode = 500
	ErrCodeMarketDataParseFailed ErrorCode = 501
	ErrCodeInvalidProvider       ErrorCode = 502
	ErrCodeNoDataFound           ErrorCode = 503
	ErrCodeCacheFailed           ErrorCode = 504

	// Notification and history errors (600-699)
	ErrCodeNotificationFailed ErrorCode = 600
	ErrCodeHistoryQueryFailed ErrorCode = 601
	ErrCodeHistoryWriteFailed ErrorCode = 602
)
