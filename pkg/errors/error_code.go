package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidDecision      ErrorCode = 102
	ErrCodeInvalidCallback      ErrorCode = 103
	ErrCodeInvalidInterval      ErrorCode = 104
	ErrCodeInsufficientData     ErrorCode = 105

	// Storage errors (200-299)
	ErrCodeStorageUnavailable ErrorCode = 200
	ErrCodeQueryFailed        ErrorCode = 201
	ErrCodeSignalNotFound     ErrorCode = 202
	ErrCodeAlreadyProcessed   ErrorCode = 203
	ErrCodeSignalNotExecuted  ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeSnapshotWriteFailed ErrorCode = 300
	ErrCodeIndicatorFailed     ErrorCode = 301

	// Oracle errors (400-499)
	ErrCodeOracleUnavailable    ErrorCode = 400
	ErrCodeOracleBadResponse    ErrorCode = 401
	ErrCodeOracleSchemaRejected ErrorCode = 402

	// Exchange errors (500-599)
	ErrCodeExchangeRequestFailed ErrorCode = 500
	ErrCodeExchangeDomainError   ErrorCode = 501
	ErrCodeOrderFailed           ErrorCode = 502
	ErrCodePositionNotFound      ErrorCode = 503

	// Market data errors (600-699)
	ErrCodeMarketDataFetchFailed ErrorCode = 600
	ErrCodeMarketDataParseFailed ErrorCode = 601
	ErrCodeNoClosedCandle        ErrorCode = 602

	// Notification errors (700-799)
	ErrCodeNotifyFailed  ErrorCode = 700
	ErrCodeWebhookFailed ErrorCode = 701

	// Pipeline errors (800-899)
	ErrCodeTickFailed     ErrorCode = 800
	ErrCodeTickInFlight   ErrorCode = 801
	ErrCodeNotInitialized ErrorCode = 802
)
