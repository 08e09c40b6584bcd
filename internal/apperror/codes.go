package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Arbitrage-specific error codes
const (
	// Venue registry errors
	CodeRefreshFailed      Code = "REFRESH_FAILED"
	CodeAllSourcesFailed   Code = "ALL_SOURCES_FAILED"
	CodeVenueSourceError   Code = "VENUE_SOURCE_ERROR"
	CodeVenueNotFound      Code = "VENUE_NOT_FOUND"
	CodeInstrumentNotFound Code = "INSTRUMENT_NOT_FOUND"

	// RPC errors
	CodeRPCConnectionFailed Code = "RPC_CONNECTION_FAILED"
	CodeRPCError            Code = "RPC_ERROR"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketReconnecting    Code = "WEBSOCKET_RECONNECTING"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"

	// Simulation errors
	CodeSimulationAborted     Code = "SIMULATION_ABORTED"
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"
	CodePriceOverflow         Code = "PRICE_OVERFLOW"
	CodeUnsupportedVenueKind  Code = "UNSUPPORTED_VENUE_KIND"
	CodeInvalidPath           Code = "INVALID_PATH"
	CodeStaleSnapshot         Code = "STALE_SNAPSHOT"

	// Strategy errors
	CodeStrategyFailed     Code = "STRATEGY_FAILED"
	CodeReplayInputMissing Code = "REPLAY_INPUT_MISSING"
	CodeReplayInputInvalid Code = "REPLAY_INPUT_INVALID"

	// Submission/execution errors
	CodeSubmissionRejected Code = "SUBMISSION_REJECTED"
	CodeBelowProfitFloor   Code = "BELOW_PROFIT_FLOOR"
	CodeSlippageExceeded   Code = "SLIPPAGE_EXCEEDED"
	CodeExecutionFailed    Code = "EXECUTION_FAILED"
	CodeFeeEstimateFailed  Code = "FEE_ESTIMATE_FAILED"

	// Cache errors
	CodeCacheMiss    Code = "CACHE_MISS"
	CodeCacheExpired Code = "CACHE_EXPIRED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
