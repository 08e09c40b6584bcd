package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Venue registry errors
	CodeRefreshFailed:      "Venue registry refresh failed",
	CodeAllSourcesFailed:   "All venue data sources failed",
	CodeVenueSourceError:   "Venue data source error",
	CodeVenueNotFound:      "Venue not found in snapshot",
	CodeInstrumentNotFound: "Instrument not found",

	// RPC errors
	CodeRPCConnectionFailed: "Failed to connect to RPC node",
	CodeRPCError:            "RPC call failed",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	// Simulation errors
	CodeSimulationAborted:     "Path simulation aborted",
	CodeInsufficientLiquidity: "Insufficient liquidity for swap",
	CodePriceOverflow:         "Pricing computation overflowed",
	CodeUnsupportedVenueKind:  "No quoter registered for venue kind",
	CodeInvalidPath:           "Path is not a valid cycle",
	CodeStaleSnapshot:         "Snapshot generation is stale",

	// Strategy errors
	CodeStrategyFailed:     "Strategy run failed",
	CodeReplayInputMissing: "Replay input file missing",
	CodeReplayInputInvalid: "Replay input file invalid",

	// Submission/execution errors
	CodeSubmissionRejected: "Opportunity submission rejected",
	CodeBelowProfitFloor:   "Profit below configured floor",
	CodeSlippageExceeded:   "Slippage bound exceeded",
	CodeExecutionFailed:    "Execution collaborator reported an error",
	CodeFeeEstimateFailed:  "Priority fee estimation failed",

	// Cache errors
	CodeCacheMiss:    "Cache miss",
	CodeCacheExpired: "Cache entry expired",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
