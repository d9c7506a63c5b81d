package types

// ErrorCode identifies one entry of the gateway's stable error taxonomy.
// Validation codes are deterministic and map to HTTP 400; execution codes
// are derived from the chain client's error text and map to HTTP 500.
type ErrorCode string

const (
	// Validation codes (client-caused, never retried).
	ErrMissingField      ErrorCode = "MISSING_FIELD"
	ErrInvalidAddress    ErrorCode = "INVALID_ADDRESS"
	ErrInvalidAmount     ErrorCode = "INVALID_AMOUNT"
	ErrInvalidKey        ErrorCode = "INVALID_KEY"
	ErrSenderKeyMismatch ErrorCode = "SENDER_KEY_MISMATCH"

	// Execution codes (surfaced at the submission boundary).
	ErrInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrUserRejected      ErrorCode = "USER_REJECTED"
	ErrGasEstimation     ErrorCode = "GAS_ESTIMATION_FAILED"
	ErrNetwork           ErrorCode = "NETWORK_ERROR"
	ErrTransactionFailed ErrorCode = "TRANSACTION_FAILED"

	// ErrConfig covers construction-time misconfiguration.
	ErrConfig ErrorCode = "CONFIG_ERROR"
)

// ClientError reports whether the code describes a fault in the request
// itself rather than in its execution.
func (c ErrorCode) ClientError() bool {
	switch c {
	case ErrMissingField, ErrInvalidAddress, ErrInvalidAmount,
		ErrInvalidKey, ErrSenderKeyMismatch:
		return true
	}
	return false
}

// GatewayError is the only error type that crosses the gateway's public
// boundaries. Data carries the underlying error text for non-production
// deployments; it is never required for handling.
type GatewayError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *GatewayError) Error() string {
	return e.Message
}

// NewGatewayError builds a GatewayError with no detail payload.
func NewGatewayError(code ErrorCode, message string) *GatewayError {
	return &GatewayError{Code: code, Message: message}
}
