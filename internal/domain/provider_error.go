package domain

import "fmt"

// ErrorCode is the closed, vendor-agnostic taxonomy for provider
// failures. Adapters must map every vendor SDK error onto one of these
// codes; nothing else crosses the adapter boundary.
type ErrorCode string

// Normalized provider error codes.
const (
	ErrTimeout         ErrorCode = "PROVIDER_TIMEOUT"
	ErrRateLimit       ErrorCode = "PROVIDER_RATE_LIMIT"
	ErrAuth            ErrorCode = "PROVIDER_AUTH"
	ErrUnavailable     ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrInvalidResponse ErrorCode = "PROVIDER_INVALID_RESPONSE"
	ErrContentFilter   ErrorCode = "PROVIDER_CONTENT_FILTER"
	ErrNetwork         ErrorCode = "PROVIDER_NETWORK"
	ErrUnknown         ErrorCode = "UNKNOWN_PROVIDER_ERROR"
)

// retryableCodes is the subset of codes worth retrying within the same
// provider. Auth, content-filter, invalid-response, and unavailable
// indicate configuration or policy problems a retry cannot fix.
var retryableCodes = map[ErrorCode]bool{
	ErrTimeout:   true,
	ErrRateLimit: true,
	ErrNetwork:   true,
}

// Retryable reports whether a failure with this code may succeed on a
// retry against the same provider.
func (c ErrorCode) Retryable() bool { return retryableCodes[c] }

// ProviderError is the normalized failure shape for one provider
// attempt. Message is sanitized; vendor SDK internals never leak
// through it. StatusCode is zero when no HTTP status applies.
type ProviderError struct {
	Provider   string    `json:"provider"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Retryable  bool      `json:"retryable"`
	StatusCode int       `json:"statusCode,omitempty"`
}

// Error satisfies the standard error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s [%s] (HTTP %d): %s", e.Provider, e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Provider, e.Code, e.Message)
}

// NewProviderError builds a ProviderError with the retryable flag
// derived from the code.
func NewProviderError(provider string, code ErrorCode, statusCode int, message string) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		Retryable:  code.Retryable(),
		StatusCode: statusCode,
	}
}
