package domain

// Rate limit rejection codes surfaced to API callers.
const (
	LimitCodeConcurrent = "AI_CONCURRENT_LIMIT"
	LimitCodeUser       = "AI_USER_RATE_LIMITED"
	LimitCodeGlobal     = "AI_GLOBAL_RATE_LIMITED"
)

// RateLimitDecision is the outcome of an admission check. When Allowed
// is true the remaining fields are zero and the caller holds one
// in-flight slot it must release when the request completes.
type RateLimitDecision struct {
	Allowed bool `json:"allowed"`

	// Code is one of the AI_* rejection codes; empty when allowed.
	Code string `json:"code,omitempty"`

	// Message is a caller-safe explanation of the rejection.
	Message string `json:"message,omitempty"`

	// RetryAfterSeconds hints when the caller may try again; zero for
	// concurrency rejections, which clear as soon as a slot frees.
	RetryAfterSeconds int `json:"retryAfterSeconds,omitempty"`

	// Scope names the window that rejected the request: "concurrent",
	// "user_minute", "user_hour", or "global". Used as the metrics
	// label, not surfaced to API callers.
	Scope string `json:"-"`
}
