// Package ports declares the interfaces between the routing core and
// its infrastructure: provider adapters, circuit breaking, rate
// limiting, and metrics. Implementations live under infrastructure/.
package ports

import (
	"context"

	"github.com/swanstudios/plangate/internal/domain"
)

// ProviderAdapter is implemented once per AI vendor. Adapters own all
// vendor SDK details and must return only the normalized domain shapes;
// a vendor error type escaping an adapter is a bug.
type ProviderAdapter interface {
	// Name returns the canonical provider key ("openai", "anthropic",
	// "gemini", "venice") used in failover traces and metrics.
	Name() string

	// IsConfigured reports whether the adapter has the credentials it
	// needs. Unconfigured adapters are skipped by the router without
	// counting as failures.
	IsConfigured() bool

	// GenerateDraft performs one provider call. It must honor ctx
	// cancellation and classify every failure onto the normalized
	// error taxonomy. Exactly one of the returns is non-nil.
	GenerateDraft(ctx context.Context, gc *domain.GenerationContext) (*domain.ProviderResult, *domain.ProviderError)
}

// CircuitBreaker tracks per-provider failure history and gates
// requests while a provider is unhealthy.
type CircuitBreaker interface {
	// CanRequest reports whether a call to the provider is allowed and
	// the breaker state that produced the decision ("closed", "open",
	// "half_open"). In half-open state exactly one probe is admitted.
	CanRequest(provider string) (allowed bool, state string)

	// RecordSuccess clears the provider's failure history and closes
	// its breaker.
	RecordSuccess(provider string)

	// RecordFailure appends a failure; crossing the threshold within
	// the rolling window opens the breaker.
	RecordFailure(provider string)
}

// RateLimiter enforces the per-user and global sliding-window limits
// plus the per-user concurrency cap.
type RateLimiter interface {
	// Check admits or rejects a request for the user. On admission it
	// records the request in every window and marks one in-flight
	// slot, which the caller must release via ReleaseConcurrent.
	Check(userID int64) *domain.RateLimitDecision

	// ReleaseConcurrent frees the user's in-flight slot. Safe to call
	// when no slot is held.
	ReleaseConcurrent(userID int64)
}

// MetricsCollector receives routing observations. A nil collector is
// valid everywhere one is accepted.
type MetricsCollector interface {
	// RecordAttempt observes one provider attempt with its outcome
	// ("success" or the error code) and latency in seconds.
	RecordAttempt(provider, outcome string, seconds float64)

	// RecordBreakerState observes a breaker state transition.
	RecordBreakerState(provider, state string)

	// RecordRateLimitHit observes a rate-limit rejection by scope
	// ("concurrent", "user_minute", "user_hour", "global").
	RecordRateLimitHit(scope string)

	// RecordDegraded observes a fully exhausted routing call.
	RecordDegraded(requestType string)

	// RecordTokens observes token usage and estimated cost for a
	// successful call. Cost is zero when unknown.
	RecordTokens(provider, model string, inputTokens, outputTokens int, costUSD float64)
}
