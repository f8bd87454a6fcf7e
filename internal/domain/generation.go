// Package domain defines the core types shared by the AI generation
// pipeline: the immutable request context, normalized provider results
// and errors, routing outcomes, and the validated plan structures.
package domain

import "time"

// RequestType identifies the kind of AI generation being requested.
type RequestType string

// Supported generation request types.
const (
	// RequestWorkoutGeneration asks for a single multi-week workout plan.
	RequestWorkoutGeneration RequestType = "workout_generation"

	// RequestLongHorizonGeneration asks for a multi-month periodization
	// plan composed of mesocycle blocks.
	RequestLongHorizonGeneration RequestType = "long_horizon_generation"
)

// GenerationContext is the immutable request bundle handed to the
// provider router. It is created once per generation call and must not
// be mutated afterwards.
//
// UserID is used only for rate limiting and audit correlation; it is
// never forwarded to a provider. DisplayName is used exclusively for
// local PII detection on provider output and is never transmitted.
type GenerationContext struct {
	// RequestType selects the prompt and validation pipeline.
	RequestType RequestType

	// UserID identifies the caller for rate limiting and auditing.
	UserID int64

	// Payload is the de-identified client snapshot produced by the
	// upstream context builders. The router treats it as opaque.
	Payload map[string]any

	// ServerConstraints holds server-derived domain constraints
	// (NASM phase targets, pain restrictions). User-supplied free text
	// is never placed here.
	ServerConstraints map[string]any

	// PayloadHash is a content hash of Payload, used for audit
	// correlation and duplicate-call collapsing.
	PayloadHash string

	// PromptVersion tags which prompt template produced the request.
	PromptVersion string

	// HorizonMonths is set for long-horizon requests (3, 6, or 12).
	HorizonMonths int

	// ModelPreference optionally pins a specific model for the first
	// provider that supports it. Empty means provider default.
	ModelPreference string

	// MaxTokens optionally overrides the adapter's completion budget.
	MaxTokens int

	// Timeout optionally overrides the global routing deadline.
	Timeout time.Duration

	// DisplayName is the client's real display name, kept only so the
	// output validator can scan provider text for it.
	DisplayName string
}

// TokenUsage captures token accounting for a single provider call.
// EstimatedCostUSD is nil when the model's pricing is unknown.
type TokenUsage struct {
	InputTokens      int      `json:"inputTokens"`
	OutputTokens     int      `json:"outputTokens"`
	TotalTokens      int      `json:"totalTokens"`
	EstimatedCostUSD *float64 `json:"estimatedCostUsd"`
}

// ProviderResult is the normalized success shape every adapter must
// produce. RawText is untrusted until it clears the validation
// pipeline and must not be persisted verbatim if validation fails.
type ProviderResult struct {
	Provider     string        `json:"provider"`
	Model        string        `json:"model"`
	RawText      string        `json:"rawText"`
	Latency      time.Duration `json:"latencyMs"`
	FinishReason string        `json:"finishReason"`
	TokenUsage   *TokenUsage   `json:"tokenUsage"`
}

// RouterOutcome is the discriminated result of one routing call.
// Exactly one of Result (OK) or Errors (not OK) is meaningful.
// FailoverTrace is always populated, one entry per provider in the
// configured order, formatted "<provider>:<tag>".
type RouterOutcome struct {
	OK            bool
	Result        *ProviderResult
	Errors        []*ProviderError
	FailoverTrace []string
	Degraded      bool
}
