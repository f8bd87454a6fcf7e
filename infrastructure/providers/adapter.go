package providers

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/swanstudios/plangate/internal/domain"
	"github.com/swanstudios/plangate/internal/prompt"
)

// Defaults shared by every adapter.
const (
	// defaultMaxTokens bounds a completion when the request does not
	// override it. Long-horizon plans are the largest outputs.
	defaultMaxTokens = 8192

	// defaultTemperature keeps plan generation mildly creative while
	// staying schema-stable.
	defaultTemperature = 0.7

	// charsPerToken is the estimation ratio used when a provider omits
	// usage data from its response.
	charsPerToken = 4
)

// Credentials configures one provider adapter.
type Credentials struct {
	APIKey  string
	BaseURL string
	Model   string
}

// newPacer builds the outbound request pacer every adapter carries.
// Two requests per second with a small burst keeps a burst of failover
// retries from hammering a vendor that just recovered.
func newPacer() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(2), 4)
}

// renderPrompt selects and renders the prompt pair for a request. The
// builders only ever see the de-identified payload; no user identifier
// reaches a provider.
func renderPrompt(gc *domain.GenerationContext) (system, user string) {
	switch gc.RequestType {
	case domain.RequestLongHorizonGeneration:
		return prompt.LongHorizonSystemMessage, prompt.BuildLongHorizonPrompt(prompt.LongHorizonInput{
			Payload:         gc.Payload,
			HorizonMonths:   gc.HorizonMonths,
			Context:         mapField(gc.Payload, "trainingContext"),
			NasmConstraints: gc.ServerConstraints,
		})
	default:
		return prompt.WorkoutSystemMessage, prompt.BuildWorkoutPrompt(prompt.WorkoutInput{
			Payload:           gc.Payload,
			ServerConstraints: gc.ServerConstraints,
		})
	}
}

// maxTokensFor returns the completion budget for a request.
func maxTokensFor(gc *domain.GenerationContext) int {
	if gc.MaxTokens > 0 {
		return gc.MaxTokens
	}
	return defaultMaxTokens
}

// modelFor returns the model to use, honoring a per-request preference
// over the adapter's configured model.
func modelFor(gc *domain.GenerationContext, configured string) string {
	if gc.ModelPreference != "" {
		return gc.ModelPreference
	}
	return configured
}

// estimateTokens approximates a token count from text length, used
// only when the provider response carries no usage data.
func estimateTokens(text string) int {
	return len(text) / charsPerToken
}

// pace blocks until the adapter's outbound limiter admits a call.
func pace(ctx context.Context, limiter *rate.Limiter, cl classifier) *domain.ProviderError {
	if err := limiter.Wait(ctx); err != nil {
		return cl.classifyTransport(err)
	}
	return nil
}

func mapField(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]any)
	return sub
}
