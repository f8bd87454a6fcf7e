package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swanstudios/plangate/internal/costing"
	"github.com/swanstudios/plangate/internal/domain"
	"github.com/swanstudios/plangate/internal/eligibility"
	"github.com/swanstudios/plangate/internal/validation"
)

// stubRouter returns a fixed outcome and records the contexts it saw.
type stubRouter struct {
	outcome *domain.RouterOutcome
	calls   []*domain.GenerationContext
}

func (r *stubRouter) Route(_ context.Context, gc *domain.GenerationContext) *domain.RouterOutcome {
	r.calls = append(r.calls, gc)
	return r.outcome
}

// stubLimiter returns a fixed decision and counts releases.
type stubLimiter struct {
	decision *domain.RateLimitDecision
	released int
}

func (l *stubLimiter) Check(int64) *domain.RateLimitDecision { return l.decision }
func (l *stubLimiter) ReleaseConcurrent(int64)               { l.released++ }

func allowAll() *stubLimiter {
	return &stubLimiter{decision: &domain.RateLimitDecision{Allowed: true}}
}

// stubMetrics records the rate-limit scopes it is handed.
type stubMetrics struct {
	rateLimitScopes []string
}

func (m *stubMetrics) RecordAttempt(string, string, float64)          {}
func (m *stubMetrics) RecordBreakerState(string, string)              {}
func (m *stubMetrics) RecordDegraded(string)                          {}
func (m *stubMetrics) RecordTokens(string, string, int, int, float64) {}

func (m *stubMetrics) RecordRateLimitHit(scope string) {
	m.rateLimitScopes = append(m.rateLimitScopes, scope)
}

func consented() *eligibility.ConsentProfile {
	return &eligibility.ConsentProfile{AIEnabled: true}
}

func successOutcome(rawText string) *domain.RouterOutcome {
	return &domain.RouterOutcome{
		OK: true,
		Result: &domain.ProviderResult{
			Provider: "openai",
			Model:    "gpt-4o",
			RawText:  rawText,
			Latency:  900 * time.Millisecond,
			TokenUsage: &domain.TokenUsage{
				InputTokens:  1200,
				OutputTokens: 600,
				TotalTokens:  1800,
			},
		},
		FailoverTrace: []string{"openai:success"},
	}
}

func workoutJSON(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"planName":      "Foundation Strength",
		"durationWeeks": 4,
		"days": []any{
			map[string]any{
				"dayNumber": 1,
				"name":      "Full Body A",
				"exercises": []any{
					map[string]any{"name": "Goblet Squat"},
				},
			},
		},
	})
	require.NoError(t, err)
	return string(raw)
}

func TestGenerateWorkoutSuccess(t *testing.T) {
	t.Parallel()

	router := &stubRouter{outcome: successOutcome(workoutJSON(t))}
	limiter := allowAll()
	tracker := costing.NewTracker()
	svc := NewService(router, limiter, nil, tracker)

	result, err := svc.GenerateWorkout(context.Background(), GenerateRequest{
		UserID:    42,
		ActorRole: "trainer",
		Consent:   consented(),
		Payload:   map[string]any{"client": map[string]any{"alias": "Iron Falcon"}},
	})
	require.NoError(t, err)

	require.True(t, result.OK())
	assert.Equal(t, "Foundation Strength", result.WorkoutPlan.PlanName)
	assert.Equal(t, "openai", result.Provider)
	assert.Equal(t, "gpt-4o", result.Model)
	assert.Equal(t, []string{"openai:success"}, result.FailoverTrace)
	assert.Len(t, result.PayloadHash, 64, "payload hash should be hex sha256")
	assert.NotEmpty(t, result.PromptVersion)
	assert.True(t, result.Pipeline.OK)

	assert.Equal(t, 1, limiter.released, "in-flight slot must be released")
	require.Len(t, tracker.Attempts(), 1)
	assert.True(t, tracker.Attempts()[0].Success)

	require.Len(t, router.calls, 1)
	gc := router.calls[0]
	assert.Equal(t, domain.RequestWorkoutGeneration, gc.RequestType)
	assert.Equal(t, result.PayloadHash, gc.PayloadHash)
}

func TestGenerateWorkoutDeniedConsentSkipsRouting(t *testing.T) {
	t.Parallel()

	router := &stubRouter{outcome: successOutcome(workoutJSON(t))}
	svc := NewService(router, allowAll(), nil, nil)

	result, err := svc.GenerateWorkout(context.Background(), GenerateRequest{
		UserID:    42,
		ActorRole: "trainer",
		Consent:   nil,
	})
	require.NoError(t, err)

	assert.False(t, result.OK())
	assert.Equal(t, eligibility.DecisionDeny, result.Eligibility.Decision)
	assert.Equal(t, eligibility.CodeConsentMissing, result.Eligibility.ReasonCode)
	assert.Empty(t, router.calls, "denied requests must never reach a provider")
}

func TestGenerateWorkoutAdminOverrideProceeds(t *testing.T) {
	t.Parallel()

	router := &stubRouter{outcome: successOutcome(workoutJSON(t))}
	svc := NewService(router, allowAll(), nil, nil)

	result, err := svc.GenerateWorkout(context.Background(), GenerateRequest{
		UserID:    42,
		ActorRole: "admin",
		Consent:   nil,
	})
	require.NoError(t, err)

	require.True(t, result.OK())
	assert.Equal(t, eligibility.DecisionAllowWithOverride, result.Eligibility.Decision)
	assert.Contains(t, result.Eligibility.Warnings, eligibility.CodeOverrideUsed)
}

func TestGenerateWorkoutRateLimited(t *testing.T) {
	t.Parallel()

	router := &stubRouter{outcome: successOutcome(workoutJSON(t))}
	limiter := &stubLimiter{decision: &domain.RateLimitDecision{
		Code:              domain.LimitCodeUser,
		Message:           "per-user limit of 10 requests per minute reached",
		RetryAfterSeconds: 60,
		Scope:             "user_minute",
	}}
	metrics := &stubMetrics{}
	svc := NewService(router, limiter, metrics, nil)

	result, err := svc.GenerateWorkout(context.Background(), GenerateRequest{
		UserID:    42,
		ActorRole: "trainer",
		Consent:   consented(),
	})
	require.NoError(t, err)

	assert.False(t, result.OK())
	require.NotNil(t, result.RateLimit)
	assert.Equal(t, domain.LimitCodeUser, result.RateLimit.Code)
	assert.Equal(t, []string{"user_minute"}, metrics.rateLimitScopes,
		"the metric label must carry the limiter's scope")
	assert.Empty(t, router.calls)
	assert.Zero(t, limiter.released, "rejected requests hold no slot")
}

func TestPreflightHoldsSlotUntilReleased(t *testing.T) {
	t.Parallel()

	router := &stubRouter{outcome: successOutcome(workoutJSON(t))}
	limiter := allowAll()
	svc := NewService(router, limiter, nil, nil)

	_, outcome, release, done := svc.preflight(context.Background(), GenerateRequest{
		UserID:    42,
		ActorRole: "trainer",
		Consent:   consented(),
	}, domain.RequestWorkoutGeneration)
	require.False(t, done)
	require.NotNil(t, outcome)

	assert.Zero(t, limiter.released,
		"the slot must stay held while the caller validates the output")
	release()
	assert.Equal(t, 1, limiter.released)
}

func TestGenerateWorkoutDegradedFallback(t *testing.T) {
	t.Parallel()

	router := &stubRouter{outcome: &domain.RouterOutcome{
		Degraded: true,
		Errors: []*domain.ProviderError{
			domain.NewProviderError("openai", domain.ErrUnavailable, 503, "upstream down"),
			domain.NewProviderError("anthropic", domain.ErrTimeout, 0, "timed out"),
		},
		FailoverTrace: []string{"openai:PROVIDER_UNAVAILABLE", "anthropic:PROVIDER_TIMEOUT"},
	}}
	svc := NewService(router, allowAll(), nil, nil)

	result, err := svc.GenerateWorkout(context.Background(), GenerateRequest{
		UserID:    42,
		ActorRole: "trainer",
		Consent:   consented(),
	})
	require.NoError(t, err)

	assert.False(t, result.OK())
	require.NotNil(t, result.Degraded)
	assert.Equal(t, "AI_DEGRADED_MODE", result.Degraded.Code)
	assert.Len(t, result.Degraded.Fallback.Reasons, 2)
	assert.GreaterOrEqual(t, len(result.Degraded.Fallback.TemplateSuggestions), 5)
}

func TestGenerateWorkoutRejectsLeakedName(t *testing.T) {
	t.Parallel()

	leaky := `{"planName":"Plan for Maria Gonzalez","durationWeeks":4,` +
		`"days":[{"dayNumber":1,"name":"Day 1","exercises":[{"name":"Squat"}]}]}`
	router := &stubRouter{outcome: successOutcome(leaky)}
	svc := NewService(router, allowAll(), nil, nil)

	result, err := svc.GenerateWorkout(context.Background(), GenerateRequest{
		UserID:      42,
		ActorRole:   "trainer",
		Consent:     consented(),
		DisplayName: "Maria Gonzalez",
	})
	require.NoError(t, err)

	assert.False(t, result.OK())
	require.NotNil(t, result.Pipeline)
	assert.Equal(t, validation.StagePIILeak, result.Pipeline.FailStage)
}

func TestGenerateLongHorizonEnforcesRequestedHorizon(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(map[string]any{
		"planName":      "Half-Year Build",
		"horizonMonths": 6,
		"blocks": []any{
			map[string]any{
				"sequence":      1,
				"nasmFramework": "OPT",
				"optPhase":      1,
				"phaseName":     "Stabilization Endurance",
				"durationWeeks": 4,
			},
		},
	})
	require.NoError(t, err)

	router := &stubRouter{outcome: successOutcome(string(raw))}
	svc := NewService(router, allowAll(), nil, nil)

	result, svcErr := svc.GenerateLongHorizon(context.Background(), GenerateRequest{
		UserID:        42,
		ActorRole:     "trainer",
		Consent:       consented(),
		HorizonMonths: 12,
	})
	require.NoError(t, svcErr)

	assert.False(t, result.OK())
	require.NotNil(t, result.Pipeline)
	assert.Equal(t, validation.StageValidation, result.Pipeline.FailStage)

	result, svcErr = svc.GenerateLongHorizon(context.Background(), GenerateRequest{
		UserID:        42,
		ActorRole:     "trainer",
		Consent:       consented(),
		HorizonMonths: 6,
	})
	require.NoError(t, svcErr)
	require.True(t, result.OK())
	assert.Equal(t, 6, result.LongHorizonPlan.HorizonMonths)
}

func TestGenerateRecordsFailedAttempts(t *testing.T) {
	t.Parallel()

	router := &stubRouter{outcome: &domain.RouterOutcome{
		Degraded: true,
		Errors: []*domain.ProviderError{
			domain.NewProviderError("openai", domain.ErrUnavailable, 503, "down"),
		},
		FailoverTrace: []string{"openai:PROVIDER_UNAVAILABLE"},
	}}
	tracker := costing.NewTracker()
	svc := NewService(router, allowAll(), nil, tracker)

	_, err := svc.GenerateWorkout(context.Background(), GenerateRequest{
		UserID:    42,
		ActorRole: "trainer",
		Consent:   consented(),
	})
	require.NoError(t, err)

	attempts := tracker.Attempts()
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].Success)
	assert.Equal(t, "openai", attempts[0].Provider)
}
