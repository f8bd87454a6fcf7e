package application

import (
	"context"

	"github.com/swanstudios/plangate/internal/costing"
	"github.com/swanstudios/plangate/internal/degraded"
	"github.com/swanstudios/plangate/internal/domain"
	"github.com/swanstudios/plangate/internal/eligibility"
	"github.com/swanstudios/plangate/internal/ports"
	"github.com/swanstudios/plangate/internal/prompt"
	"github.com/swanstudios/plangate/internal/validation"
)

// GenerationRouter routes one generation request through the provider
// failover chain. Implemented by infrastructure/routing.Router.
type GenerationRouter interface {
	Route(ctx context.Context, gc *domain.GenerationContext) *domain.RouterOutcome
}

// GenerateRequest is one caller-facing generation request, identity
// and consent included. Payload must already be de-identified; the
// service forwards it opaquely.
type GenerateRequest struct {
	UserID      int64
	ActorUserID int64
	ActorRole   string
	Consent     *eligibility.ConsentProfile

	// DisplayName is used only to scan provider output for leaks.
	DisplayName string

	Payload           map[string]any
	ServerConstraints map[string]any

	// HorizonMonths applies to long-horizon requests only.
	HorizonMonths int
}

// GenerateResult is the discriminated outcome of one generation call.
// Exactly one of the failure fields (Eligibility deny, RateLimit
// rejection, failed Pipeline, Degraded) or a plan is meaningful.
type GenerateResult struct {
	Eligibility *eligibility.Result        `json:"eligibility"`
	RateLimit   *domain.RateLimitDecision  `json:"rateLimit,omitempty"`
	Pipeline    *validation.PipelineResult `json:"pipeline,omitempty"`
	Degraded    *degraded.Response         `json:"degraded,omitempty"`

	// WorkoutPlan or LongHorizonPlan is set on full success, matching
	// the operation called.
	WorkoutPlan     *domain.WorkoutPlan     `json:"workoutPlan,omitempty"`
	LongHorizonPlan *domain.LongHorizonPlan `json:"longHorizonPlan,omitempty"`

	Provider      string   `json:"provider,omitempty"`
	Model         string   `json:"model,omitempty"`
	FailoverTrace []string `json:"failoverTrace,omitempty"`
	PayloadHash   string   `json:"payloadHash,omitempty"`
	PromptVersion string   `json:"promptVersion,omitempty"`
}

// OK reports whether the call produced a vetted plan.
func (r *GenerateResult) OK() bool {
	return r.WorkoutPlan != nil || r.LongHorizonPlan != nil
}

// Service wires the generation pipeline end to end: consent gate, rate
// limiting, provider routing, output validation, degraded fallback,
// and cost tracking.
type Service struct {
	router  GenerationRouter
	limiter ports.RateLimiter
	metrics ports.MetricsCollector
	tracker *costing.Tracker
}

// NewService creates a Service. metrics and tracker may be nil.
func NewService(router GenerationRouter, limiter ports.RateLimiter, metrics ports.MetricsCollector, tracker *costing.Tracker) *Service {
	return &Service{
		router:  router,
		limiter: limiter,
		metrics: metrics,
		tracker: tracker,
	}
}

// GenerateWorkout runs one workout generation request end to end.
// Domain failures (denied consent, rate limits, provider exhaustion,
// rejected output) are reported in the result, not as Go errors.
func (s *Service) GenerateWorkout(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	result, outcome, release, done := s.preflight(ctx, req, domain.RequestWorkoutGeneration)
	defer release()
	if done {
		return result, nil
	}

	plan, pipeline := validation.RunWorkoutPipeline(outcome.Result.RawText, req.DisplayName)
	result.Pipeline = &pipeline
	result.WorkoutPlan = plan
	return result, nil
}

// GenerateLongHorizon runs one long-horizon generation request end to
// end. The requested horizon is enforced against the returned plan.
func (s *Service) GenerateLongHorizon(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	result, outcome, release, done := s.preflight(ctx, req, domain.RequestLongHorizonGeneration)
	defer release()
	if done {
		return result, nil
	}

	plan, pipeline := validation.RunLongHorizonPipeline(outcome.Result.RawText, req.DisplayName, req.HorizonMonths)
	result.Pipeline = &pipeline
	result.LongHorizonPlan = plan
	return result, nil
}

// preflight runs the stages shared by both operations: eligibility,
// rate limiting, payload hashing, and provider routing. done reports
// that the call already resolved (denied, limited, or degraded).
// Callers must defer release so the in-flight slot stays held until
// validation finishes.
func (s *Service) preflight(ctx context.Context, req GenerateRequest, requestType domain.RequestType) (*GenerateResult, *domain.RouterOutcome, func(), bool) {
	result := &GenerateResult{}
	release := func() {}

	result.Eligibility = eligibility.Check(eligibility.Request{
		TargetUserID: req.UserID,
		ActorUserID:  req.ActorUserID,
		ActorRole:    req.ActorRole,
		Profile:      req.Consent,
	})
	if result.Eligibility.Decision == eligibility.DecisionDeny {
		return result, nil, release, true
	}

	decision := s.limiter.Check(req.UserID)
	if !decision.Allowed {
		result.RateLimit = decision
		if s.metrics != nil {
			s.metrics.RecordRateLimitHit(decision.Scope)
		}
		return result, nil, release, true
	}
	release = func() { s.limiter.ReleaseConcurrent(req.UserID) }

	hash, err := HashPayload(req.Payload)
	if err != nil {
		// An unhashable payload cannot be routed deterministically;
		// route it anyway without call collapsing.
		hash = ""
	}
	result.PayloadHash = hash
	result.PromptVersion = promptVersionFor(requestType)

	outcome := s.router.Route(ctx, &domain.GenerationContext{
		RequestType:       requestType,
		UserID:            req.UserID,
		Payload:           req.Payload,
		ServerConstraints: req.ServerConstraints,
		PayloadHash:       hash,
		PromptVersion:     result.PromptVersion,
		HorizonMonths:     req.HorizonMonths,
		DisplayName:       req.DisplayName,
	})
	result.FailoverTrace = outcome.FailoverTrace
	s.recordAttempts(outcome)

	if !outcome.OK {
		result.Degraded = degraded.BuildResponse(outcome.Errors, outcome.FailoverTrace)
		return result, nil, release, true
	}

	result.Provider = outcome.Result.Provider
	result.Model = outcome.Result.Model
	return result, outcome, release, false
}

// recordAttempts feeds the routing outcome into the cost tracker.
func (s *Service) recordAttempts(outcome *domain.RouterOutcome) {
	if s.tracker == nil {
		return
	}
	for _, perr := range outcome.Errors {
		s.tracker.Record(costing.Attempt{Provider: perr.Provider})
	}
	if outcome.OK {
		a := costing.Attempt{
			Provider:  outcome.Result.Provider,
			Model:     outcome.Result.Model,
			Success:   true,
			LatencyMs: float64(outcome.Result.Latency.Milliseconds()),
		}
		if tu := outcome.Result.TokenUsage; tu != nil {
			a.CostUSD = tu.EstimatedCostUSD
		}
		s.tracker.Record(a)
	}
}

func promptVersionFor(requestType domain.RequestType) string {
	if requestType == domain.RequestLongHorizonGeneration {
		return prompt.LongHorizonPromptVersion
	}
	return prompt.WorkoutPromptVersion
}
