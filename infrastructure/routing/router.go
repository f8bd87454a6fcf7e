package routing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/swanstudios/plangate/internal/costing"
	"github.com/swanstudios/plangate/internal/domain"
	"github.com/swanstudios/plangate/internal/ports"
)

// Failover trace tags. Entries are formatted "<provider>:<tag>"; a
// failed provider's tag is its final error code instead.
const (
	traceNotRegistered = "not_registered"
	traceNotConfigured = "not_configured"
	traceCircuitOpen   = "circuit_open"
	traceSuccess       = "success"
)

// RouterConfig tunes the failover router.
type RouterConfig struct {
	// ProviderOrder is the failover sequence, most preferred first.
	ProviderOrder []string

	// GlobalTimeout bounds one entire routing call.
	GlobalTimeout time.Duration

	// MaxAttempts is the per-provider attempt cap.
	MaxAttempts int

	// RetryDelay is the fixed pause between attempts on the same
	// provider.
	RetryDelay time.Duration
}

// Router walks the configured provider order until one adapter
// produces a result, consulting the circuit breaker before every
// provider and retrying transient failures within the global deadline.
// Routing never returns a Go error: exhaustion yields a degraded
// outcome carrying every provider error and the full failover trace.
type Router struct {
	cfg      RouterConfig
	registry *Registry
	breaker  *Breaker
	metrics  ports.MetricsCollector
	tracer   trace.Tracer
	group    singleflight.Group
	sleep    func(context.Context, time.Duration) bool
}

// NewRouter creates a Router. metrics may be nil.
func NewRouter(cfg RouterConfig, registry *Registry, breaker *Breaker, metrics ports.MetricsCollector) *Router {
	return &Router{
		cfg:      cfg,
		registry: registry,
		breaker:  breaker,
		metrics:  metrics,
		tracer:   otel.Tracer("plangate/routing"),
		sleep:    sleepCtx,
	}
}

// Route runs one generation request through the failover chain.
// Concurrent calls with the same user and payload hash are collapsed
// into a single provider call whose outcome is shared.
func (rt *Router) Route(ctx context.Context, gc *domain.GenerationContext) *domain.RouterOutcome {
	if gc.PayloadHash == "" {
		return rt.route(ctx, gc)
	}

	key := fmt.Sprintf("%d:%s:%s", gc.UserID, gc.RequestType, gc.PayloadHash)
	v, _, _ := rt.group.Do(key, func() (any, error) {
		return rt.route(ctx, gc), nil
	})
	return v.(*domain.RouterOutcome)
}

func (rt *Router) route(ctx context.Context, gc *domain.GenerationContext) *domain.RouterOutcome {
	timeout := rt.cfg.GlobalTimeout
	if gc.Timeout > 0 {
		timeout = gc.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := rt.tracer.Start(ctx, "route_generation",
		trace.WithAttributes(
			attribute.String("request_type", string(gc.RequestType)),
			attribute.Int("provider_count", len(rt.cfg.ProviderOrder)),
		))
	defer span.End()

	outcome := &domain.RouterOutcome{}
	for _, name := range rt.cfg.ProviderOrder {
		if ctx.Err() != nil {
			outcome.Errors = append(outcome.Errors, domain.NewProviderError(
				name, domain.ErrTimeout, 0, "global routing deadline exhausted"))
			outcome.FailoverTrace = append(outcome.FailoverTrace, traceEntry(name, string(domain.ErrTimeout)))
			continue
		}

		adapter, ok := rt.registry.Get(name)
		if !ok {
			outcome.FailoverTrace = append(outcome.FailoverTrace, traceEntry(name, traceNotRegistered))
			continue
		}
		if !adapter.IsConfigured() {
			outcome.FailoverTrace = append(outcome.FailoverTrace, traceEntry(name, traceNotConfigured))
			continue
		}

		allowed, state := rt.breaker.CanRequest(name)
		if rt.metrics != nil {
			rt.metrics.RecordBreakerState(name, state)
		}
		if !allowed {
			outcome.FailoverTrace = append(outcome.FailoverTrace, traceEntry(name, traceCircuitOpen))
			continue
		}

		result, perr := rt.tryProvider(ctx, adapter, gc)
		if perr == nil {
			finishSuccess(result, gc)
			if rt.metrics != nil {
				rt.metrics.RecordAttempt(name, "success", result.Latency.Seconds())
				if result.TokenUsage != nil {
					cost := 0.0
					if result.TokenUsage.EstimatedCostUSD != nil {
						cost = *result.TokenUsage.EstimatedCostUSD
					}
					rt.metrics.RecordTokens(name, result.Model,
						result.TokenUsage.InputTokens, result.TokenUsage.OutputTokens, cost)
				}
			}
			outcome.OK = true
			outcome.Result = result
			outcome.FailoverTrace = append(outcome.FailoverTrace, traceEntry(name, traceSuccess))
			span.SetAttributes(attribute.String("selected_provider", name))
			return outcome
		}

		outcome.Errors = append(outcome.Errors, perr)
		outcome.FailoverTrace = append(outcome.FailoverTrace, traceEntry(name, string(perr.Code)))
		if rt.metrics != nil {
			rt.metrics.RecordAttempt(name, string(perr.Code), 0)
		}
	}

	outcome.Degraded = true
	span.SetAttributes(attribute.Bool("degraded", true))
	if rt.metrics != nil {
		rt.metrics.RecordDegraded(string(gc.RequestType))
	}
	return outcome
}

// tryProvider runs up to MaxAttempts calls against one adapter. Only
// retryable error codes are retried, and only while the global
// deadline still holds. Every failure is recorded with the breaker.
func (rt *Router) tryProvider(ctx context.Context, adapter ports.ProviderAdapter, gc *domain.GenerationContext) (*domain.ProviderResult, *domain.ProviderError) {
	var lastErr *domain.ProviderError

	for attempt := 1; attempt <= rt.cfg.MaxAttempts; attempt++ {
		result, perr := adapter.GenerateDraft(ctx, gc)
		if perr == nil {
			rt.breaker.RecordSuccess(adapter.Name())
			return result, nil
		}

		rt.breaker.RecordFailure(adapter.Name())
		lastErr = perr

		if !perr.Retryable || attempt == rt.cfg.MaxAttempts {
			break
		}
		if !rt.sleep(ctx, rt.cfg.RetryDelay) {
			break
		}
	}
	return nil, lastErr
}

// finishSuccess fills derived result fields the adapter left empty.
func finishSuccess(result *domain.ProviderResult, gc *domain.GenerationContext) {
	if result.TokenUsage == nil {
		return
	}
	tu := result.TokenUsage
	if tu.TotalTokens == 0 {
		tu.TotalTokens = tu.InputTokens + tu.OutputTokens
	}
	if tu.EstimatedCostUSD == nil {
		tu.EstimatedCostUSD = costing.EstimateCost(result.Model, tu.InputTokens, tu.OutputTokens)
	}
}

func traceEntry(provider, tag string) string {
	return provider + ":" + tag
}

// sleepCtx pauses for d unless ctx expires first. Reports whether the
// full pause completed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
