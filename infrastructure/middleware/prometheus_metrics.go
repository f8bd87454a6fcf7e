// Package middleware provides cross-cutting observability for the
// generation pipeline.
package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/swanstudios/plangate/internal/ports"
)

// Breaker states mapped to gauge values; anything unrecognized reports
// as closed.
var breakerStateValues = map[string]float64{
	"closed":    0,
	"open":      1,
	"half_open": 2,
}

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks provider attempts, breaker state, rate-limit
// pressure, degraded fallbacks, and token spend.
type PrometheusMetrics struct {
	attempts      *prometheus.CounterVec
	attemptTimes  *prometheus.HistogramVec
	breakerState  *prometheus.GaugeVec
	rateLimitHits *prometheus.CounterVec
	degraded      *prometheus.CounterVec
	tokens        *prometheus.CounterVec
	costUSD       *prometheus.CounterVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and
// registers its collectors with reg. A nil reg uses the default
// registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_provider_attempts_total",
				Help: "Provider generation attempts by final outcome.",
			},
			[]string{"provider", "outcome"},
		),
		attemptTimes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_provider_attempt_duration_seconds",
				Help:    "Latency of successful provider attempts.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),
		breakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ai_provider_breaker_state",
				Help: "Circuit breaker state per provider (0 closed, 1 open, 2 half-open).",
			},
			[]string{"provider"},
		),
		rateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_rate_limit_hits_total",
				Help: "Rate limit rejections by scope.",
			},
			[]string{"scope"},
		),
		degraded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_degraded_responses_total",
				Help: "Routing calls that exhausted every provider.",
			},
			[]string{"request_type"},
		),
		tokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_tokens_total",
				Help: "Token usage for successful generations.",
			},
			[]string{"provider", "model", "direction"},
		),
		costUSD: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_estimated_cost_usd_total",
				Help: "Estimated generation spend in USD.",
			},
			[]string{"provider", "model"},
		),
	}
}

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// RecordAttempt counts one provider attempt; successful attempts also
// observe latency.
func (pm *PrometheusMetrics) RecordAttempt(provider, outcome string, seconds float64) {
	pm.attempts.WithLabelValues(provider, outcome).Inc()
	if outcome == "success" {
		pm.attemptTimes.WithLabelValues(provider).Observe(seconds)
	}
}

// RecordBreakerState publishes the provider's breaker state.
func (pm *PrometheusMetrics) RecordBreakerState(provider, state string) {
	pm.breakerState.WithLabelValues(provider).Set(breakerStateValues[state])
}

// RecordRateLimitHit counts one rejection in the given scope.
func (pm *PrometheusMetrics) RecordRateLimitHit(scope string) {
	pm.rateLimitHits.WithLabelValues(scope).Inc()
}

// RecordDegraded counts one fully exhausted routing call.
func (pm *PrometheusMetrics) RecordDegraded(requestType string) {
	pm.degraded.WithLabelValues(requestType).Inc()
}

// RecordTokens accumulates token usage and estimated spend for one
// successful generation.
func (pm *PrometheusMetrics) RecordTokens(provider, model string, inputTokens, outputTokens int, costUSD float64) {
	pm.tokens.WithLabelValues(provider, model, "input").Add(float64(inputTokens))
	pm.tokens.WithLabelValues(provider, model, "output").Add(float64(outputTokens))
	if costUSD > 0 {
		pm.costUSD.WithLabelValues(provider, model).Add(costUSD)
	}
}
