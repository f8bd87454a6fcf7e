// Package routing implements the provider failover router and its
// guard rails: per-provider circuit breaking, sliding-window rate
// limiting, and the adapter registry.
package routing

import (
	"sync"
	"time"
)

// Breaker states as they appear in failover traces and metrics.
const (
	StateClosed   = "closed"
	StateOpen     = "open"
	StateHalfOpen = "half_open"
)

// providerCircuit tracks one provider's failure history.
type providerCircuit struct {
	failures []time.Time
	openedAt time.Time
	open     bool
	probing  bool
}

// Breaker is a per-provider circuit breaker over a rolling failure
// window. Crossing the failure threshold within the window opens the
// circuit; after the cooldown a single probe request is admitted, and
// its outcome decides whether the circuit closes or reopens with a
// fresh cooldown.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	window    time.Duration
	cooldown  time.Duration
	circuits  map[string]*providerCircuit
	now       func() time.Time
}

// NewBreaker creates a Breaker. threshold failures within window open
// a provider's circuit for cooldown.
func NewBreaker(threshold int, window, cooldown time.Duration) *Breaker {
	return &Breaker{
		threshold: threshold,
		window:    window,
		cooldown:  cooldown,
		circuits:  make(map[string]*providerCircuit),
		now:       time.Now,
	}
}

// CanRequest reports whether a call to the provider is currently
// allowed, along with the state that produced the decision. In
// half-open state exactly one caller is admitted as the probe; others
// are rejected until the probe resolves.
func (b *Breaker) CanRequest(provider string) (bool, string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(provider)
	if !c.open {
		return true, StateClosed
	}

	if b.now().Sub(c.openedAt) < b.cooldown {
		return false, StateOpen
	}

	if c.probing {
		return false, StateHalfOpen
	}
	c.probing = true
	return true, StateHalfOpen
}

// RecordSuccess closes the provider's circuit and clears its failure
// history.
func (b *Breaker) RecordSuccess(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(provider)
	c.failures = nil
	c.open = false
	c.probing = false
}

// RecordFailure appends a failure. If the provider was probing, the
// circuit reopens immediately with a fresh cooldown; otherwise the
// rolling window is pruned and checked against the threshold.
func (b *Breaker) RecordFailure(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	c := b.circuit(provider)

	if c.probing {
		c.probing = false
		c.open = true
		c.openedAt = now
		c.failures = append(c.failures, now)
		return
	}

	c.failures = append(c.failures, now)
	c.prune(now, b.window)
	if len(c.failures) >= b.threshold {
		c.open = true
		c.openedAt = now
	}
}

// State returns the provider's current state without admitting a
// probe.
func (b *Breaker) State(provider string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(provider)
	switch {
	case !c.open:
		return StateClosed
	case b.now().Sub(c.openedAt) < b.cooldown:
		return StateOpen
	default:
		return StateHalfOpen
	}
}

// ResetAll clears every circuit. Intended for tests and operational
// resets.
func (b *Breaker) ResetAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.circuits = make(map[string]*providerCircuit)
}

// circuit returns the provider's circuit, creating it on first use.
// Callers must hold b.mu.
func (b *Breaker) circuit(provider string) *providerCircuit {
	c, ok := b.circuits[provider]
	if !ok {
		c = &providerCircuit{}
		b.circuits[provider] = c
	}
	return c
}

// prune drops failures older than the rolling window.
func (c *providerCircuit) prune(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	kept := c.failures[:0]
	for _, ts := range c.failures {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	c.failures = kept
}
