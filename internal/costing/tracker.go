package costing

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Attempt is one normalized provider call observation.
type Attempt struct {
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Success   bool      `json:"success"`
	LatencyMs float64   `json:"latencyMs"`
	CostUSD   *float64  `json:"costUsd"`
	At        time.Time `json:"at"`
}

// LatencyStats summarizes success-only latencies in milliseconds.
type LatencyStats struct {
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// CostStats summarizes per-call cost over attempts with known pricing.
type CostStats struct {
	Avg   float64 `json:"avg"`
	Total float64 `json:"total"`
}

// ProviderStats aggregates all recorded attempts for one provider.
// Latency and Cost are nil when no successful attempt exists.
type ProviderStats struct {
	Provider     string        `json:"provider"`
	TotalCalls   int           `json:"totalCalls"`
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	SuccessRate  float64       `json:"successRate"`
	Latency      *LatencyStats `json:"latency"`
	Cost         *CostStats    `json:"cost"`
	Rank         int           `json:"rank,omitempty"`
}

// Tracker records provider attempts in memory and answers aggregate
// queries. Safe for concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	attempts []Attempt
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker { return &Tracker{} }

// Record appends one attempt. A zero At is stamped with the current
// time.
func (t *Tracker) Record(a Attempt) {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	t.mu.Lock()
	t.attempts = append(t.attempts, a)
	t.mu.Unlock()
}

// Attempts returns a copy of every recorded attempt.
func (t *Tracker) Attempts() []Attempt {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Attempt, len(t.attempts))
	copy(out, t.attempts)
	return out
}

// Reset drops all recorded attempts.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.attempts = nil
	t.mu.Unlock()
}

// Percentile computes the nearest-rank percentile of values. The input
// need not be sorted. An empty slice yields 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

// Aggregate computes per-provider statistics over all recorded
// attempts, keyed by provider name.
func (t *Tracker) Aggregate() map[string]*ProviderStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	byProvider := make(map[string][]Attempt)
	for _, a := range t.attempts {
		byProvider[a.Provider] = append(byProvider[a.Provider], a)
	}

	out := make(map[string]*ProviderStats, len(byProvider))
	for name, attempts := range byProvider {
		out[name] = aggregateOne(name, attempts)
	}
	return out
}

func aggregateOne(name string, attempts []Attempt) *ProviderStats {
	stats := &ProviderStats{Provider: name, TotalCalls: len(attempts)}

	var latencies []float64
	var costs []float64
	for _, a := range attempts {
		if !a.Success {
			stats.FailureCount++
			continue
		}
		stats.SuccessCount++
		latencies = append(latencies, a.LatencyMs)
		if a.CostUSD != nil {
			costs = append(costs, *a.CostUSD)
		}
	}
	if stats.TotalCalls > 0 {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.TotalCalls)
	}

	if len(latencies) > 0 {
		var sum float64
		for _, l := range latencies {
			sum += l
		}
		stats.Latency = &LatencyStats{
			Avg: sum / float64(len(latencies)),
			P50: Percentile(latencies, 50),
			P95: Percentile(latencies, 95),
			P99: Percentile(latencies, 99),
		}
	}
	if len(costs) > 0 {
		var sum float64
		for _, c := range costs {
			sum += c
		}
		stats.Cost = &CostStats{Avg: sum / float64(len(costs)), Total: sum}
	}
	return stats
}

// Rank orders providers best-first: success rate descending, then p95
// latency ascending (providers without latency data sort last), then
// average cost ascending (unknown cost last), then name. The returned
// slice carries 1-based Rank values.
func (t *Tracker) Rank() []*ProviderStats {
	agg := t.Aggregate()
	ranked := make([]*ProviderStats, 0, len(agg))
	for _, s := range agg {
		ranked = append(ranked, s)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.SuccessRate != b.SuccessRate {
			return a.SuccessRate > b.SuccessRate
		}
		if c := compareNilLast(latencyP95(a), latencyP95(b)); c != 0 {
			return c < 0
		}
		if c := compareNilLast(costAvg(a), costAvg(b)); c != 0 {
			return c < 0
		}
		return a.Provider < b.Provider
	})

	for i, s := range ranked {
		s.Rank = i + 1
	}
	return ranked
}

func latencyP95(s *ProviderStats) *float64 {
	if s.Latency == nil {
		return nil
	}
	return &s.Latency.P95
}

func costAvg(s *ProviderStats) *float64 {
	if s.Cost == nil {
		return nil
	}
	return &s.Cost.Avg
}

// compareNilLast orders ascending with nil greater than any value.
func compareNilLast(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}
