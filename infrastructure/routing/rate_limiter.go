package routing

import (
	"fmt"
	"sync"
	"time"

	"github.com/swanstudios/plangate/internal/domain"
)

// Sliding window spans.
const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour

	// suspiciousWindow is the advisory window for repeat limit hits.
	suspiciousWindow = 5 * time.Minute
	suspiciousHits   = 3

	// pruneInterval bounds how often stale window entries are swept.
	pruneInterval = 5 * time.Minute
)

// LimiterConfig tunes the sliding-window rate limiter.
type LimiterConfig struct {
	UserPerMinute     int
	UserPerHour       int
	GlobalPerMinute   int
	ConcurrentPerUser int
}

// Limiter enforces per-user and global sliding-window limits plus a
// per-user concurrency cap. All state is in memory; windows are exact
// counts over timestamps, not token buckets, because the caller-facing
// contract is "at most N requests in the trailing window".
type Limiter struct {
	mu  sync.Mutex
	cfg LimiterConfig

	userMinute map[int64][]time.Time
	userHour   map[int64][]time.Time
	global     []time.Time
	inFlight   map[int64]int
	limitHits  map[int64][]time.Time

	lastPrune time.Time
	now       func() time.Time

	// onSuspicious, when set, is invoked outside the admission
	// decision whenever a user trips rate limits repeatedly.
	onSuspicious func(userID int64, hits int)
}

// NewLimiter creates a Limiter with the given configuration.
func NewLimiter(cfg LimiterConfig) *Limiter {
	return &Limiter{
		cfg:        cfg,
		userMinute: make(map[int64][]time.Time),
		userHour:   make(map[int64][]time.Time),
		inFlight:   make(map[int64]int),
		limitHits:  make(map[int64][]time.Time),
		now:        time.Now,
	}
}

// OnSuspicious registers an advisory callback for repeated limit hits.
// The callback never affects admission.
func (l *Limiter) OnSuspicious(fn func(userID int64, hits int)) { l.onSuspicious = fn }

// Check admits or rejects one request for the user. Checks run in a
// fixed order: concurrency, per-user minute, per-user hour, global
// minute. On admission every window is recorded and one in-flight slot
// is taken; the caller must release it with ReleaseConcurrent when the
// request finishes.
func (l *Limiter) Check(userID int64) *domain.RateLimitDecision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.maybePrune(now)

	if l.inFlight[userID] >= l.cfg.ConcurrentPerUser {
		return &domain.RateLimitDecision{
			Code:    domain.LimitCodeConcurrent,
			Message: "an AI generation request is already in flight for this user",
			Scope:   "concurrent",
		}
	}

	if countSince(l.userMinute[userID], now.Add(-minuteWindow)) >= l.cfg.UserPerMinute {
		l.recordLimitHit(userID, now)
		return &domain.RateLimitDecision{
			Code:              domain.LimitCodeUser,
			Message:           fmt.Sprintf("per-user limit of %d requests per minute reached", l.cfg.UserPerMinute),
			RetryAfterSeconds: int(minuteWindow.Seconds()),
			Scope:             "user_minute",
		}
	}

	if countSince(l.userHour[userID], now.Add(-hourWindow)) >= l.cfg.UserPerHour {
		l.recordLimitHit(userID, now)
		return &domain.RateLimitDecision{
			Code:              domain.LimitCodeUser,
			Message:           fmt.Sprintf("per-user limit of %d requests per hour reached", l.cfg.UserPerHour),
			RetryAfterSeconds: int(hourWindow.Seconds()),
			Scope:             "user_hour",
		}
	}

	if countSince(l.global, now.Add(-minuteWindow)) >= l.cfg.GlobalPerMinute {
		return &domain.RateLimitDecision{
			Code:              domain.LimitCodeGlobal,
			Message:           "platform-wide AI request limit reached, try again shortly",
			RetryAfterSeconds: int(minuteWindow.Seconds()),
			Scope:             "global",
		}
	}

	l.userMinute[userID] = append(l.userMinute[userID], now)
	l.userHour[userID] = append(l.userHour[userID], now)
	l.global = append(l.global, now)
	l.inFlight[userID]++
	return &domain.RateLimitDecision{Allowed: true}
}

// ReleaseConcurrent frees the user's in-flight slot. Safe to call when
// none is held.
func (l *Limiter) ReleaseConcurrent(userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inFlight[userID] > 0 {
		l.inFlight[userID]--
	}
	if l.inFlight[userID] == 0 {
		delete(l.inFlight, userID)
	}
}

// ResetAll clears every window and in-flight slot. Intended for tests.
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.userMinute = make(map[int64][]time.Time)
	l.userHour = make(map[int64][]time.Time)
	l.global = nil
	l.inFlight = make(map[int64]int)
	l.limitHits = make(map[int64][]time.Time)
}

// recordLimitHit tracks the rejection and fires the advisory callback
// once a user trips limits repeatedly inside the suspicious window.
// Callers must hold l.mu.
func (l *Limiter) recordLimitHit(userID int64, now time.Time) {
	hits := append(l.limitHits[userID], now)
	cutoff := now.Add(-suspiciousWindow)
	kept := hits[:0]
	for _, ts := range hits {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.limitHits[userID] = kept

	if len(kept) >= suspiciousHits && l.onSuspicious != nil {
		go l.onSuspicious(userID, len(kept))
	}
}

// maybePrune sweeps expired timestamps from all windows. Runs at most
// once per pruneInterval; correctness never depends on it because
// reads count against a cutoff anyway.
func (l *Limiter) maybePrune(now time.Time) {
	if now.Sub(l.lastPrune) < pruneInterval {
		return
	}
	l.lastPrune = now

	hourCutoff := now.Add(-hourWindow)
	minuteCutoff := now.Add(-minuteWindow)
	for id, times := range l.userMinute {
		l.userMinute[id] = keepAfter(times, minuteCutoff)
		if len(l.userMinute[id]) == 0 {
			delete(l.userMinute, id)
		}
	}
	for id, times := range l.userHour {
		l.userHour[id] = keepAfter(times, hourCutoff)
		if len(l.userHour[id]) == 0 {
			delete(l.userHour, id)
		}
	}
	l.global = keepAfter(l.global, minuteCutoff)
}

func countSince(times []time.Time, cutoff time.Time) int {
	n := 0
	for _, ts := range times {
		if ts.After(cutoff) {
			n++
		}
	}
	return n
}

func keepAfter(times []time.Time, cutoff time.Time) []time.Time {
	kept := times[:0]
	for _, ts := range times {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
