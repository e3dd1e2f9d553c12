// Package ccworkflow drives the credit/debit authorization state machine
// attached to a checkmodel.Payment: preauth, completion, voice-auth, batch
// settlement, and the rate limiting that keeps a flaky terminal from
// hammering the card backend (spec §4.3, §4.6).
package ccworkflow

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultAttemptsPerMinute and DefaultBurst bound how often a single
// terminal may submit AUTH_* requests to the card backend, independent of
// how many terminals exist (spec §4.6: one misbehaving terminal must not
// exhaust the merchant account's attempt budget).
const (
	DefaultAttemptsPerMinute = 12
	DefaultBurst             = 3
	cleanupInterval          = 5 * time.Minute
	limiterTTL               = 15 * time.Minute
)

// TerminalLimiter throttles authorization attempts per terminal id, in the
// same per-key-limiter-map shape as the teacher's API-token rate limiter.
type TerminalLimiter struct {
	mu       sync.Mutex
	entries  map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	stopOnce sync.Once
	stopCh   chan struct{}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewTerminalLimiter starts a TerminalLimiter with the default attempt
// budget and launches its background cleanup goroutine.
func NewTerminalLimiter() *TerminalLimiter {
	return NewTerminalLimiterWithConfig(DefaultAttemptsPerMinute, DefaultBurst)
}

// NewTerminalLimiterWithConfig starts a TerminalLimiter with a custom
// attempts-per-minute/burst budget.
func NewTerminalLimiterWithConfig(attemptsPerMinute, burst int) *TerminalLimiter {
	l := &TerminalLimiter{
		entries: make(map[string]*limiterEntry),
		rate:    rate.Limit(float64(attemptsPerMinute) / 60.0),
		burst:   burst,
		stopCh:  make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow reports whether terminalID may submit another authorization
// attempt right now.
func (l *TerminalLimiter) Allow(terminalID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[terminalID]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.entries[terminalID] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

func (l *TerminalLimiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for id, e := range l.entries {
				if now.Sub(e.lastSeen) > limiterTTL {
					delete(l.entries, id)
				}
			}
			l.mu.Unlock()
		case <-l.stopCh:
			return
		}
	}
}

// Stop halts the cleanup goroutine.
func (l *TerminalLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}
