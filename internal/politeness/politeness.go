// Package politeness enforces a minimum inter-request interval per host.
// Waiting is cooperative: Wait blocks the calling goroutine until the
// gate opens but never holds the scheduler's lock while doing so, the
// same discipline the teacher's CrawlingRules.CrawlDelay applies around
// its rwMutex (crawlingrules.go).
package politeness

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Scheduler gates fetches so that successive requests to the same host
// are separated by at least its configured delay. A single-token,
// burst-1 rate.Limiter per host implements exactly the "no earlier than
// last_dispatch[host]+delay" contract from spec.md §4.2: each Wait call
// both blocks until the gate opens and reserves the next slot.
type Scheduler struct {
	mutex         sync.Mutex
	limiters      map[string]*rate.Limiter
	defaultDelay  time.Duration
	hostOverrides map[string]time.Duration
}

// New creates a Scheduler with a default per-host delay in milliseconds.
func New(defaultDelayMs int) *Scheduler {
	return &Scheduler{
		limiters:      make(map[string]*rate.Limiter),
		defaultDelay:  time.Duration(defaultDelayMs) * time.Millisecond,
		hostOverrides: make(map[string]time.Duration),
	}
}

// SetHostDelay overrides the default delay for a specific host, used
// when robots.txt supplies a crawl-delay directive.
func (s *Scheduler) SetHostDelay(host string, delay time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.hostOverrides[host] = delay
	if lim, ok := s.limiters[host]; ok {
		lim.SetLimit(limitFor(delay))
	}
}

// Wait blocks until the host's politeness gate opens, then reserves the
// next slot. When no prior record exists for the host, it returns
// immediately (the limiter starts with a full burst of 1).
func (s *Scheduler) Wait(ctx context.Context, host string) error {
	limiter := s.limiterFor(host)
	return limiter.Wait(ctx)
}

// limiterFor returns (creating if needed) the per-host limiter. The map
// is guarded by the mutex; no I/O happens while it is held.
func (s *Scheduler) limiterFor(host string) *rate.Limiter {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if lim, ok := s.limiters[host]; ok {
		return lim
	}
	delay := s.defaultDelay
	if override, ok := s.hostOverrides[host]; ok {
		delay = override
	}
	lim := rate.NewLimiter(limitFor(delay), 1)
	s.limiters[host] = lim
	return lim
}

// limitFor converts a minimum interval into the equivalent rate.Limit
// (one token every `delay`). A zero delay means unlimited.
func limitFor(delay time.Duration) rate.Limit {
	if delay <= 0 {
		return rate.Inf
	}
	return rate.Every(delay)
}
