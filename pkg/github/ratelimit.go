package github

import (
	"sync"

	"github.com/google/go-github/v73/github"
)

// Unauthenticated core quota, used until the first response reports the
// real numbers.
const (
	defaultRateLimit     = 60
	defaultRateRemaining = 60
)

// Tracker keeps the most recently observed provider quota. It is shared
// by every request a Client issues and consulted before issuing new
// ones. The check is advisory: two in-flight requests may both read the
// same remaining count, and the provider's own 403/429 stays the
// authoritative signal.
type Tracker struct {
	mu        sync.Mutex
	rateLimit RateLimit
}

func NewTracker() *Tracker {
	return &Tracker{
		rateLimit: RateLimit{
			Limit:     defaultRateLimit,
			Remaining: defaultRateRemaining,
		},
	}
}

// Update records the quota reported by a response. Responses without
// rate-limit headers (go-github reports those as a zero Rate) are
// ignored so cache hits never regress the tracker.
func (t *Tracker) Update(rate github.Rate) {
	if rate.Limit == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rateLimit = RateLimit{
		Limit:     rate.Limit,
		Remaining: rate.Remaining,
		Used:      rate.Limit - rate.Remaining,
		Reset:     rate.Reset.Time,
	}
}

// IsLow reports whether the remaining quota is at or below buffer.
func (t *Tracker) IsLow(buffer int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rateLimit.Remaining <= buffer
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() RateLimit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rateLimit
}
