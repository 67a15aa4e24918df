package authapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// loginThrottle blocks repeated failed logins per natural key with a
// fixed window. State is in-process; the portal runs as a single
// instance, so no shared counter store is needed.
type loginThrottle struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	failures map[string][]time.Time

	now func() time.Time
}

func newLoginThrottle(max int, window time.Duration) *loginThrottle {
	return &loginThrottle{
		max:      max,
		window:   window,
		failures: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// blocked reports whether the identifier has exhausted its failure
// budget, and if so how long until the oldest failure ages out.
func (t *loginThrottle) blocked(identifier string) (bool, time.Duration) {
	if t == nil || t.max <= 0 || identifier == "" {
		return false, 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	recent := t.prune(identifier)
	if len(recent) < t.max {
		return false, 0
	}
	return true, recent[0].Add(t.window).Sub(t.now())
}

func (t *loginThrottle) recordFailure(identifier string) {
	if t == nil || t.max <= 0 || identifier == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.failures[identifier] = append(t.prune(identifier), t.now())
}

func (t *loginThrottle) reset(identifier string) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, identifier)
}

// prune drops failures older than the window. Callers must hold mu.
func (t *loginThrottle) prune(identifier string) []time.Time {
	cut := t.now().Add(-t.window)
	kept := t.failures[identifier][:0]
	for _, ts := range t.failures[identifier] {
		if ts.After(cut) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(t.failures, identifier)
		return nil
	}
	t.failures[identifier] = kept
	return kept
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
	}
	writeError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
}
