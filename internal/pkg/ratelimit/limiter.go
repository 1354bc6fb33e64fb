package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a counting gate keyed by caller-supplied strings, typically
// "provider:companyID". Deny decisions are synchronous; backpressure is the
// caller's job.
type Limiter interface {
	Allow(key string) bool
	Remaining(key string) int
	Reset(key string)
}

type window struct {
	start time.Time
	count int
}

// FixedWindowLimiter counts permits per key inside a fixed window. All
// mutation happens under one mutex so concurrent permit checks never lose
// updates.
type FixedWindowLimiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	maxRequests int
	windowSize  time.Duration
	now         func() time.Time
}

// NewFixedWindowLimiter creates a limiter allowing maxRequests permits per
// windowSize per key.
func NewFixedWindowLimiter(maxRequests int, windowSize time.Duration) *FixedWindowLimiter {
	if maxRequests <= 0 {
		maxRequests = 100
	}
	if windowSize <= 0 {
		windowSize = time.Minute
	}
	return &FixedWindowLimiter{
		windows:     make(map[string]*window),
		maxRequests: maxRequests,
		windowSize:  windowSize,
		now:         time.Now,
	}
}

// Allow consumes one permit for key. It returns false when the window's
// budget is exhausted.
func (l *FixedWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.currentWindow(key)
	if w.count >= l.maxRequests {
		return false
	}
	w.count++
	return true
}

// Remaining reports how many permits are left for key in the current window.
func (l *FixedWindowLimiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.currentWindow(key)
	remaining := l.maxRequests - w.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears the counter for key.
func (l *FixedWindowLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// currentWindow returns the live window for key, rolling it over when the
// previous one has expired. Caller must hold l.mu.
func (l *FixedWindowLimiter) currentWindow(key string) *window {
	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.windowSize {
		w = &window{start: now}
		l.windows[key] = w
	}
	return w
}

// Key builds the canonical limiter key for a provider/company pair.
func Key(provider, companyID string) string {
	if companyID == "" {
		companyID = "-"
	}
	return provider + ":" + companyID
}
