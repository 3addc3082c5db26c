package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Result reports one rate-limit decision. RetryAfter is only meaningful when
// Allowed is false.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Store is the counter backend. The in-memory implementation below is
// per-process: under N horizontally scaled instances the effective limit is
// maxRequests * N. Swapping in a shared counter changes nothing at the call
// sites.
type Store interface {
	// Check applies the fixed-window algorithm for the identifier.
	Check(identifier string) Result
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// FixedWindow is an in-memory fixed-window counter keyed by identifier
// (email, IP, user id). Safe for concurrent use.
type FixedWindow struct {
	mu          sync.Mutex
	entries     map[string]windowEntry
	maxRequests int
	window      time.Duration
	now         func() time.Time
	stop        chan struct{}
}

var _ Store = (*FixedWindow)(nil)

// NewFixedWindow creates a limiter allowing maxRequests per window. A
// background sweep drops expired entries to bound memory growth; call Close
// when done.
func NewFixedWindow(maxRequests int, window time.Duration) *FixedWindow {
	fw := &FixedWindow{
		entries:     make(map[string]windowEntry),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		stop:        make(chan struct{}),
	}
	go fw.sweep()
	return fw
}

// newForTest builds a limiter with an injectable clock and no sweeper.
func newForTest(maxRequests int, window time.Duration, now func() time.Time) *FixedWindow {
	return &FixedWindow{
		entries:     make(map[string]windowEntry),
		maxRequests: maxRequests,
		window:      window,
		now:         now,
		stop:        make(chan struct{}),
	}
}

// Check applies the fixed-window algorithm: a fresh or elapsed window resets
// to count 1 and allows; a full window denies with the seconds-granular time
// until reset; otherwise the count increments and the call is allowed.
func (fw *FixedWindow) Check(identifier string) Result {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := fw.now()
	e, ok := fw.entries[identifier]
	if !ok || !now.Before(e.resetAt) {
		fw.entries[identifier] = windowEntry{count: 1, resetAt: now.Add(fw.window)}
		return Result{Allowed: true, Remaining: fw.maxRequests - 1}
	}

	if e.count >= fw.maxRequests {
		retry := time.Duration(math.Ceil(e.resetAt.Sub(now).Seconds())) * time.Second
		return Result{Allowed: false, RetryAfter: retry}
	}

	e.count++
	fw.entries[identifier] = e
	return Result{Allowed: true, Remaining: fw.maxRequests - e.count}
}

// Close stops the background sweeper.
func (fw *FixedWindow) Close() {
	close(fw.stop)
}

func (fw *FixedWindow) sweep() {
	ticker := time.NewTicker(fw.window)
	defer ticker.Stop()
	for {
		select {
		case <-fw.stop:
			return
		case <-ticker.C:
			now := fw.now()
			fw.mu.Lock()
			for id, e := range fw.entries {
				if !now.Before(e.resetAt) {
					delete(fw.entries, id)
				}
			}
			fw.mu.Unlock()
		}
	}
}
