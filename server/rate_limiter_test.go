package server

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for the rate limiter.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (fc *fakeClock) Now() time.Time {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.now
}

func (fc *fakeClock) Advance(d time.Duration) {
	fc.mu.Lock()
	fc.now = fc.now.Add(d)
	fc.mu.Unlock()
}

func newTestLimiter(limit int, rate time.Duration) (*RateLimiter, *fakeClock) {
	fc := &fakeClock{now: time.Unix(1700000000, 0)}
	rl := NewRateLimiter(limit, rate)
	rl.now = fc.Now
	return rl, fc
}

func TestRateLimiter(t *testing.T) {
	rl, fc := newTestLimiter(3, time.Second)

	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("request %d should be allowed", i)
		}
		fc.Advance(100 * time.Millisecond)
	}
	if rl.Allow("a") {
		t.Fatal("fourth request should be denied")
	}

	// Other keys have their own window.
	if !rl.Allow("b") {
		t.Fatal("a different key should be allowed")
	}

	// After the first request falls out of the window there is room for
	// exactly one more.
	fc.Advance(750 * time.Millisecond)
	if !rl.Allow("a") {
		t.Fatal("request should be allowed once the window slides")
	}
	if rl.Allow("a") {
		t.Fatal("window should be full again")
	}
}

// TestRateLimiterWindowBoundary checks that a request exactly one window old
// no longer counts, while one a nanosecond younger still does.
func TestRateLimiterWindowBoundary(t *testing.T) {
	rl, fc := newTestLimiter(1, time.Second)
	if !rl.Allow("a") {
		t.Fatal("first request should be allowed")
	}
	fc.Advance(time.Second - time.Nanosecond)
	if rl.Allow("a") {
		t.Fatal("request inside the window should be denied")
	}
	fc.Advance(time.Nanosecond)
	if !rl.Allow("a") {
		t.Fatal("request exactly one window later should be allowed")
	}

	// Two requests sharing the expired instant both leave the window.
	rl, fc = newTestLimiter(2, time.Second)
	rl.Allow("b")
	rl.Allow("b")
	if rl.Allow("b") {
		t.Fatal("window should be full")
	}
	fc.Advance(time.Second)
	if !rl.Allow("b") || !rl.Allow("b") {
		t.Fatal("both slots should be free after a full window")
	}
}

func TestRateLimiterDeniedRequestsDoNotCount(t *testing.T) {
	rl, fc := newTestLimiter(1, time.Second)
	if !rl.Allow("a") {
		t.Fatal("first request should be allowed")
	}
	for i := 0; i < 10; i++ {
		if rl.Allow("a") {
			t.Fatal("request should be denied")
		}
	}
	fc.Advance(time.Second + time.Millisecond)
	if !rl.Allow("a") {
		t.Fatal("denied requests should not extend the window")
	}
}

func TestRateLimiterPrune(t *testing.T) {
	rl, fc := newTestLimiter(5, time.Second)
	rl.Allow("a")
	rl.Allow("b")
	fc.Advance(500 * time.Millisecond)
	rl.Allow("c")
	if rl.Len() != 3 {
		t.Fatalf("expected 3 keys, got %d", rl.Len())
	}

	fc.Advance(600 * time.Millisecond)
	rl.Prune()
	if rl.Len() != 1 {
		t.Fatalf("expected 1 key after prune, got %d", rl.Len())
	}
	fc.Advance(time.Second)
	rl.Prune()
	if rl.Len() != 0 {
		t.Fatalf("expected no keys after prune, got %d", rl.Len())
	}
}

func TestRateLimiterConcurrent(t *testing.T) {
	rl := NewRateLimiter(50, time.Hour)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Fatalf("expected 50 allowed requests, got %d", allowed)
	}
}
