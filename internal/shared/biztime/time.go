// Package biztime is the single source of "now" for the service. All
// timestamps are UTC at millisecond precision, which is what the database
// columns hold, so values survive a save/load round trip unchanged.
package biztime

import (
	"sync"
	"time"
)

var (
	mu    sync.RWMutex
	clock = time.Now
)

// NowUTC returns the current time in UTC truncated to milliseconds.
func NowUTC() time.Time {
	mu.RLock()
	now := clock
	mu.RUnlock()
	return now().UTC().Truncate(time.Millisecond)
}

// SetClock replaces the time source and returns a function restoring the
// previous one. Intended for tests.
func SetClock(fn func() time.Time) (restore func()) {
	mu.Lock()
	prev := clock
	clock = fn
	mu.Unlock()
	return func() {
		mu.Lock()
		clock = prev
		mu.Unlock()
	}
}

// ToUnixMilli converts t to epoch milliseconds; the zero time maps to 0.
func ToUnixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromUnixMilli is the inverse of ToUnixMilli.
func FromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
