package mocks

import (
	"sort"
	"sync"
	"time"

	"github.com/avorobev/fableroom/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Advance moves time forward and fires any timers that come due,
// synchronously, in deadline order.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
	timers  []*mockTimer
	tickers []*mockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set sets the clock to the given time without firing timers
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// AfterFunc registers f to fire when the clock advances past d
func (c *MockClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTimer{
		clock:    c,
		deadline: c.current.Add(d),
		fn:       f,
	}
	c.timers = append(c.timers, t)
	return t
}

// NewTicker returns a ticker fed by Advance
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTicker{
		clock:    c,
		interval: d,
		next:     c.current.Add(d),
		ch:       make(chan time.Time, 16),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves the clock forward and fires due timers and ticks.
// Timer callbacks run on the calling goroutine.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.current.Add(d)

	var due []*mockTimer
	var remaining []*mockTimer
	for _, t := range c.timers {
		if !t.stopped && !t.deadline.After(target) {
			due = append(due, t)
		} else {
			remaining = append(remaining, t)
		}
	}
	c.timers = remaining
	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })

	for _, tk := range c.tickers {
		for !tk.stopped && !tk.next.After(target) {
			select {
			case tk.ch <- tk.next:
			default:
			}
			tk.next = tk.next.Add(tk.interval)
		}
	}

	c.current = target
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

type mockTimer struct {
	clock    *MockClock
	deadline time.Time
	fn       func()
	stopped  bool
}

func (t *mockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	for i, other := range t.clock.timers {
		if other == t {
			t.clock.timers = append(t.clock.timers[:i], t.clock.timers[i+1:]...)
			break
		}
	}
	return true
}

type mockTicker struct {
	clock    *MockClock
	interval time.Duration
	next     time.Time
	ch       chan time.Time
	stopped  bool
}

func (t *mockTicker) C() <-chan time.Time {
	return t.ch
}

func (t *mockTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}
