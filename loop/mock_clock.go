package loop

import "sync"

// MockClock provides a controllable time source for testing. Delay advances
// the tick counter instead of blocking, and every delay is recorded.
type MockClock struct {
	mu     sync.Mutex
	ticks  int64
	delays []int64

	// OnDelay, if set, runs after each Delay with the requested duration
	OnDelay func(ms int64)
}

// NewMockClock creates a mock clock starting at the given tick
func NewMockClock(start int64) *MockClock {
	return &MockClock{ticks: start}
}

// Ticks returns the current mocked tick value
func (c *MockClock) Ticks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// SetTicks sets the current tick value
func (c *MockClock) SetTicks(t int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = t
}

// Advance moves the clock forward by the given number of milliseconds
func (c *MockClock) Advance(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks += ms
}

// Delay advances the clock and records the requested duration
func (c *MockClock) Delay(ms int64) {
	c.mu.Lock()
	if ms > 0 {
		c.ticks += ms
	}
	c.delays = append(c.delays, ms)
	cb := c.OnDelay
	c.mu.Unlock()

	if cb != nil {
		cb(ms)
	}
}

// Delays returns a copy of all recorded delay durations
func (c *MockClock) Delays() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int64, len(c.delays))
	copy(out, c.delays)
	return out
}
